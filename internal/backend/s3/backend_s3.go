// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	awsx "github.com/GeXiaoguo/pulumi-s3-static-web/internal/aws"
)

// HeadBucketAPI is the part of S3 used to check the bucket.
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3v2.HeadBucketInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadBucketOutput, error)
}

// BackendS3 keeps state in an S3 bucket, optionally under a key prefix. Query
// parameters other than region are passed through to the engine untouched.
type BackendS3 struct {
	Ctx     context.Context
	Spec    string
	Bucket  string
	Prefix  string
	Region  string
	Profile string
	query   url.Values
	client  HeadBucketAPI
}

type Option func(*BackendS3)

// WithRegion fills the bucket region when the URL does not name one.
func WithRegion(region string) Option {
	return func(be *BackendS3) {
		if region != "" && be.Region == "" {
			be.Region = region
		}
	}
}

// WithProfile selects the shared config profile.
func WithProfile(profile string) Option {
	return func(be *BackendS3) { be.Profile = profile }
}

// WithClient replaces the S3 client used by Prepare.
func WithClient(c HeadBucketAPI) Option {
	return func(be *BackendS3) { be.client = c }
}

// NewBackendS3 parses s3://bucket[/prefix][?region=...].
func NewBackendS3(ctx context.Context, spec string, options ...Option) (*BackendS3, error) {
	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 backend %q: %w", spec, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid s3 backend %q: no bucket", spec)
	}

	be := &BackendS3{
		Ctx:    ctx,
		Spec:   spec,
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
		Region: u.Query().Get("region"),
		query:  u.Query(),
	}
	for _, o := range options {
		o(be)
	}

	log.Debugf("s3 backend: bucket=%s prefix=%s region=%s", be.Bucket, be.Prefix, be.Region)
	return be, nil
}

func (be *BackendS3) URL() string {
	u := url.URL{Scheme: "s3", Host: be.Bucket, Path: "/" + be.Prefix}
	if be.Prefix == "" {
		u.Path = ""
	}
	q := url.Values{}
	for k, v := range be.query {
		q[k] = v
	}
	if be.Region != "" {
		q.Set("region", be.Region)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (be *BackendS3) Env() map[string]string {
	env := map[string]string{}
	if be.Profile != "" {
		env["AWS_PROFILE"] = be.Profile
	}
	return env
}

// Prepare checks the bucket exists and the credentials can reach it.
func (be *BackendS3) Prepare(ctx context.Context) error {
	if be.client == nil {
		var opts []awsx.Option
		if be.Region != "" {
			opts = append(opts, awsx.WithRegion(be.Region))
		}
		if be.Profile != "" {
			opts = append(opts, awsx.WithProfile(be.Profile))
		}
		cfg, err := awsx.LoadAWSConfig(ctx, opts...)
		if err != nil {
			return err
		}
		be.client = awsx.NewS3(cfg)
	}

	_, err := be.client.HeadBucket(ctx, &s3v2.HeadBucketInput{Bucket: aws.String(be.Bucket)})
	if err != nil {
		if awsx.IsNotFound(err) {
			return fmt.Errorf("state bucket %s does not exist", be.Bucket)
		}
		return fmt.Errorf("failed to reach state bucket %s: %w", be.Bucket, err)
	}
	return nil
}

func (be *BackendS3) String() string {
	return be.URL()
}

func (be *BackendS3) Type() string {
	return "s3"
}
