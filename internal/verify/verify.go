// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	iamv2 "github.com/aws/aws-sdk-go-v2/service/iam"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/aws"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/driller"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/policy"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
)

// S3API is the part of the S3 client the checks use.
type S3API interface {
	GetBucketWebsite(ctx context.Context, in *s3v2.GetBucketWebsiteInput, optFns ...func(*s3v2.Options)) (*s3v2.GetBucketWebsiteOutput, error)
	GetBucketPolicy(ctx context.Context, in *s3v2.GetBucketPolicyInput, optFns ...func(*s3v2.Options)) (*s3v2.GetBucketPolicyOutput, error)
	HeadObject(ctx context.Context, in *s3v2.HeadObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error)
}

// IAMAPI is the part of the IAM client the checks use.
type IAMAPI interface {
	GetRole(ctx context.Context, in *iamv2.GetRoleInput, optFns ...func(*iamv2.Options)) (*iamv2.GetRoleOutput, error)
}

// Target describes what should be live.
type Target struct {
	Bucket        string
	IndexDocument string
	// RoleName is empty for a website without functions.
	RoleName string
	Assets   []site.Asset
}

// Check is the outcome of one probe.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Checker runs the probes.
type Checker struct {
	S3  S3API
	IAM IAMAPI
}

// Run executes every applicable check. The returned error aggregates all
// failures; the checks are returned either way.
func (c *Checker) Run(ctx context.Context, t Target) ([]Check, error) {
	if t.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var (
		checks []Check
		result *multierror.Error
	)

	record := func(name string, detail string, err error) {
		chk := Check{Name: name, OK: err == nil, Detail: detail}
		if err != nil {
			chk.Detail = err.Error()
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			log.WithError(err).WithField("check", name).Error("check failed")
		} else {
			log.WithField("check", name).Info("check passed")
		}
		checks = append(checks, chk)
	}

	detail, err := c.website(ctx, t)
	record("website", detail, err)

	detail, err = c.policy(ctx, t)
	record("policy", detail, err)

	for _, asset := range t.Assets {
		detail, err = c.object(ctx, t.Bucket, asset)
		record("object "+asset.Key, detail, err)
	}

	if t.RoleName != "" && c.IAM != nil {
		detail, err = c.role(ctx, t.RoleName)
		record("role", detail, err)
	}

	return checks, result.ErrorOrNil()
}

func (c *Checker) website(ctx context.Context, t Target) (string, error) {
	out, err := c.S3.GetBucketWebsite(ctx, &s3v2.GetBucketWebsiteInput{Bucket: awsv2.String(t.Bucket)})
	if err != nil {
		if aws.IsNotFound(err) {
			return "", fmt.Errorf("bucket %s has no website configuration", t.Bucket)
		}
		return "", fmt.Errorf("failed to read website configuration: %w", err)
	}

	if out.IndexDocument == nil {
		return "", fmt.Errorf("no index document configured")
	}
	got := awsv2.ToString(out.IndexDocument.Suffix)
	if t.IndexDocument != "" && got != t.IndexDocument {
		return "", fmt.Errorf("index document is %q, want %q", got, t.IndexDocument)
	}
	return "index " + got, nil
}

func (c *Checker) policy(ctx context.Context, t Target) (string, error) {
	out, err := c.S3.GetBucketPolicy(ctx, &s3v2.GetBucketPolicyInput{Bucket: awsv2.String(t.Bucket)})
	if err != nil {
		if aws.IsNotFound(err) {
			return "", fmt.Errorf("bucket %s has no policy", t.Bucket)
		}
		return "", fmt.Errorf("failed to read bucket policy: %w", err)
	}

	live := awsv2.ToString(out.Policy)
	if !gjson.Valid(live) {
		return "", fmt.Errorf("bucket policy is not valid json")
	}

	want := policy.PublicReadResource(t.Bucket)
	if allows(driller.Driller(live, "Statement"),
		grant{paths: []string{"Resource"}, want: []string{want}},
		grant{paths: []string{"Principal", "Principal.AWS"}, want: []string{policy.Everyone}},
		grant{paths: []string{"Action"}, want: []string{policy.GetObject, "s3:*", "*"}},
	) {
		if diff, err := PolicyDiff(policy.PublicRead(t.Bucket), live); err == nil && diff != "" {
			log.Debugf("bucket policy differs cosmetically:\n%s", diff)
		}
		return want, nil
	}

	diff, err := PolicyDiff(policy.PublicRead(t.Bucket), live)
	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("no statement grants %s on %s to %s\n%s", policy.GetObject, want, policy.Everyone, diff)
}

func (c *Checker) object(ctx context.Context, bucket string, asset site.Asset) (string, error) {
	out, err := c.S3.HeadObject(ctx, &s3v2.HeadObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(asset.Key),
	})
	if err != nil {
		if aws.IsNotFound(err) {
			return "", fmt.Errorf("object is missing")
		}
		return "", fmt.Errorf("failed to head object: %w", err)
	}

	got := awsv2.ToString(out.ContentType)
	if got != asset.ContentType {
		return "", fmt.Errorf("content type is %q, want %q", got, asset.ContentType)
	}
	return got, nil
}

func (c *Checker) role(ctx context.Context, name string) (string, error) {
	out, err := c.IAM.GetRole(ctx, &iamv2.GetRoleInput{RoleName: awsv2.String(name)})
	if err != nil {
		if aws.IsNotFound(err) {
			return "", fmt.Errorf("role %s does not exist", name)
		}
		return "", fmt.Errorf("failed to read role: %w", err)
	}
	if out.Role == nil {
		return "", fmt.Errorf("role %s has no description", name)
	}

	// IAM returns the trust document URL encoded.
	doc, err := url.QueryUnescape(awsv2.ToString(out.Role.AssumeRolePolicyDocument))
	if err != nil {
		return "", fmt.Errorf("failed to decode trust policy: %w", err)
	}

	if !allows(driller.Driller(doc, "Statement"),
		grant{paths: []string{"Principal.Service"}, want: []string{policy.LambdaService}}) {
		return "", fmt.Errorf("trust policy does not admit %s", policy.LambdaService)
	}
	return policy.LambdaService, nil
}

// grant is one requirement on a statement: some value at any of paths must
// equal one of want.
type grant struct {
	paths []string
	want  []string
}

func (g grant) met(stmt gjson.Result) bool {
	for _, p := range g.paths {
		v := driller.Driller(stmt.Raw, p)
		values := []gjson.Result{v}
		if v.IsArray() {
			values = v.Array()
		}
		for _, item := range values {
			if slices.Contains(g.want, item.String()) {
				return true
			}
		}
	}
	return false
}

// allows reports whether a single Allow statement in statements meets every
// grant.
func allows(statements gjson.Result, grants ...grant) bool {
	check := func(stmt gjson.Result) bool {
		if driller.Driller(stmt.Raw, "Effect").String() != policy.Allow {
			return false
		}
		for _, g := range grants {
			if !g.met(stmt) {
				return false
			}
		}
		return true
	}

	if !statements.IsArray() {
		return statements.Exists() && check(statements)
	}
	for _, stmt := range statements.Array() {
		if check(stmt) {
			return true
		}
	}
	return false
}

// PolicyDiff renders an ASCII diff of the expected document against the live
// one. It returns "" when they are equal.
func PolicyDiff(expected policy.Document, live string) (string, error) {
	want, err := expected.JSON()
	if err != nil {
		return "", err
	}

	d, err := gojsondiff.New().Compare([]byte(want), []byte(live))
	if err != nil {
		return "", fmt.Errorf("failed to compare policies: %w", err)
	}
	if !d.Modified() {
		return "", nil
	}

	var left map[string]any
	if err := json.Unmarshal([]byte(want), &left); err != nil {
		return "", fmt.Errorf("failed to decode expected policy: %w", err)
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       false,
	})
	out, err := f.Format(d)
	if err != nil {
		return "", fmt.Errorf("failed to format policy diff: %w", err)
	}
	return out, nil
}
