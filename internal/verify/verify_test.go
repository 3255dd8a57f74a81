// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package verify

import (
	"context"
	"net/url"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	iamv2 "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/policy"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
)

type fakeS3 struct {
	index        string
	websiteErr   error
	policy       string
	policyErr    error
	contentTypes map[string]string
}

func (f *fakeS3) GetBucketWebsite(_ context.Context, _ *s3v2.GetBucketWebsiteInput, _ ...func(*s3v2.Options)) (*s3v2.GetBucketWebsiteOutput, error) {
	if f.websiteErr != nil {
		return nil, f.websiteErr
	}
	return &s3v2.GetBucketWebsiteOutput{
		IndexDocument: &s3types.IndexDocument{Suffix: awsv2.String(f.index)},
	}, nil
}

func (f *fakeS3) GetBucketPolicy(_ context.Context, _ *s3v2.GetBucketPolicyInput, _ ...func(*s3v2.Options)) (*s3v2.GetBucketPolicyOutput, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return &s3v2.GetBucketPolicyOutput{Policy: awsv2.String(f.policy)}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3v2.HeadObjectInput, _ ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error) {
	ct, ok := f.contentTypes[awsv2.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3v2.HeadObjectOutput{ContentType: awsv2.String(ct)}, nil
}

type fakeIAM struct {
	trust string
	err   error
}

func (f *fakeIAM) GetRole(_ context.Context, in *iamv2.GetRoleInput, _ ...func(*iamv2.Options)) (*iamv2.GetRoleOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &iamv2.GetRoleOutput{Role: &iamtypes.Role{
		RoleName:                 in.RoleName,
		AssumeRolePolicyDocument: awsv2.String(url.QueryEscape(f.trust)),
	}}, nil
}

func healthy() (*fakeS3, *fakeIAM) {
	return &fakeS3{
			index:  "index.html",
			policy: policy.PublicRead("my-bucket").MustJSON(),
			contentTypes: map[string]string{
				"index.html": "text/html",
				"site.css":   "text/css",
			},
		}, &fakeIAM{
			trust: policy.LambdaAssumeRole().MustJSON(),
		}
}

func target() Target {
	return Target{
		Bucket:        "my-bucket",
		IndexDocument: "index.html",
		RoleName:      "site-lambda-role-1a2b3c",
		Assets: []site.Asset{
			{Key: "index.html", ContentType: "text/html"},
			{Key: "site.css", ContentType: "text/css"},
		},
	}
}

func names(checks []Check) []string {
	var out []string
	for _, c := range checks {
		out = append(out, c.Name)
	}
	return out
}

func TestChecker_RunHealthy(t *testing.T) {
	s3, iam := healthy()
	c := &Checker{S3: s3, IAM: iam}

	checks, err := c.Run(context.Background(), target())
	require.NoError(t, err)
	assert.Equal(t, []string{"website", "policy", "object index.html", "object site.css", "role"}, names(checks))
	for _, chk := range checks {
		assert.True(t, chk.OK, chk.Name)
	}
	assert.Equal(t, "arn:aws:s3:::my-bucket/*", checks[1].Detail)
	assert.Equal(t, "lambda.amazonaws.com", checks[4].Detail)
}

func TestChecker_RunWithoutRole(t *testing.T) {
	s3, _ := healthy()
	c := &Checker{S3: s3}

	tgt := target()
	tgt.RoleName = ""
	checks, err := c.Run(context.Background(), tgt)
	require.NoError(t, err)
	assert.NotContains(t, names(checks), "role")
}

func TestChecker_RunAggregatesFailures(t *testing.T) {
	s3, iam := healthy()
	s3.index = "home.html"
	s3.policy = policy.PublicRead("other-bucket").MustJSON()
	delete(s3.contentTypes, "site.css")
	iam.trust = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"ec2.amazonaws.com"},"Action":"sts:AssumeRole"}]}`

	c := &Checker{S3: s3, IAM: iam}
	checks, err := c.Run(context.Background(), target())
	require.Error(t, err)

	assert.ErrorContains(t, err, `index document is "home.html", want "index.html"`)
	assert.ErrorContains(t, err, "no statement grants s3:GetObject on arn:aws:s3:::my-bucket/*")
	assert.ErrorContains(t, err, "object site.css: object is missing")
	assert.ErrorContains(t, err, "trust policy does not admit lambda.amazonaws.com")

	failed := 0
	for _, chk := range checks {
		if !chk.OK {
			failed++
		}
	}
	assert.Equal(t, 4, failed)
}

func TestChecker_NotFound(t *testing.T) {
	s3, iam := healthy()
	s3.websiteErr = &smithy.GenericAPIError{Code: "NoSuchWebsiteConfiguration"}
	s3.policyErr = &smithy.GenericAPIError{Code: "NoSuchBucketPolicy"}
	iam.err = &smithy.GenericAPIError{Code: "NoSuchEntity"}

	c := &Checker{S3: s3, IAM: iam}
	_, err := c.Run(context.Background(), target())
	require.Error(t, err)
	assert.ErrorContains(t, err, "has no website configuration")
	assert.ErrorContains(t, err, "has no policy")
	assert.ErrorContains(t, err, "does not exist")
}

func TestChecker_ContentTypeMismatch(t *testing.T) {
	s3, _ := healthy()
	s3.contentTypes["site.css"] = "binary/octet-stream"

	c := &Checker{S3: s3}
	tgt := target()
	tgt.RoleName = ""
	_, err := c.Run(context.Background(), tgt)
	assert.ErrorContains(t, err, `content type is "binary/octet-stream", want "text/css"`)
}

func TestChecker_RequiresBucket(t *testing.T) {
	c := &Checker{}
	_, err := c.Run(context.Background(), Target{})
	assert.ErrorContains(t, err, "bucket is required")
}

func TestChecker_PolicyResourceList(t *testing.T) {
	s3, _ := healthy()
	s3.policy = `{"Version":"2012-10-17","Statement":[` +
		`{"Effect":"Deny","Principal":"*","Action":"s3:DeleteObject","Resource":"arn:aws:s3:::my-bucket/*"},` +
		`{"Effect":"Allow","Principal":"*","Action":"s3:GetObject","Resource":["arn:aws:s3:::x/*","arn:aws:s3:::my-bucket/*"]}]}`

	c := &Checker{S3: s3}
	detail, err := c.policy(context.Background(), target())
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:s3:::my-bucket/*", detail)
}

func TestChecker_PolicyDenyDoesNotCount(t *testing.T) {
	s3, _ := healthy()
	s3.policy = `{"Version":"2012-10-17","Statement":[` +
		`{"Effect":"Deny","Principal":"*","Action":"s3:GetObject","Resource":"arn:aws:s3:::my-bucket/*"}]}`

	c := &Checker{S3: s3}
	_, err := c.policy(context.Background(), target())
	assert.ErrorContains(t, err, "no statement grants")
}

func TestChecker_PolicyStatementMustGrantPublicRead(t *testing.T) {
	const resource = `"Resource":"arn:aws:s3:::my-bucket/*"`
	tests := []struct {
		name       string
		statements string
		wantErr    bool
	}{
		{
			name:       "anonymous principal object",
			statements: `{"Effect":"Allow","Principal":{"AWS":"*"},"Action":"s3:GetObject",` + resource + `}`,
		},
		{
			name:       "wildcard action",
			statements: `{"Effect":"Allow","Principal":"*","Action":["s3:*"],` + resource + `}`,
		},
		{
			name:       "wrong principal",
			statements: `{"Effect":"Allow","Principal":{"AWS":"arn:aws:iam::123456789012:root"},"Action":"s3:GetObject",` + resource + `}`,
			wantErr:    true,
		},
		{
			name:       "wrong action",
			statements: `{"Effect":"Allow","Principal":"*","Action":["s3:PutObject","s3:DeleteObject"],` + resource + `}`,
			wantErr:    true,
		},
		{
			name: "requirements split across statements",
			statements: `{"Effect":"Allow","Principal":"*","Action":"s3:PutObject",` + resource + `},` +
				`{"Effect":"Allow","Principal":"arn:aws:iam::123456789012:root","Action":"s3:GetObject",` + resource + `}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s3, _ := healthy()
			s3.policy = `{"Version":"2012-10-17","Statement":[` + tt.statements + `]}`

			c := &Checker{S3: s3}
			detail, err := c.policy(context.Background(), target())
			if tt.wantErr {
				assert.ErrorContains(t, err, "no statement grants s3:GetObject")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "arn:aws:s3:::my-bucket/*", detail)
		})
	}
}

func TestPolicyDiff(t *testing.T) {
	same, err := PolicyDiff(policy.PublicRead("my-bucket"), policy.PublicRead("my-bucket").MustJSON())
	require.NoError(t, err)
	assert.Empty(t, same)

	diff, err := PolicyDiff(policy.PublicRead("my-bucket"), policy.PublicRead("other").MustJSON())
	require.NoError(t, err)
	assert.Contains(t, diff, "arn:aws:s3:::my-bucket/*")
	assert.Contains(t, diff, "arn:aws:s3:::other/*")

	_, err = PolicyDiff(policy.PublicRead("my-bucket"), "{not json")
	assert.Error(t, err)
}
