// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"errors"
	"testing"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHead struct {
	bucket string
	err    error
}

func (f *fakeHead) HeadBucket(_ context.Context, in *s3v2.HeadBucketInput, _ ...func(*s3v2.Options)) (*s3v2.HeadBucketOutput, error) {
	f.bucket = *in.Bucket
	return &s3v2.HeadBucketOutput{}, f.err
}

func TestNewBackendS3(t *testing.T) {
	be, err := NewBackendS3(context.Background(), "s3://state-bucket/team/web/?region=us-east-2", WithProfile("ops"))
	require.NoError(t, err)

	assert.Equal(t, "state-bucket", be.Bucket)
	assert.Equal(t, "team/web", be.Prefix)
	assert.Equal(t, "us-east-2", be.Region)
	assert.Equal(t, "s3://state-bucket/team/web?region=us-east-2", be.URL())
	assert.Equal(t, map[string]string{"AWS_PROFILE": "ops"}, be.Env())

	be, err = NewBackendS3(context.Background(), "s3://state-bucket", WithRegion(""))
	require.NoError(t, err)
	assert.Equal(t, "s3://state-bucket", be.URL())
	assert.Empty(t, be.Env())
}

func TestBackendS3URLKeepsQuery(t *testing.T) {
	be, err := NewBackendS3(context.Background(),
		"s3://state-bucket/web?endpoint=minio.local:9000&s3ForcePathStyle=true", WithRegion("eu-west-1"))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", be.Region)
	assert.Equal(t,
		"s3://state-bucket/web?endpoint=minio.local%3A9000&region=eu-west-1&s3ForcePathStyle=true",
		be.URL())

	be, err = NewBackendS3(context.Background(), "s3://state-bucket?region=us-east-2&awssdk=v2", WithRegion("eu-west-1"))
	require.NoError(t, err)
	assert.Equal(t, "s3://state-bucket?awssdk=v2&region=us-east-2", be.URL())
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{"exists", nil, ""},
		{"missing", &smithy.GenericAPIError{Code: "NotFound"}, "does not exist"},
		{"denied", &smithy.GenericAPIError{Code: "Forbidden"}, "failed to reach"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeHead{err: tt.err}
			be, err := NewBackendS3(context.Background(), "s3://state-bucket", WithClient(fake))
			require.NoError(t, err)

			err = be.Prepare(context.Background())
			assert.Equal(t, "state-bucket", fake.bucket)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.False(t, errors.Is(err, context.Canceled))
		})
	}
}
