// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPublicReadResource(t *testing.T) {
	tests := []struct {
		bucket string
		want   string
	}{
		{"my-bucket", "arn:aws:s3:::my-bucket/*"},
		{"s3-static-web-html-bucket-1a2b3c4", "arn:aws:s3:::s3-static-web-html-bucket-1a2b3c4/*"},
	}

	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			doc, err := PublicReadJSON(tt.bucket)
			require.NoError(t, err)

			assert.Equal(t, tt.want, gjson.Get(doc, "Statement.0.Resource").String())
			assert.Equal(t, "*", gjson.Get(doc, "Statement.0.Principal").String())
			assert.Equal(t, `["s3:GetObject"]`, gjson.Get(doc, "Statement.0.Action").Raw)
			assert.Equal(t, Version, gjson.Get(doc, "Version").String())
		})
	}
}

func TestPublicReadJSONEmpty(t *testing.T) {
	_, err := PublicReadJSON("")
	assert.Error(t, err)
}

func TestLambdaAssumeRole(t *testing.T) {
	doc := LambdaAssumeRole().MustJSON()

	assert.Equal(t, int64(1), gjson.Get(doc, "Statement.#").Int())
	assert.Equal(t, "sts:AssumeRole", gjson.Get(doc, "Statement.0.Action").String())
	assert.Equal(t, LambdaService, gjson.Get(doc, "Statement.0.Principal.Service").String())
	assert.Equal(t, Allow, gjson.Get(doc, "Statement.0.Effect").String())
	assert.True(t, gjson.Get(doc, "Statement.0.Sid").Exists())
	assert.False(t, gjson.Get(doc, "Statement.0.Resource").Exists())
}

func TestLambdaLogging(t *testing.T) {
	doc := LambdaLogging().MustJSON()

	var actions []string
	for _, a := range gjson.Get(doc, "Statement.0.Action").Array() {
		actions = append(actions, a.String())
	}
	assert.Equal(t, []string{"logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"}, actions)
	assert.Equal(t, LogsResource, gjson.Get(doc, "Statement.0.Resource").String())
	assert.False(t, gjson.Get(doc, "Statement.0.Principal").Exists())
}
