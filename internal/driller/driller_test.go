// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// no-cloc
package driller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriller(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		path        string
		expectedStr string
		isNil       bool
		isArray     bool
	}{
		{
			name:        "simple string key",
			json:        `{"name": "bucketName"}`,
			path:        "name",
			expectedStr: "bucketName",
		},
		{
			name:        "simple number key",
			json:        `{"memory": 128}`,
			path:        "memory",
			expectedStr: "128",
		},
		{
			name:        "simple boolean key",
			json:        `{"secret": true}`,
			path:        "secret",
			expectedStr: "true",
		},
		{
			name:  "simple null key",
			json:  `{"value": null}`,
			path:  "value",
			isNil: true,
		},
		{
			name:        "nested single level",
			json:        `{"value": {"apiUrl": "https://example.com/prod"}}`,
			path:        "value.apiUrl",
			expectedStr: "https://example.com/prod",
		},
		{
			name:        "single element array returns element",
			json:        `{"Statement": [{"Effect": "Allow"}]}`,
			path:        "Statement",
			expectedStr: `{"Effect": "Allow"}`,
		},
		{
			name:        "single element array drills through",
			json:        `{"Statement": [{"Effect": "Allow"}]}`,
			path:        "Statement.Effect",
			expectedStr: "Allow",
		},
		{
			name:    "multi element array returns array",
			json:    `{"Action": ["s3:GetObject", "s3:ListBucket"]}`,
			path:    "Action",
			isArray: true,
		},
		{
			name:        "explicit index",
			json:        `{"Action": ["s3:GetObject", "s3:ListBucket"]}`,
			path:        "Action[1]",
			expectedStr: "s3:ListBucket",
		},
		{
			name:        "index then nested access",
			json:        `{"Statement": [{"Principal": {"Service": "lambda.amazonaws.com"}}, {"Principal": "*"}]}`,
			path:        "Statement[0].Principal.Service",
			expectedStr: "lambda.amazonaws.com",
		},
		{
			name:        "key with hyphen",
			json:        `{"my-site": "value"}`,
			path:        "my-site",
			expectedStr: "value",
		},
		{
			name:        "key with glob characters",
			json:        `{"paths": {"/{proxy+}": "any"}}`,
			path:        "paths./{proxy+}",
			expectedStr: "any",
		},
		{
			name:  "nonexistent key",
			json:  `{"name": "test"}`,
			path:  "missing",
			isNil: true,
		},
		{
			name:  "index out of range",
			json:  `{"items": ["a", "b"]}`,
			path:  "items[10]",
			isNil: true,
		},
		{
			name:  "index on a non array",
			json:  `{"items": "a"}`,
			path:  "items[0]",
			isNil: true,
		},
		{
			name:  "nested missing key",
			json:  `{"value": {"apiUrl": "x"}}`,
			path:  "value.missing.deeper",
			isNil: true,
		},
		{
			name:  "empty array with index",
			json:  `{"items": []}`,
			path:  "items[0]",
			isNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Driller(tt.json, tt.path)

			if tt.isNil {
				assert.True(t, !result.Exists() || result.Type.String() == "Null", "got %v", result.Value())
				return
			}

			if !assert.True(t, result.Exists()) {
				return
			}

			if tt.isArray {
				assert.True(t, result.IsArray())
				return
			}

			assert.Equal(t, tt.expectedStr, result.String())
		})
	}
}

func BenchmarkDriller(b *testing.B) {
	doc := `{"Statement": [{"Principal": {"Service": "lambda.amazonaws.com"}}]}`
	for i := 0; i < b.N; i++ {
		Driller(doc, "Statement.Principal.Service")
	}
}
