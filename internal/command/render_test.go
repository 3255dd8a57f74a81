// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const (
	basicArn  = "arn:aws:lambda:us-west-2:123456789012:function:basicLambda"
	ordersArn = "arn:aws:lambda:us-west-2:123456789012:function:orders"
)

func TestRenderPolicy(t *testing.T) {
	tests := []struct {
		name string
		args []string
		path string
		want string
	}{
		{"public read", []string{"--bucket", "demo-bucket-1a2b"}, "Statement.0.Resource", "arn:aws:s3:::demo-bucket-1a2b/*"},
		{"trust", []string{"--kind", "trust"}, "Statement.0.Principal.Service", "lambda.amazonaws.com"},
		{"logging", []string{"--kind", "logging"}, "Statement.0.Resource", "arn:aws:logs:*:*:*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, append([]string{"render", "policy"}, tt.args...)...)
			require.NoError(t, err)
			require.True(t, gjson.Valid(out), out)
			assert.Equal(t, "2012-10-17", gjson.Get(out, "Version").String())
			assert.Equal(t, tt.want, gjson.Get(out, tt.path).String())
		})
	}
}

func TestRenderPolicy_Errors(t *testing.T) {
	_, err := runApp(t, "render", "policy")
	assert.ErrorContains(t, err, "--bucket")

	_, err = runApp(t, "render", "policy", "--kind", "admin")
	assert.ErrorContains(t, err, "unknown policy kind")
}

func TestRenderGateway(t *testing.T) {
	out, err := runApp(t, "render", "gateway",
		"--arn", "basicLambda="+basicArn,
		"--arn", "orders="+ordersArn)
	require.NoError(t, err)
	require.True(t, gjson.Valid(out), out)

	assert.Equal(t, "2.0", gjson.Get(out, "swagger").String())
	assert.Equal(t, "demo-api", gjson.Get(out, "info.title").String())

	uri := func(path string) string {
		return gjson.Get(out, "paths."+gjson.Escape(path)+".x-amazon-apigateway-any-method.x-amazon-apigateway-integration.uri").String()
	}
	assert.Equal(t,
		"arn:aws:apigateway:us-west-2:lambda:path/2015-03-31/functions/"+basicArn+"/invocations",
		uri("/{proxy+}"))
	assert.Equal(t, uri("/{proxy+}"), uri("/"))
	assert.Contains(t, uri("/orders"), ordersArn)
	assert.Contains(t, uri("/orders/{proxy+}"), ordersArn)
}

func TestRenderGateway_MissingArn(t *testing.T) {
	_, err := runApp(t, "render", "gateway", "--arn", "basicLambda="+basicArn)
	assert.ErrorContains(t, err, "no --arn given for function orders")

	_, err = runApp(t, "render", "gateway", "--arn", "orders")
	assert.ErrorContains(t, err, "name=ARN")
}

func TestRenderRuntimeConfig(t *testing.T) {
	url := "https://abc123.execute-api.us-west-2.amazonaws.com/prod"
	out, err := runApp(t, "render", "runtime-config", "--api-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "window.appConfig = ")
	assert.Contains(t, out, `"apiUrl": "`+url+`"`)
}

func TestRenderAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte("1;"), 0o600))

	// render.output in the test config selects json.
	out, err := runApp(t, "render", "assets", "--dir", dir, "--sort", "key")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	require.Len(t, rows, 3)

	assert.Equal(t, "config.js", rows[0]["key"])
	assert.Equal(t, "application/javascript", rows[0]["contentType"])
	assert.Equal(t, "index.html", rows[1]["key"])
	assert.Equal(t, "text/html", rows[1]["contentType"])
	assert.Equal(t, "13 B", rows[1]["size"])
	assert.Equal(t, "js/app.js", rows[2]["key"])
}

func TestRenderAssets_Unsupported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.docx"), []byte("x"), 0o600))

	_, err := runApp(t, "render", "assets", "--dir", dir)
	assert.Error(t, err)
}

func TestRenderGraph(t *testing.T) {
	out, err := runApp(t, "render", "graph", "-o", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	require.NotEmpty(t, rows)

	position := map[string]int{}
	for i, r := range rows {
		position[r["kind"].(string)+"/"+r["name"].(string)] = i
	}

	bucket, ok := position["aws:s3:Bucket/demo-bucket"]
	require.True(t, ok, position)
	policy, ok := position["aws:s3:BucketPolicy/demo-bucket-policy"]
	require.True(t, ok, position)
	assert.Less(t, bucket, policy)

	api := position["aws:apigateway:RestApi/demo-api"]
	assert.Less(t, position["aws:lambda:Function/orders"], api)
	assert.Less(t, api, position["aws:apigateway:Deployment/demo-api-deployment"])
}

func TestRenderGraph_Dot(t *testing.T) {
	out, err := runApp(t, "render", "graph", "--dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
}
