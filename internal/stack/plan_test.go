// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/resgraph"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
)

func TestPlanWebsiteOnly(t *testing.T) {
	g, err := Plan(Options{}.Defaults(), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	_, ok := g.Find(resgraph.BucketObject, "s3-static-web-object-index.html")
	assert.True(t, ok)
	_, ok = g.Find(resgraph.RestAPI, "s3-static-web-api")
	assert.False(t, ok)
}

func TestPlanWithFunctions(t *testing.T) {
	opts := Options{
		Functions: []FunctionSpec{
			basicLambda(),
			{Name: "orders", Code: "x", Handler: "h", Route: "orders"},
		},
	}.Defaults()
	assets := []site.Asset{{Key: "index.html"}, {Key: "app.js"}}

	g, err := Plan(opts, assets)
	require.NoError(t, err)

	// bucket, access, policy, 2 objects, role, role policy, api, deployment,
	// stage, 2 functions, 2 permissions, runtime config
	assert.Equal(t, 15, g.Len())

	order, err := g.Order()
	require.NoError(t, err)
	pos := map[string]int{}
	for i, n := range order {
		pos[n.Name] = i
	}

	before := [][2]string{
		{"s3-static-web-bucket", "s3-static-web-bucket-policy"},
		{"s3-static-web-bucket-public-access", "s3-static-web-bucket-policy"},
		{"s3-static-web-lambda-role", "basic-lambda"},
		{"s3-static-web-lambda-log-policy", "orders"},
		{"basic-lambda", "s3-static-web-api"},
		{"orders", "s3-static-web-api"},
		{"s3-static-web-api", "s3-static-web-api-deployment"},
		{"s3-static-web-api-deployment", "s3-static-web-api-stage"},
		{"s3-static-web-api-deployment", "orders-api-permission"},
		{"s3-static-web-api-stage", "s3-static-web-runtime-config"},
	}
	for _, b := range before {
		assert.Less(t, pos[b[0]], pos[b[1]], "%s before %s", b[0], b[1])
	}

	perm, ok := g.Find(resgraph.Permission, "basic-lambda-api-permission")
	require.True(t, ok)
	var deps []string
	for _, d := range g.Dependencies(perm) {
		deps = append(deps, d.Name)
	}
	assert.ElementsMatch(t, []string{"basic-lambda", "s3-static-web-api-deployment"}, deps)
}

func TestPlanEdgeFields(t *testing.T) {
	g, err := Plan(Options{Functions: []FunctionSpec{basicLambda()}}.Defaults(), nil)
	require.NoError(t, err)

	fields := map[string]string{}
	for _, e := range g.Edges() {
		fields[e.From+">"+e.To] = e.Field
	}
	dep, _ := g.Find(resgraph.Deployment, "s3-static-web-api-deployment")
	perm, _ := g.Find(resgraph.Permission, "basic-lambda-api-permission")
	stage, _ := g.Find(resgraph.Stage, "s3-static-web-api-stage")
	rc, _ := g.Find(resgraph.RuntimeConfig, "s3-static-web-runtime-config")

	assert.Equal(t, "executionArn", fields[dep.ID+">"+perm.ID])
	assert.Equal(t, "invokeUrl", fields[stage.ID+">"+rc.ID])
}

func TestObjectKeys(t *testing.T) {
	opts := Options{}.Defaults()
	assert.Equal(t, []string{"index.html"}, ObjectKeys(opts, nil))
	assert.Equal(t, []string{"a.css"}, ObjectKeys(opts, []site.Asset{{Key: "a.css"}}))
	assert.Nil(t, ObjectKeys(Options{SiteDir: "www"}, nil))
}

func TestObjects(t *testing.T) {
	opts := Options{}.Defaults()
	objs := Objects(opts, nil)
	require.Len(t, objs, 1)
	assert.Equal(t, "index.html", objs[0].Key)
	assert.Equal(t, InlineContentType, objs[0].ContentType)
	assert.Equal(t, int64(len(site.DefaultIndexHTML)), objs[0].Size)

	assets := []site.Asset{
		{Key: "index.html", ContentType: "text/html"},
		{Key: "site.css", ContentType: "text/css"},
	}
	opts = Options{Functions: []FunctionSpec{basicLambda()}}.Defaults()
	objs = Objects(opts, assets)
	require.Len(t, objs, 3)
	assert.Equal(t, "site.css", objs[1].Key)
	assert.Equal(t, site.DefaultRuntimeConfigKey, objs[2].Key)
	assert.Equal(t, site.RuntimeConfigContentType, objs[2].ContentType)
}
