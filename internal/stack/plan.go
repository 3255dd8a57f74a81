// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"errors"
	"fmt"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/resgraph"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
)

// ObjectKeys returns the bucket keys uploaded for opts. When no assets were
// scanned the inline content becomes the index document.
func ObjectKeys(opts Options, assets []site.Asset) []string {
	if len(assets) == 0 {
		if opts.Content == "" {
			return nil
		}
		return []string{opts.IndexDocument}
	}
	keys := make([]string, 0, len(assets))
	for _, a := range assets {
		keys = append(keys, a.Key)
	}
	return keys
}

// ErrNoAssets is returned for a site directory whose include and exclude
// globs select no files.
var ErrNoAssets = errors.New("site directory selects no files")

// ScanAssets returns the files uploaded from the site directory of opts, or
// nil when the inline index page is used.
func ScanAssets(opts Options) ([]site.Asset, error) {
	if opts.SiteDir == "" {
		return nil, nil
	}
	assets, err := site.Scan(opts.SiteDir, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: %s (include %v, exclude %v)", ErrNoAssets, opts.SiteDir, opts.Include, opts.Exclude)
	}
	return assets, nil
}

// InlineContentType is the content type of the inline index document.
const InlineContentType = "text/html"

// Objects returns every bucket object Compose declares for opts with the
// content type it is uploaded with, the runtime config script included.
// Path is empty for objects that are not backed by a file.
func Objects(opts Options, assets []site.Asset) []site.Asset {
	var objects []site.Asset
	if len(assets) == 0 {
		if opts.Content != "" {
			objects = append(objects, site.Asset{
				Key:         opts.IndexDocument,
				Size:        int64(len(opts.Content)),
				ContentType: InlineContentType,
			})
		}
	} else {
		objects = append(objects, assets...)
	}

	if opts.HasGateway() {
		objects = append(objects, site.Asset{
			Key:         opts.RuntimeConfig.Key,
			ContentType: site.RuntimeConfigContentType,
		})
	}
	return objects
}

// Plan returns the graph of resources Compose declares for opts and the
// derived values that connect them. opts must already carry its defaults.
func Plan(opts Options, assets []site.Asset) (*resgraph.Graph, error) {
	g := newPlanner()
	n := names(opts.Name)

	bucket, err := g.declare(resgraph.Bucket, n.bucket())
	if err != nil {
		return nil, err
	}
	access, err := g.declare(resgraph.BucketPublicAccess, n.publicAccess())
	if err != nil {
		return nil, err
	}
	bucketPolicy, err := g.declare(resgraph.BucketPolicy, n.bucketPolicy())
	if err != nil {
		return nil, err
	}
	g.bind(bucket, access, "id")
	g.bind(bucket, bucketPolicy, "id")
	g.bind(access, bucketPolicy, "dependsOn")

	for _, key := range ObjectKeys(opts, assets) {
		if key == opts.RuntimeConfig.Key && opts.HasGateway() {
			return nil, fmt.Errorf("asset %s collides with the generated runtime config", key)
		}
		obj, err := g.declare(resgraph.BucketObject, n.object(key))
		if err != nil {
			return nil, err
		}
		g.bind(bucket, obj, "id")
	}

	if !opts.HasGateway() {
		return g.done()
	}

	role, err := g.declare(resgraph.Role, n.role())
	if err != nil {
		return nil, err
	}
	rolePolicy, err := g.declare(resgraph.RolePolicy, n.rolePolicy())
	if err != nil {
		return nil, err
	}
	g.bind(role, rolePolicy, "id")

	api, err := g.declare(resgraph.RestAPI, n.api())
	if err != nil {
		return nil, err
	}
	deployment, err := g.declare(resgraph.Deployment, n.deployment())
	if err != nil {
		return nil, err
	}
	stage, err := g.declare(resgraph.Stage, n.stage())
	if err != nil {
		return nil, err
	}
	g.bind(api, deployment, "id")
	g.bind(api, stage, "id")
	g.bind(deployment, stage, "id")

	for _, spec := range opts.Functions {
		fn, err := g.declare(resgraph.Function, n.function(spec.Name))
		if err != nil {
			return nil, err
		}
		perm, err := g.declare(resgraph.Permission, n.permission(spec.Name))
		if err != nil {
			return nil, err
		}
		g.bind(role, fn, "arn")
		g.bind(rolePolicy, fn, "dependsOn")
		g.bind(fn, api, "arn")
		g.bind(fn, perm, "name")
		g.bind(deployment, perm, "executionArn")
	}

	rc, err := g.declare(resgraph.RuntimeConfig, n.runtimeConfig())
	if err != nil {
		return nil, err
	}
	g.bind(bucket, rc, "id")
	g.bind(stage, rc, "invokeUrl")

	return g.done()
}

// planner collects the first binding error so Plan reads top to bottom.
type planner struct {
	g   *resgraph.Graph
	err error
}

func newPlanner() *planner {
	return &planner{g: resgraph.New()}
}

func (p *planner) declare(kind resgraph.Kind, name string) (resgraph.Node, error) {
	return p.g.Declare(kind, name)
}

func (p *planner) bind(from, to resgraph.Node, field string) {
	if p.err != nil {
		return
	}
	p.err = p.g.Bind(from, to, field)
}

func (p *planner) done() (*resgraph.Graph, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.g, nil
}
