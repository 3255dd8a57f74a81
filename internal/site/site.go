// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package site

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/contenttype"
)

// DefaultIndexHTML is uploaded as the index document when no site directory
// is configured.
const DefaultIndexHTML = "<html><body><h1>Hello, Pulumi!</h1></body></html>"

// Asset is a single file destined for the website bucket.
type Asset struct {
	Key         string `json:"key" yaml:"key"`
	Path        string `json:"path" yaml:"path"`
	Size        int64  `json:"size" yaml:"size"`
	ContentType string `json:"contentType" yaml:"contentType"`
}

// Scan walks dir and returns every file selected by include and not rejected
// by exclude, keyed by its slash separated path relative to dir. Hidden files
// and directories are skipped. The first file with an unsupported extension
// stops the scan.
func Scan(dir string, include, exclude []string) ([]Asset, error) {
	if len(include) == 0 {
		include = []string{"**"}
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	var assets []Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		if !matchAny(include, key) || matchAny(exclude, key) {
			log.Debugf("skipping %s", key)
			return nil
		}

		ct, err := contenttype.Lookup(key)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		assets = append(assets, Asset{
			Key:         key,
			Path:        path,
			Size:        info.Size(),
			ContentType: ct,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Key < assets[j].Key })
	log.Debugf("scanned %d assets in %s", len(assets), dir)
	return assets, nil
}

func matchAny(patterns []string, key string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, key); ok {
			return true
		}
	}
	return false
}

// TotalSize sums the size of assets.
func TotalSize(assets []Asset) int64 {
	var n int64
	for _, a := range assets {
		n += a.Size
	}
	return n
}
