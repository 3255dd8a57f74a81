// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package contenttype

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedContentType is returned for any file whose extension is not
// in the mapping table.
var ErrUnsupportedContentType = errors.New("unsupported content type")

var types = map[string]string{
	".css":   "text/css",
	".gif":   "image/gif",
	".htm":   "text/html",
	".html":  "text/html",
	".ico":   "image/x-icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "application/javascript",
	".json":  "application/json",
	".map":   "application/json",
	".mjs":   "application/javascript",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".ttf":   "font/ttf",
	".txt":   "text/plain",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "application/xml",
}

// Lookup returns the content type for name based on its extension. The
// comparison is case-insensitive.
func Lookup(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := types[ext]; ok {
		return ct, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedContentType, name)
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedContentType, name, ext)
}

// Supported returns the sorted list of known extensions.
func Supported() []string {
	exts := make([]string, 0, len(types))
	for ext := range types {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
