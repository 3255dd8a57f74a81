// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/backend/cloud"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/backend/local"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/backend/s3"
)

var ErrUnknownScheme = errors.New("unknown backend scheme")

// Backend is where Pulumi keeps stack state.
type Backend interface {
	// URL is the value handed to Pulumi as the project backend.
	URL() string
	// Env carries the variables Pulumi needs to reach the backend.
	Env() map[string]string
	// Prepare checks the backend is usable before any stack operation.
	Prepare(ctx context.Context) error
	String() string
	Type() string
}

// Options are passed through to the concrete backends.
type Options struct {
	Region  string
	Profile string
}

// NewBackend picks the backend for spec by its URL scheme. An empty spec is a
// local file backend under the cache directory.
func NewBackend(ctx context.Context, spec string, opts Options) (Backend, error) {
	log.Debugf("NewBackend: spec=%q", spec)

	var (
		be  Backend
		err error
	)

	scheme := peek(spec)
	switch {
	case spec == "":
		be, err = local.NewBackendLocal()
	case scheme == "file":
		be, err = local.NewBackendLocal(local.FromURL(spec))
	case scheme == "s3":
		be, err = s3.NewBackendS3(ctx, spec,
			s3.WithRegion(opts.Region),
			s3.WithProfile(opts.Profile),
		)
	case scheme == "https" || scheme == "http":
		be, err = cloud.NewBackendCloud(spec)
	default:
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknownScheme, scheme, spec)
	}

	if err != nil {
		return nil, err
	}
	return be, nil
}

func peek(spec string) string {
	u, err := url.Parse(spec)
	if err != nil || u.Scheme == "" {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
