// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/cacheutil"
)

// BackendLocal keeps state in a directory on this machine.
type BackendLocal struct {
	Dir string
}

type Option func(*BackendLocal) error

// FromURL takes the directory from a file:// URL. A leading ~ is expanded.
func FromURL(spec string) Option {
	return func(be *BackendLocal) error {
		dir := strings.TrimPrefix(spec, "file://")
		if dir == "" {
			return fmt.Errorf("file backend %q has no path", spec)
		}
		if dir == "~" || strings.HasPrefix(dir, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get user home directory: %w", err)
			}
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		be.Dir = abs
		return nil
	}
}

// FromDir uses dir as is.
func FromDir(dir string) Option {
	return func(be *BackendLocal) error {
		be.Dir = dir
		return nil
	}
}

// NewBackendLocal returns a local backend. Without options state goes to the
// state directory beneath the cache base.
func NewBackendLocal(options ...Option) (*BackendLocal, error) {
	be := &BackendLocal{}
	for _, o := range options {
		if err := o(be); err != nil {
			return nil, err
		}
	}

	if be.Dir == "" {
		base, ok := cacheutil.Dir()
		if !ok {
			return nil, fmt.Errorf("no state directory; pass a file:// backend or set %s", cacheutil.EnvDir)
		}
		be.Dir = filepath.Join(base, "state")
	}

	log.Debugf("local backend: %s", be.Dir)
	return be, nil
}

func (be *BackendLocal) URL() string {
	return "file://" + filepath.ToSlash(be.Dir)
}

func (be *BackendLocal) Env() map[string]string {
	return nil
}

// Prepare creates the state directory.
func (be *BackendLocal) Prepare(_ context.Context) error {
	if err := os.MkdirAll(be.Dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

func (be *BackendLocal) String() string {
	return be.URL()
}

func (be *BackendLocal) Type() string {
	return "local"
}
