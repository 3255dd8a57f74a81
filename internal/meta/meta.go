// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
)

// Target names the stack a command operates on and how AWS is reached.
type Target struct {
	Project string
	Stack   string
	Region  string
	Backend string
	Profile string
	// Retries is the number of extra attempts per AWS API call; 0 keeps the
	// SDK default.
	Retries int
}

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	StartingDir string
}
