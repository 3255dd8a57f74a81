// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws loads AWS SDK configuration and builds the service clients used
// to preflight state backends and verify deployed stacks.
package aws
