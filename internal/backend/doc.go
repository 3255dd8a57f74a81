// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package backend resolves where stack state lives: a local directory, an S3
// bucket or the Pulumi Cloud service.
package backend
