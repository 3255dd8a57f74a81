// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package site prepares what gets uploaded to the website bucket: the static
// assets found on disk and the generated runtime configuration script.
package site
