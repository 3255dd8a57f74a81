// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package workspace drives the website stack through the Pulumi Automation
// API: it selects or creates the stack against the chosen state backend, runs
// up, preview, refresh and destroy, and caches the last known outputs.
package workspace
