// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package gateway renders the REST API definition that fronts the stack's
// functions and the ARNs that tie the API to them.
package gateway
