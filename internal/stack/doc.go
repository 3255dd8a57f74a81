// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package stack composes the static website stack: a public website bucket
// and its content, optional Lambda functions with their execution role, and
// a REST API in front of the functions whose URL is published back into the
// bucket as a runtime config script.
package stack
