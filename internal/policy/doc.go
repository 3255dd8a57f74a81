// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package policy builds the IAM trust, IAM permission and S3 bucket policy
// documents declared by the stack.
package policy
