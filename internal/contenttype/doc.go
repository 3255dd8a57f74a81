// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package contenttype maps static site file extensions to the Content-Type
// stored on uploaded bucket objects. Unknown extensions are an error.
package contenttype
