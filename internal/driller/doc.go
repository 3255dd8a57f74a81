// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller resolves dotted paths into JSON documents such as stack
// output rows and live AWS policy documents.
package driller
