// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package verify checks a deployed website against what the stack declared:
// the bucket website index, the public read policy, object content types and
// the Lambda role trust.
package verify
