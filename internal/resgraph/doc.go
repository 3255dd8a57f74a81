// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package resgraph models the resources a stack declares and the derived
// values wired between them, so the composition can be listed, ordered and
// drawn without talking to a provisioning engine.
package resgraph
