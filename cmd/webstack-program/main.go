// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// webstack-program is the website stack as a standalone Pulumi program, for
// use with the pulumi CLI. It reads its options from the stack configuration
// under the webstack namespace; see Pulumi.yaml.
package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/stack"
)

func main() {
	pulumi.Run(stack.ConfiguredProgram)
}
