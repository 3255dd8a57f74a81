// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// ConfigNamespace prefixes every stack config key read by the program.
const ConfigNamespace = "webstack"

func key(k string) string {
	return ConfigNamespace + ":" + k
}

// OptionsFromConfig reads Options from the stack configuration. Scalars are
// plain keys; lists and maps are structured values, for example
//
//	pulumi config set --path 'webstack:functions[0].name' basic-lambda
func OptionsFromConfig(ctx *pulumi.Context) (Options, error) {
	opts := Options{
		Name:          config.Get(ctx, key("name")),
		IndexDocument: config.Get(ctx, key("index")),
		ErrorDocument: config.Get(ctx, key("error")),
		SiteDir:       config.Get(ctx, key("siteDir")),
		Content:       config.Get(ctx, key("content")),
		ForceDestroy:  config.GetBool(ctx, key("forceDestroy")),
		StageName:     config.Get(ctx, key("stageName")),
	}
	if opts.Name == "" {
		opts.Name = ctx.Project()
	}

	objects := map[string]interface{}{
		"include":       &opts.Include,
		"exclude":       &opts.Exclude,
		"functions":     &opts.Functions,
		"runtimeConfig": &opts.RuntimeConfig,
		"tags":          &opts.Tags,
	}
	for k, out := range objects {
		if config.Get(ctx, key(k)) == "" {
			continue
		}
		if err := config.GetObject(ctx, key(k), out); err != nil {
			return Options{}, fmt.Errorf("invalid config %s: %w", key(k), err)
		}
	}

	return opts, nil
}

// ConfiguredProgram composes the stack described by the stack configuration.
func ConfiguredProgram(ctx *pulumi.Context) error {
	opts, err := OptionsFromConfig(ctx)
	if err != nil {
		return err
	}
	_, err = Compose(ctx, opts)
	return err
}
