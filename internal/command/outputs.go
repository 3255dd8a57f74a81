// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/workspace"
)

// OutputsCommandAction emits the stack outputs, from the local cache when
// --cached is set and the cache holds them.
func OutputsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "outputs"

	outputs, err := stackOutputs(ctx, cmd)
	if err != nil {
		return err
	}

	return Emit(cmd, workspace.Rows(outputs, cmd.Bool("show-secrets")), outputAttrs...)
}

// stackOutputs returns the outputs of the target stack. With --cached the
// cache is tried first; a miss falls through to the backend.
func stackOutputs(ctx context.Context, cmd *cli.Command) (map[string]workspace.Output, error) {
	t := ResolveTarget(cmd)

	if cmd.Bool("cached") {
		outputs, ok, err := workspace.ReadCache(t.Project, t.Stack)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Debugf("using cached outputs for %s/%s", t.Project, t.Stack)
			return outputs, nil
		}
		log.Debug("output cache miss")
	}

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return nil, err
	}
	ws, err := OpenWorkspace(ctx, cmd, opts)
	if err != nil {
		return nil, err
	}
	return ws.Outputs(ctx)
}

var outputAttrs = []string{"name", "value", "secret"}

func cachedFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "cached",
		Usage: "read outputs saved by the last update instead of the backend",
	}
}

// OutputsCommandBuilder constructs the cli.Command for "outputs".
func OutputsCommandBuilder(meta meta.Meta) *cli.Command {
	b := &CommandBuilder{
		Name:      "outputs",
		Usage:     "show stack outputs",
		UsageText: `webstack outputs [options]`,
		Output:    true,
		Meta:      meta,
		Action:    OutputsCommandAction,
		Examples: [][2]string{
			{"webstack outputs", "list outputs of the default stack"},
			{"webstack outputs --cached -f name=apiUrl", "show the cached invoke URL"},
		},
		Flags: append(NewSiteFlags(), cachedFlag(), showSecretsFlag(), quietFlag()),
	}
	return b.Build()
}
