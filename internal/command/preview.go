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

// PreviewCommandAction shows the changes an update would make.
func PreviewCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "preview"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}

	ws, err := OpenWorkspace(ctx, cmd, opts)
	if err != nil {
		return err
	}

	result, err := ws.Preview(ctx)
	if err != nil {
		return err
	}

	return Emit(cmd, workspace.SummaryRows(result.Summary), "op", "count")
}

// PreviewCommandBuilder constructs the cli.Command for "preview".
func PreviewCommandBuilder(meta meta.Meta) *cli.Command {
	b := &CommandBuilder{
		Name:      "preview",
		Usage:     "show the changes an update would make",
		UsageText: `webstack preview [options]`,
		Output:    true,
		Meta:      meta,
		Action:    PreviewCommandAction,
		Examples: [][2]string{
			{"webstack preview", "show pending changes for the default stack"},
			{"webstack preview -S prod --dir ./dist", "preview ./dist against prod"},
		},
		Flags: append(NewSiteFlags(), quietFlag()),
	}
	return b.Build()
}
