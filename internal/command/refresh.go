// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/workspace"
)

// RefreshCommandAction reconciles stack state with what exists in AWS.
func RefreshCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "refresh"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}

	t := ResolveTarget(cmd)
	if err := Confirm(cmd, fmt.Sprintf("Refresh state of stack %s?", t.Stack)); err != nil {
		return err
	}

	ws, err := OpenWorkspace(ctx, cmd, opts)
	if err != nil {
		return err
	}

	result, err := ws.Refresh(ctx)
	if err != nil {
		return err
	}

	return Emit(cmd, workspace.SummaryRows(result.Summary), "op", "count")
}

// RefreshCommandBuilder constructs the cli.Command for "refresh".
func RefreshCommandBuilder(meta meta.Meta) *cli.Command {
	b := &CommandBuilder{
		Name:      "refresh",
		Usage:     "reconcile stack state with the cloud",
		UsageText: `webstack refresh [options]`,
		Output:    true,
		Meta:      meta,
		Action:    RefreshCommandAction,
		Examples: [][2]string{
			{"webstack refresh -y", "reconcile state without prompting"},
		},
		Flags: append(NewSiteFlags(), yesFlag(), quietFlag()),
	}
	return b.Build()
}
