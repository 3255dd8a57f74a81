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

// DestroyCommandAction deletes every resource in the stack.
func DestroyCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "destroy"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}

	t := ResolveTarget(cmd)
	if err := Confirm(cmd, fmt.Sprintf("Destroy every resource in stack %s?", t.Stack)); err != nil {
		return err
	}

	ws, err := OpenWorkspace(ctx, cmd, opts)
	if err != nil {
		return err
	}

	result, err := ws.Destroy(ctx, cmd.Bool("remove"))
	if err != nil {
		return err
	}

	return Emit(cmd, workspace.SummaryRows(result.Summary), "op", "count")
}

// DestroyCommandBuilder constructs the cli.Command for "destroy".
func DestroyCommandBuilder(meta meta.Meta) *cli.Command {
	b := &CommandBuilder{
		Name:      "destroy",
		Usage:     "delete every resource in the stack",
		UsageText: `webstack destroy [options]`,
		Output:    true,
		Meta:      meta,
		Action:    DestroyCommandAction,
		Examples: [][2]string{
			{"webstack destroy -y", "delete the default stack's resources"},
			{"webstack destroy -y --remove -S pr-42", "tear down and forget a preview stack"},
		},
		Flags: append(NewSiteFlags(),
			yesFlag(),
			quietFlag(),
			&cli.BoolFlag{
				Name:  "remove",
				Usage: "remove the stack and its history afterwards",
			},
		),
	}
	return b.Build()
}
