// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/aws"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/workspace"
)

// UpCommandAction deploys the website stack and emits its outputs.
func UpCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "up"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}

	t := ResolveTarget(cmd)
	if err := Confirm(cmd, fmt.Sprintf("Deploy %s to stack %s?", opts.Name, t.Stack)); err != nil {
		return err
	}

	if cmd.Bool("preflight") {
		preflight(ctx, t)
	}

	ws, err := OpenWorkspace(ctx, cmd, opts)
	if err != nil {
		return err
	}

	result, err := ws.Up(ctx, cmd.Bool("refresh"))
	if err != nil {
		return err
	}
	log.WithField("changes", result.Summary).Info("stack updated")

	return Emit(cmd, workspace.Rows(result.Outputs, cmd.Bool("show-secrets")), outputAttrs...)
}

// preflight logs who the credentials resolve to. A failure is logged, the
// engine reports the authoritative error.
func preflight(ctx context.Context, t meta.Target) {
	cfg, err := aws.LoadAWSConfig(ctx, awsOptions(t)...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS config")
		return
	}
	id, err := aws.CallerIdentity(ctx, aws.NewSTS(cfg))
	if err != nil {
		log.WithError(err).Warn("credential check failed")
		return
	}
	log.WithFields(log.Fields{"account": id.Account, "arn": id.Arn}).Info("deploying as")
}

// UpCommandBuilder constructs the cli.Command for "up".
func UpCommandBuilder(meta meta.Meta) *cli.Command {
	src := meta.Config.Source
	b := &CommandBuilder{
		Name:      "up",
		Usage:     "create or update the website stack",
		UsageText: `webstack up [options]`,
		Output:    true,
		Meta:      meta,
		Action:    UpCommandAction,
		Examples: [][2]string{
			{"webstack up -y", "deploy the configured site without prompting"},
			{"webstack up --dir ./dist -S prod", "deploy ./dist to the prod stack"},
			{"webstack up --refresh -o json", "refresh first and print outputs as json"},
		},
		Flags: append(NewSiteFlags(),
			yesFlag(),
			quietFlag(),
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "refresh state before updating",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("up.refresh", altsrc.StringSourcer(src)),
					yaml.YAML("refresh", altsrc.StringSourcer(src)),
				),
			},
			&cli.BoolWithInverseFlag{
				Name:  "preflight",
				Usage: "check AWS credentials before deploying",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("up.preflight", altsrc.StringSourcer(src)),
				),
				Value: true,
			},
			showSecretsFlag(),
		),
	}
	return b.Build()
}

func showSecretsFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "show-secrets",
		Usage: "show secret output values in plain text",
	}
}
