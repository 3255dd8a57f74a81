// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/aws"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/stack"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/verify"
)

// VerifyCommandAction probes the deployed website and reports one row per
// check. Every check runs; the command fails if any did.
func VerifyCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.Config.Namespace = "verify"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}

	outputs, err := stackOutputs(ctx, cmd)
	if err != nil {
		return err
	}

	bucket, ok := outputs[stack.OutputBucketName]
	if !ok || bucket.Value == nil {
		return fmt.Errorf("stack has no %s output; has it been deployed?", stack.OutputBucketName)
	}

	assets, err := scanAssets(opts)
	if err != nil {
		return err
	}

	target := verify.Target{
		Bucket:        fmt.Sprint(bucket.Value),
		IndexDocument: opts.IndexDocument,
		Assets:        stack.Objects(opts, assets),
	}
	if role, ok := outputs[stack.OutputRoleName]; ok && role.Value != nil {
		target.RoleName = fmt.Sprint(role.Value)
	}

	t := ResolveTarget(cmd)
	cfg, err := aws.LoadAWSConfig(ctx, awsOptions(t)...)
	if err != nil {
		return err
	}

	checker := &verify.Checker{S3: aws.NewS3(cfg), IAM: aws.NewIAM(cfg)}
	checks, runErr := checker.Run(ctx, target)

	if err := Emit(cmd, CheckRows(checks), "check", "ok", "detail"); err != nil {
		return err
	}
	return runErr
}

// CheckRows converts check results to output rows.
func CheckRows(checks []verify.Check) []map[string]any {
	rows := make([]map[string]any, 0, len(checks))
	for _, c := range checks {
		rows = append(rows, map[string]any{
			"check":  c.Name,
			"ok":     c.OK,
			"detail": c.Detail,
		})
	}
	return rows
}

// scanAssets returns the files uploaded from the site directory, if any.
func scanAssets(opts stack.Options) ([]site.Asset, error) {
	return stack.ScanAssets(opts)
}

// VerifyCommandBuilder constructs the cli.Command for "verify".
func VerifyCommandBuilder(meta meta.Meta) *cli.Command {
	b := &CommandBuilder{
		Name:      "verify",
		Usage:     "check the deployed website against its configuration",
		UsageText: `webstack verify [options]`,
		Output:    true,
		Meta:      meta,
		Action:    VerifyCommandAction,
		Examples: [][2]string{
			{"webstack verify", "probe the deployed site"},
			{"webstack verify -f ok=false", "only show failed checks"},
		},
		Flags: append(NewSiteFlags(), cachedFlag(), quietFlag()),
	}
	return b.Build()
}
