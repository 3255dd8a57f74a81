// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the webstack
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	if err := LoadConfig(args); err != nil {
		return nil, err
	}
	config.Config.Namespace = ns

	meta := meta.Meta{
		Args:        args,
		Config:      config.Config,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "webstack",
		Usage: "deploy a static website to S3 with optional Lambda functions behind API Gateway",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "webstack version info",
				HideDefault: true,
			},
			configFlag(),
		},
	}

	app.Commands = append(app.Commands,
		UpCommandBuilder(meta),
		PreviewCommandBuilder(meta),
		RefreshCommandBuilder(meta),
		DestroyCommandBuilder(meta),
		OutputsCommandBuilder(meta),
		VerifyCommandBuilder(meta),
		RenderCommandBuilder(meta),
		CompletionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app.Commands)

	return app, nil
}

func sortFlags(cmds []*cli.Command) {
	for _, cmd := range cmds {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
		sortFlags(cmd.Commands)
	}
}

// LoadConfig loads the config file named by --config in args, or the one
// found in the standard locations. Having no config file is not an error.
func LoadConfig(args []string) error {
	path := ConfigPath(args)
	if _, err := config.Load(path); err != nil {
		if path == "" && (errors.Is(err, config.ErrNotFound) || errors.Is(err, fs.ErrNotExist)) {
			log.Debugf("no config file: %v", err)
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Debugf("config: %s", config.Config.Source)
	return nil
}

// ConfigPath returns the value of a --config flag in args, if any.
func ConfigPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
