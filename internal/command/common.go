// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/attrs"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/aws"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/backend"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/output"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/stack"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/workspace"
)

var (
	// interactive reports whether prompts can be shown.
	interactive = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}

	// ask shows a yes/no prompt.
	ask = func(message string) (bool, error) {
		ok := false
		err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
		return ok, err
	}
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	return al, nil
}

// writer is where command results go.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// Emit renders rows per the output flags on cmd.
func Emit(cmd *cli.Command, rows []map[string]any, defaults ...string) error {
	al, err := BuildAttrs(cmd, defaults...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())
	return output.SliceDiceSpit(rows, al, cmd, writer(cmd))
}

// ResolveTarget collects the stack selection flags. Retries comes from the
// config file only.
func ResolveTarget(cmd *cli.Command) meta.Target {
	retries, err := config.GetInt("retries", 0)
	if err != nil {
		log.WithError(err).Warn("ignoring retries")
	}
	return meta.Target{
		Project: cmd.String("project"),
		Stack:   cmd.String("stack"),
		Region:  cmd.String("region"),
		Backend: cmd.String("backend"),
		Profile: cmd.String("profile"),
		Retries: retries,
	}
}

// awsOptions maps t onto AWS config loading options.
func awsOptions(t meta.Target) []aws.Option {
	opts := []aws.Option{aws.WithProfile(t.Profile), aws.WithRegion(t.Region)}
	if t.Retries > 0 {
		attempts := t.Retries + 1
		opts = append(opts, aws.WithRetryer(func() awsv2.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), attempts)
		}))
	}
	return opts
}

// LoadSiteOptions reads the site section of the config file and applies the
// site flags on top. The result carries its defaults and is validated.
func LoadSiteOptions(cmd *cli.Command) (stack.Options, error) {
	var opts stack.Options
	if err := config.Decode("site", &opts); err != nil &&
		!errors.Is(err, config.ErrKeyNotFound) && !errors.Is(err, config.ErrNotFound) &&
		!errors.Is(err, fs.ErrNotExist) {
		return stack.Options{}, err
	}

	if dir := cmd.String("dir"); dir != "" {
		opts.SiteDir = dir
		opts.Content = ""
	}
	if name := cmd.String("name"); name != "" {
		opts.Name = name
	}

	opts = opts.Defaults()
	if err := opts.Validate(); err != nil {
		return stack.Options{}, fmt.Errorf("invalid site configuration: %w", err)
	}
	return opts, nil
}

// OpenWorkspace selects the stack named by the target flags with a program
// composing opts.
func OpenWorkspace(ctx context.Context, cmd *cli.Command, opts stack.Options) (*workspace.Workspace, error) {
	t := ResolveTarget(cmd)
	log.Debugf("target: %+v", t)

	be, err := backend.NewBackend(ctx, t.Backend, backend.Options{Region: t.Region, Profile: t.Profile})
	if err != nil {
		return nil, err
	}

	var progress io.Writer
	if !cmd.Bool("quiet") {
		progress = os.Stderr
	}

	return workspace.Open(ctx, workspace.Settings{
		Project:    t.Project,
		Stack:      t.Stack,
		Region:     t.Region,
		Profile:    t.Profile,
		Backend:    be,
		Passphrase: cmd.String("passphrase"),
		Program:    stack.Program(opts),
		Progress:   progress,
	})
}

// Confirm asks before a change is made. --yes skips the prompt; without it a
// non-interactive session is refused.
func Confirm(cmd *cli.Command, message string) error {
	if cmd.Bool("yes") {
		return nil
	}
	if !interactive() {
		return fmt.Errorf("refusing to continue without --yes in a non-interactive session")
	}
	ok, err := ask(message)
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if !ok {
		return errCancelled
	}
	return nil
}

var errCancelled = errors.New("cancelled")

// CommandBuilder constructs a cli.Command for a stack operation using a
// consistent pattern: metadata, target flags and validation.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Output    bool
	Examples  [][2]string
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (b *CommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{}, b.Flags...)
	flags = append(flags, NewTargetFlags(b.Name)...)
	if b.Output {
		flags = append(flags, NewGlobalFlags(b.Name)...)
	}
	if len(b.Examples) > 0 {
		flags = append(flags, &cli.BoolFlag{
			Name:  "examples",
			Usage: "show usage examples and exit",
		})
	}

	action := b.Action
	examples := b.Examples

	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		Metadata: map[string]any{
			"meta":     b.Meta,
			"examples": b.Examples,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// Bail out early if we're just dumping examples.
			if len(examples) > 0 && c.Bool("examples") {
				output.DumpExamples(writer(c), examples)
				return nil
			}
			return action(ctx, c)
		},
	}
}

// GlobalFlagsValidator checks combinations single flag validators cannot.
func GlobalFlagsValidator(_ context.Context, c *cli.Command) error {
	if c.IsSet("filter") && c.String("output") == "raw" {
		return errors.New("--filter has no effect with --output raw")
	}
	return nil
}
