// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/gateway"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/meta"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/policy"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/stack"
)

// Policy kinds accepted by "render policy".
var policyKinds = []string{"public-read", "trust", "logging"}

// RenderPolicyAction writes one of the IAM documents the stack attaches.
func RenderPolicyAction(_ context.Context, cmd *cli.Command) error {
	var doc policy.Document
	switch kind := cmd.String("kind"); kind {
	case "public-read":
		bucket := cmd.String("bucket")
		if bucket == "" {
			return fmt.Errorf("--bucket is required for a public-read policy")
		}
		doc = policy.PublicRead(bucket)
	case "trust":
		doc = policy.LambdaAssumeRole()
	case "logging":
		doc = policy.LambdaLogging()
	default:
		return fmt.Errorf("unknown policy kind %q (want one of %s)", kind, strings.Join(policyKinds, ", "))
	}

	text, err := doc.JSON()
	if err != nil {
		return err
	}
	return writeText(writer(cmd), text)
}

// RenderGatewayAction writes the OpenAPI body of the REST API for the
// configured functions. Each function needs an ARN from --arn.
func RenderGatewayAction(_ context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "render"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}
	if !opts.HasGateway() {
		return fmt.Errorf("no functions are configured")
	}

	arns, err := parseArns(cmd.StringSlice("arn"))
	if err != nil {
		return err
	}

	routes := make([]gateway.Route, 0, len(opts.Functions))
	for _, fn := range opts.Functions {
		arn, ok := arns[fn.Name]
		if !ok {
			return fmt.Errorf("no --arn given for function %s", fn.Name)
		}
		routes = append(routes, gateway.Route{Path: fn.Route, FunctionArn: arn})
	}

	body, err := gateway.Body(stack.APITitle(opts.Name), routes)
	if err != nil {
		return err
	}
	return writeText(writer(cmd), body)
}

// parseArns splits name=ARN pairs.
func parseArns(pairs []string) (map[string]string, error) {
	arns := map[string]string{}
	for _, p := range pairs {
		name, arn, ok := strings.Cut(p, "=")
		if !ok || name == "" || arn == "" {
			return nil, fmt.Errorf("invalid --arn %q (want name=ARN)", p)
		}
		arns[name] = arn
	}
	return arns, nil
}

// RenderRuntimeConfigAction writes the runtime config script for an invoke
// URL.
func RenderRuntimeConfigAction(_ context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "render"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}

	script, err := site.RuntimeConfigScript(opts.RuntimeConfig, cmd.String("api-url"))
	if err != nil {
		return err
	}
	return writeText(writer(cmd), script)
}

// RenderAssetsAction lists the objects an update uploads.
func RenderAssetsAction(_ context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "render"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}
	assets, err := scanAssets(opts)
	if err != nil {
		return err
	}

	objects := stack.Objects(opts, assets)
	rows := make([]map[string]any, 0, len(objects))
	for _, o := range objects {
		rows = append(rows, map[string]any{
			"key":         o.Key,
			"contentType": o.ContentType,
			"size":        humanize.Bytes(uint64(o.Size)), //nolint:gosec
		})
	}
	log.Debugf("%d objects, %s on disk", len(objects), humanize.Bytes(uint64(site.TotalSize(assets)))) //nolint:gosec

	return Emit(cmd, rows, "key", "contentType", "size")
}

// RenderGraphAction shows the resources an update declares and how they
// depend on each other.
func RenderGraphAction(_ context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "render"

	opts, err := LoadSiteOptions(cmd)
	if err != nil {
		return err
	}
	assets, err := scanAssets(opts)
	if err != nil {
		return err
	}

	g, err := stack.Plan(opts, assets)
	if err != nil {
		return err
	}

	if cmd.Bool("dot") {
		return g.DOT(writer(cmd))
	}

	order, err := g.Order()
	if err != nil {
		return err
	}

	rows := make([]map[string]any, 0, len(order))
	for i, n := range order {
		var deps []string
		for _, d := range g.Dependencies(n) {
			deps = append(deps, d.Name)
		}
		rows = append(rows, map[string]any{
			"order":     i + 1,
			"kind":      string(n.Kind),
			"name":      n.Name,
			"dependsOn": strings.Join(deps, ","),
		})
	}
	return Emit(cmd, rows, "order", "kind", "name", "dependsOn")
}

func writeText(w io.Writer, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}

// RenderCommandBuilder constructs the cli.Command for "render" and its
// subcommands. Nothing here touches a backend or AWS.
func RenderCommandBuilder(meta meta.Meta) *cli.Command {
	metadata := map[string]any{"meta": meta}

	withOutput := func(flags ...cli.Flag) []cli.Flag {
		return append(append(flags, NewSiteFlags()...), NewGlobalFlags("render")...)
	}

	return &cli.Command{
		Name:      "render",
		Usage:     "render the documents and plan an update would use",
		UsageText: `webstack render <policy|gateway|runtime-config|assets|graph> [options]`,
		Metadata:  metadata,
		Commands: []*cli.Command{
			{
				Name:      "policy",
				Usage:     "render an IAM policy document",
				UsageText: `webstack render policy --kind public-read --bucket <id>`,
				Metadata:  metadata,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "policy to render (" + strings.Join(policyKinds, ", ") + ")",
						Value: "public-read",
					},
					&cli.StringFlag{
						Name:  "bucket",
						Usage: "bucket id the public-read policy grants",
					},
				},
				Action: RenderPolicyAction,
			},
			{
				Name:      "gateway",
				Usage:     "render the REST API definition",
				UsageText: `webstack render gateway --arn <function>=<arn> ...`,
				Metadata:  metadata,
				Flags: append(NewSiteFlags(),
					&cli.StringSliceFlag{
						Name:  "arn",
						Usage: "function ARN as name=ARN; repeat per function",
					},
				),
				Action: RenderGatewayAction,
			},
			{
				Name:      "runtime-config",
				Usage:     "render the runtime config script",
				UsageText: `webstack render runtime-config --api-url <url>`,
				Metadata:  metadata,
				Flags: append(NewSiteFlags(),
					&cli.StringFlag{
						Name:     "api-url",
						Usage:    "gateway invoke URL",
						Required: true,
					},
				),
				Action: RenderRuntimeConfigAction,
			},
			{
				Name:      "assets",
				Usage:     "list the objects an update uploads",
				UsageText: `webstack render assets [options]`,
				Metadata:  metadata,
				Flags:     withOutput(),
				Action:    RenderAssetsAction,
			},
			{
				Name:      "graph",
				Usage:     "show the resources an update declares",
				UsageText: `webstack render graph [--dot] [options]`,
				Metadata:  metadata,
				Flags: withOutput(&cli.BoolFlag{
					Name:  "dot",
					Usage: "write Graphviz DOT instead of rows",
				}),
				Action: RenderGraphAction,
			},
		},
	}
}
