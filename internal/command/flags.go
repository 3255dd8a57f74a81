// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/stack"
)

// DefaultStack is the stack used when none is configured.
const DefaultStack = "dev"

// NewGlobalFlags returns the output flags shared by every command that emits
// rows. params[0] is the command name and config namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	src := config.Config.Source

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(src)),
				yaml.YAML("color", altsrc.StringSourcer(src)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(src)),
				yaml.YAML("output", altsrc.StringSourcer(src)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(src)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(src)),
				yaml.YAML("titles", altsrc.StringSourcer(src)),
			),
			Value: false,
		},
	}

	return
}

// NewTargetFlags returns the flags that pick the stack, its backend and the
// AWS account it deploys to. params[0] is the command name and config
// namespace.
func NewTargetFlags(params ...string) []cli.Flag {
	ns := params[0]
	src := config.Config.Source

	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(ns, src, &cli.StringFlag{
			Name:    "stack",
			Aliases: []string{"S"},
			Usage:   "stack to operate on",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WEBSTACK_STACK"),
			),
			Value: DefaultStack,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, StackNameValidator)
			},
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, src, &cli.StringFlag{
			Name:  "project",
			Usage: "Pulumi project name",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WEBSTACK_PROJECT"),
			),
			Value: stack.DefaultName,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, StackNameValidator)
			},
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, src, &cli.StringFlag{
			Name:  "region",
			Usage: "AWS region to deploy to",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWS_REGION"),
				cli.EnvVar("AWS_DEFAULT_REGION"),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, src, &cli.StringFlag{
			Name:  "backend",
			Usage: "state backend URL (file://, s3://, https://); defaults to local state",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WEBSTACK_BACKEND"),
				cli.EnvVar("PULUMI_BACKEND_URL"),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, BackendValidator)
			},
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, src, &cli.StringFlag{
			Name:  "profile",
			Usage: "AWS shared config profile",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("AWS_PROFILE"),
			),
		}),
		&cli.StringFlag{
			Name:  "passphrase",
			Usage: "secrets passphrase for file and s3 backends",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PULUMI_CONFIG_PASSPHRASE"),
			),
		},
	}
}

// NewSiteFlags returns the flags that override the site section of the
// config file.
func NewSiteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "directory of static files to upload; overrides site.siteDir",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "prefix for resource names; overrides site.name",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
	}
}

// configFlag is declared on the root command. Its value is read from the raw
// arguments before parsing; see ConfigPath.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "config file to use instead of the standard locations",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar(config.EnvPath),
		),
	}
}

func yesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "skip the confirmation prompt",
	}
}

func quietFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "do not stream engine progress",
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
