// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/cacheutil"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/command"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
	mylog "github.com/GeXiaoguo/pulumi-s3-static-web/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		if err := command.LoadConfig(args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version)
			return 0
		}
	}

	// Best-effort: pre-create cache directory when caching is enabled, then
	// drop stale outputs.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil {
		// Non-fatal: print to stderr and continue.
		fmt.Fprintln(os.Stderr, err)
	} else if ok {
		if err := cacheutil.Purge(cacheTTL()); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// cacheTTL resolves the output cache lifetime in hours. WEBSTACK_CACHE_TTL
// wins over cache.ttl in the config file.
func cacheTTL() int {
	hours, err := config.GetInt("cache.ttl", cacheutil.DefaultTTLHours)
	if err != nil {
		log.WithError(err).Warn("ignoring cache.ttl")
		hours = cacheutil.DefaultTTLHours
	}
	return cacheutil.TTLHours(hours)
}

// mangleArguments expands an argument set from the config file. "@name"
// selects <command>.<name>; without one <command>.defaults is used. The set's
// arguments go in front of the user's so flags given on the command line win.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	// Subcommand names (render policy, completion bash) stay ahead of the
	// inserted flags.
	idx := 2
	for idx < len(args) && !strings.HasPrefix(args[idx], "-") && !strings.HasPrefix(args[idx], "@") {
		idx++
	}

	rest := make([]string, 0, len(args))
	rest = append(rest, args[idx:]...)

	// See if there is a @set specified. If so, the @set entry is removed from
	// args.
	set := "defaults"
	for i, a := range rest {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			rest = append(rest[:i], rest[i+1:]...)
			break
		}
	}

	var setArgs []string
	entries, _ := config.GetStringSlice(args[1] + "." + set)
	for _, arg := range entries {
		setArgs = append(setArgs, strings.Fields(arg)...)
	}

	out := append([]string{}, args[:idx]...)
	out = append(out, setArgs...)
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
