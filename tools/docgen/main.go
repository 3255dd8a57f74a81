// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/command"
)

// Minimal doc generator:
// - Walks the webstack command tree
// - Generates:
//   - docs/commands/<cmd>.md from usage, flags and examples
//   - docs/man/share/man1/webstack-<cmd>.1 via md2man

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")

	for _, dir := range []string{commandsDir, manOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"webstack"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	walk(app.Commands, nil, func(path []string, cmd *cli.Command) {
		name := strings.Join(path, "-")
		md := renderMarkdown(path, cmd)

		mdPath := filepath.Join(commandsDir, name+".md")
		if err := writeFileIfChanged(mdPath, []byte(md), writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", name, err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("webstack-%s.1", name))
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", name, err)
		}
		processed++
	})

	if processed == 0 {
		fatalf("no commands found")
	}
}

// walk visits every command that has an action, parents before children.
func walk(cmds []*cli.Command, parent []string, fn func([]string, *cli.Command)) {
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		path := append(append([]string{}, parent...), cmd.Name)
		if cmd.Action != nil {
			fn(path, cmd)
		}
		walk(cmd.Commands, path, fn)
	}
}

func renderMarkdown(path []string, cmd *cli.Command) string {
	var b strings.Builder
	full := "webstack " + strings.Join(path, " ")

	fmt.Fprintf(&b, "# webstack-%s 1\n\n", strings.Join(path, "-"))
	fmt.Fprintf(&b, "## NAME\n\n%s - %s\n\n", full, cmd.Usage)
	if cmd.UsageText != "" {
		fmt.Fprintf(&b, "## SYNOPSIS\n\n`%s`\n\n", cmd.UsageText)
	}

	if len(cmd.Flags) > 0 {
		b.WriteString("## OPTIONS\n\n")
		for _, f := range cmd.Flags {
			names := make([]string, 0, len(f.Names()))
			for _, n := range f.Names() {
				if len(n) == 1 {
					names = append(names, "-"+n)
				} else {
					names = append(names, "--"+n)
				}
			}
			usage := ""
			if u, ok := f.(interface{ GetUsage() string }); ok {
				usage = u.GetUsage()
			}
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", strings.Join(names, ", "), usage)
		}
	}

	if examples, ok := cmd.Metadata["examples"].([][2]string); ok && len(examples) > 0 {
		b.WriteString("## EXAMPLES\n\n")
		for _, ex := range examples {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", ex[1], ex[0])
		}
	}

	return b.String()
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}
