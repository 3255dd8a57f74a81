// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/cacheutil"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/config"
)

func TestMangleArguments(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	_, err := config.Load(filepath.Join("testdata", "webstack.yaml"))
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults set",
			args: []string{"webstack", "outputs", "-S", "prod"},
			want: []string{"webstack", "outputs", "-o", "json", "--titles", "-S", "prod"},
		},
		{
			name: "named set",
			args: []string{"webstack", "outputs", "@secrets", "--cached"},
			want: []string{"webstack", "outputs", "--show-secrets", "-f", "secret=true", "--cached"},
		},
		{
			name: "unknown set",
			args: []string{"webstack", "outputs", "@nope"},
			want: []string{"webstack", "outputs"},
		},
		{
			name: "no sets for command",
			args: []string{"webstack", "up", "-y"},
			want: []string{"webstack", "up", "-y"},
		},
		{
			name: "subcommand stays first",
			args: []string{"webstack", "render", "assets", "--dir", "www"},
			want: []string{"webstack", "render", "assets", "-o", "yaml", "--dir", "www"},
		},
		{
			name: "help",
			args: []string{"webstack", "outputs", "@secrets", "-h"},
			want: []string{"webstack", "outputs", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}

func TestCacheTTL(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	config.Reset()
	t.Cleanup(config.Reset)

	// No config file anywhere on the search path.
	empty := t.TempDir()
	t.Chdir(empty)
	for _, env := range []string{config.EnvPath, "XDG_CONFIG_HOME", "APPDATA", "HOME"} {
		t.Setenv(env, "")
	}
	t.Setenv(cacheutil.EnvTTL, "")
	assert.Equal(t, cacheutil.DefaultTTLHours, cacheTTL())

	_, err = config.Load(filepath.Join(wd, "testdata", "webstack.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 72, cacheTTL())

	t.Setenv(cacheutil.EnvTTL, "6")
	assert.Equal(t, 6, cacheTTL())
}
