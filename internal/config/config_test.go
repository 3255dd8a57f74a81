// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points WEBSTACK_CFG at a testdata file and resets the
// global Config.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err)

	t.Setenv(EnvPath, absPath)
	Reset()
	t.Cleanup(Reset)
}

func TestLoad(t *testing.T) {
	setupTestConfig(t, "webstack.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Data["stack"])
	assert.Contains(t, cfg.Source, "webstack.yaml")
}

func TestLoadErrors(t *testing.T) {
	setupTestConfig(t, "invalid.yaml")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv(EnvPath, filepath.Join("testdata", "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	Reset()
	t.Cleanup(Reset)

	_, err := Load()
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetters(t *testing.T) {
	setupTestConfig(t, "webstack.yaml")

	s, err := GetString("region")
	assert.NoError(t, err)
	assert.Equal(t, "us-west-2", s)

	s, err = GetString("missing", "fallback")
	assert.NoError(t, err)
	assert.Equal(t, "fallback", s)

	_, err = GetString("missing")
	assert.Error(t, err)

	_, err = GetString("retries")
	assert.Error(t, err)

	n, err := GetInt("retries")
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = GetInt("site.functions", 3)
	assert.Error(t, err)
	assert.Zero(t, n)

	b, err := GetBool("refresh")
	assert.NoError(t, err)
	assert.True(t, b)

	b, err = GetBool("nope", true)
	assert.NoError(t, err)
	assert.True(t, b)

	list, err := GetStringSlice("outputs.defaults")
	assert.NoError(t, err)
	assert.Equal(t, []string{"-o json", "--titles"}, list)

	list, err = GetStringSlice("stack")
	assert.NoError(t, err)
	assert.Equal(t, []string{"dev"}, list)
}

func TestNamespace(t *testing.T) {
	setupTestConfig(t, "webstack.yaml")
	_, err := Load()
	require.NoError(t, err)
	Config.Namespace = "up"

	s, err := GetString("stack")
	assert.NoError(t, err)
	assert.Equal(t, "staging", s)

	b, err := GetBool("refresh")
	assert.NoError(t, err)
	assert.False(t, b)

	s, err = GetString("region")
	assert.NoError(t, err)
	assert.Equal(t, "us-west-2", s)
}

type function struct {
	Name        string            `mapstructure:"name"`
	Code        string            `mapstructure:"code"`
	Runtime     string            `mapstructure:"runtime"`
	Route       string            `mapstructure:"route"`
	MemorySize  int               `mapstructure:"memorySize"`
	Environment map[string]string `mapstructure:"environment"`
}

type site struct {
	Name         string            `mapstructure:"name"`
	SiteDir      string            `mapstructure:"siteDir"`
	Include      []string          `mapstructure:"include"`
	Exclude      []string          `mapstructure:"exclude"`
	ForceDestroy bool              `mapstructure:"forceDestroy"`
	Functions    []function        `mapstructure:"functions"`
	Tags         map[string]string `mapstructure:"tags"`
}

func TestDecode(t *testing.T) {
	setupTestConfig(t, "webstack.yaml")

	var s site
	require.NoError(t, Decode("site", &s))

	assert.Equal(t, "demo-site", s.Name)
	assert.Equal(t, []string{"**"}, s.Include)
	assert.Equal(t, []string{"**/*.map"}, s.Exclude)
	assert.True(t, s.ForceDestroy)
	require.Len(t, s.Functions, 2)
	assert.Equal(t, 256, s.Functions[0].MemorySize)
	assert.Equal(t, "dotnetcore3.1", s.Functions[0].Runtime)
	assert.Equal(t, "orders", s.Functions[1].Route)
	assert.Equal(t, map[string]string{"TABLE": "orders"}, s.Functions[1].Environment)
	assert.Equal(t, "webstack", s.Tags["project"])

	assert.ErrorIs(t, Decode("missing", &s), ErrKeyNotFound)
}
