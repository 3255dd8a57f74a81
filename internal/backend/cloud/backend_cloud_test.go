// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cloud

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PULUMI_HOME", home)
	t.Setenv(EnvToken, "")

	creds := `{"current":"https://api.pulumi.com","accessTokens":{"https://api.pulumi.com":"pul-file"}}`
	require.NoError(t, os.WriteFile(filepath.Join(home, "credentials.json"), []byte(creds), 0o600))

	be, err := NewBackendCloud("https://api.pulumi.com/")
	require.NoError(t, err)
	token, err := be.Token()
	require.NoError(t, err)
	assert.Equal(t, "pul-file", token)
	assert.Equal(t, map[string]string{EnvToken: "pul-file"}, be.Env())

	t.Setenv(EnvToken, "pul-env")
	be, _ = NewBackendCloud("https://api.pulumi.com")
	token, err = be.Token()
	require.NoError(t, err)
	assert.Equal(t, "pul-env", token)
}

func TestPrepareWithoutToken(t *testing.T) {
	t.Setenv("PULUMI_HOME", t.TempDir())
	t.Setenv(EnvToken, "")

	be, err := NewBackendCloud("https://pulumi.example.com")
	require.NoError(t, err)
	assert.Error(t, be.Prepare(context.Background()))
	assert.Nil(t, be.Env())
}
