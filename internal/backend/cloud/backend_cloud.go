// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvToken holds a Pulumi Cloud access token.
const EnvToken = "PULUMI_ACCESS_TOKEN"

// BackendCloud keeps state in the Pulumi Cloud service or a self-hosted
// equivalent.
type BackendCloud struct {
	Endpoint string
	token    string
}

// NewBackendCloud returns a cloud backend for endpoint.
func NewBackendCloud(endpoint string) (*BackendCloud, error) {
	return &BackendCloud{Endpoint: strings.TrimSuffix(endpoint, "/")}, nil
}

// Token retrieves the access token from the environment or the Pulumi
// credentials file, in that order.
func (be *BackendCloud) Token() (string, error) {
	if be.token != "" {
		return be.token, nil
	}
	if token := os.Getenv(EnvToken); token != "" {
		be.token = token
		return token, nil
	}

	home := os.Getenv("PULUMI_HOME")
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		home = filepath.Join(h, ".pulumi")
	}

	data, err := os.ReadFile(filepath.Join(home, "credentials.json"))
	if err != nil {
		return "", fmt.Errorf("no %s and no credentials file: %w", EnvToken, err)
	}

	var creds struct {
		AccessTokens map[string]string `json:"accessTokens"`
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, ok := creds.AccessTokens[be.Endpoint]
	if !ok || token == "" {
		return "", fmt.Errorf("no token for %s; run pulumi login or set %s", be.Endpoint, EnvToken)
	}
	be.token = token
	return token, nil
}

func (be *BackendCloud) URL() string {
	return be.Endpoint
}

func (be *BackendCloud) Env() map[string]string {
	token, err := be.Token()
	if err != nil {
		return nil
	}
	return map[string]string{EnvToken: token}
}

// Prepare makes sure a token is available.
func (be *BackendCloud) Prepare(_ context.Context) error {
	_, err := be.Token()
	return err
}

func (be *BackendCloud) String() string {
	return be.Endpoint
}

func (be *BackendCloud) Type() string {
	return "cloud"
}
