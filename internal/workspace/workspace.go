// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optrefresh"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/common/workspace"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/backend"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/cacheutil"
)

const (
	// EnvPassphrase is the Pulumi variable holding the secrets passphrase for
	// file and S3 backends.
	EnvPassphrase = "PULUMI_CONFIG_PASSPHRASE"
	// RegionKey is the provider config key carrying the deployment region.
	RegionKey = "aws:region"
)

// Settings select the stack to operate on.
type Settings struct {
	Project    string
	Stack      string
	Region     string
	Profile    string
	Backend    backend.Backend
	Home       string
	Passphrase string
	Program    pulumi.RunFunc
	// Progress receives the engine's streamed output. Nil discards it.
	Progress io.Writer
}

// Validate reports every missing setting.
func (s Settings) Validate() error {
	var result *multierror.Error
	if s.Project == "" {
		result = multierror.Append(result, errors.New("project is required"))
	}
	if s.Stack == "" {
		result = multierror.Append(result, errors.New("stack is required"))
	}
	if s.Region == "" {
		result = multierror.Append(result, errors.New("region is required"))
	}
	if s.Backend == nil {
		result = multierror.Append(result, errors.New("backend is required"))
	}
	if s.Program == nil {
		result = multierror.Append(result, errors.New("program is required"))
	}
	return result.ErrorOrNil()
}

// Env returns the environment handed to the Pulumi CLI.
func (s Settings) Env() map[string]string {
	env := map[string]string{}
	if s.Backend != nil && s.Backend.Type() != "cloud" {
		env[EnvPassphrase] = s.Passphrase
	}
	if s.Profile != "" {
		env["AWS_PROFILE"] = s.Profile
	}
	if s.Backend != nil {
		for k, v := range s.Backend.Env() {
			env[k] = v
		}
	}
	return env
}

// stackAPI is the part of auto.Stack the workspace drives.
type stackAPI interface {
	Up(ctx context.Context, opts ...optup.Option) (auto.UpResult, error)
	Preview(ctx context.Context, opts ...optpreview.Option) (auto.PreviewResult, error)
	Refresh(ctx context.Context, opts ...optrefresh.Option) (auto.RefreshResult, error)
	Destroy(ctx context.Context, opts ...optdestroy.Option) (auto.DestroyResult, error)
	Outputs(ctx context.Context) (auto.OutputMap, error)
}

// Workspace is an opened stack.
type Workspace struct {
	Settings
	stack  stackAPI
	remove func(ctx context.Context) error
}

// Open prepares the backend, selects or creates the stack with an inline
// program and sets the region.
func Open(ctx context.Context, settings Settings) (*Workspace, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace settings: %w", err)
	}

	if err := settings.Backend.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("backend %s: %w", settings.Backend, err)
	}

	if settings.Home == "" {
		home, err := cacheutil.Subdir("pulumi")
		if err != nil {
			return nil, err
		}
		settings.Home = home
	} else if err := os.MkdirAll(settings.Home, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create pulumi home: %w", err)
	}

	proj := auto.Project(workspace.Project{
		Name:    tokens.PackageName(settings.Project),
		Runtime: workspace.NewProjectRuntimeInfo("go", nil),
		Backend: &workspace.ProjectBackend{
			URL: settings.Backend.URL(),
		},
	})

	opts := []auto.LocalWorkspaceOption{
		proj,
		auto.PulumiHome(settings.Home),
		auto.EnvVars(settings.Env()),
	}
	if settings.Backend.Type() != "cloud" {
		opts = append(opts, auto.SecretsProvider("passphrase"))
	}

	log.WithFields(log.Fields{
		"project": settings.Project,
		"stack":   settings.Stack,
		"backend": settings.Backend.String(),
	}).Debug("selecting stack")

	s, err := auto.UpsertStackInlineSource(ctx, settings.Stack, settings.Project, settings.Program, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create or select stack %s: %w", settings.Stack, err)
	}

	if err := s.SetConfig(ctx, RegionKey, auto.ConfigValue{Value: settings.Region}); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", RegionKey, err)
	}

	log.Infof("selected stack %s", settings.Stack)

	return &Workspace{
		Settings: settings,
		stack:    &s,
		remove: func(ctx context.Context) error {
			return s.Workspace().RemoveStack(ctx, settings.Stack)
		},
	}, nil
}

func (w *Workspace) progress() io.Writer {
	if w.Progress == nil {
		return io.Discard
	}
	return w.Progress
}

// Up deploys the stack, optionally refreshing first, and caches the outputs.
func (w *Workspace) Up(ctx context.Context, refresh bool) (Result, error) {
	opts := []optup.Option{optup.ProgressStreams(w.progress())}
	if refresh {
		opts = append(opts, optup.Refresh())
	}

	log.Infof("updating stack %s", w.Settings.Stack)
	res, err := w.stack.Up(ctx, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to update stack %s: %w", w.Settings.Stack, err)
	}

	result := Result{
		Outputs: convertOutputs(res.Outputs),
		Summary: convertSummary(res.Summary.ResourceChanges),
	}
	w.cache(result.Outputs)
	return result, nil
}

// Preview reports the changes an update would make.
func (w *Workspace) Preview(ctx context.Context) (Result, error) {
	res, err := w.stack.Preview(ctx, optpreview.ProgressStreams(w.progress()))
	if err != nil {
		return Result{}, fmt.Errorf("failed to preview stack %s: %w", w.Settings.Stack, err)
	}

	summary := make(map[string]int, len(res.ChangeSummary))
	for op, n := range res.ChangeSummary {
		summary[string(op)] = n
	}
	return Result{Summary: summary}, nil
}

// Refresh reconciles state with the cloud and caches the outputs.
func (w *Workspace) Refresh(ctx context.Context) (Result, error) {
	res, err := w.stack.Refresh(ctx, optrefresh.ProgressStreams(w.progress()))
	if err != nil {
		return Result{}, fmt.Errorf("failed to refresh stack %s: %w", w.Settings.Stack, err)
	}

	outputs, err := w.Outputs(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Outputs: outputs, Summary: convertSummary(res.Summary.ResourceChanges)}, nil
}

// Destroy deletes every resource in the stack. With remove the stack itself
// is deleted from the backend afterwards.
func (w *Workspace) Destroy(ctx context.Context, remove bool) (Result, error) {
	res, err := w.stack.Destroy(ctx, optdestroy.ProgressStreams(w.progress()))
	if err != nil {
		return Result{}, fmt.Errorf("failed to destroy stack %s: %w", w.Settings.Stack, err)
	}

	w.cache(map[string]Output{})

	if remove && w.remove != nil {
		if err := w.remove(ctx); err != nil {
			return Result{}, fmt.Errorf("failed to remove stack %s: %w", w.Settings.Stack, err)
		}
		log.Infof("removed stack %s", w.Settings.Stack)
	}

	return Result{Summary: convertSummary(res.Summary.ResourceChanges)}, nil
}

// Outputs reads the current stack outputs and caches them.
func (w *Workspace) Outputs(ctx context.Context) (map[string]Output, error) {
	res, err := w.stack.Outputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs of stack %s: %w", w.Settings.Stack, err)
	}
	outputs := convertOutputs(res)
	w.cache(outputs)
	return outputs, nil
}

func (w *Workspace) cache(outputs map[string]Output) {
	if err := WriteCache(w.Project, w.Settings.Stack, outputs); err != nil {
		log.WithError(err).Warn("failed to cache outputs")
	}
}

func convertOutputs(in auto.OutputMap) map[string]Output {
	out := make(map[string]Output, len(in))
	for k, v := range in {
		out[k] = Output{Value: v.Value, Secret: v.Secret}
	}
	return out
}

func convertSummary(changes *map[string]int) map[string]int {
	summary := map[string]int{}
	if changes == nil {
		return summary
	}
	for op, n := range *changes {
		summary[op] = n
	}
	return summary
}
