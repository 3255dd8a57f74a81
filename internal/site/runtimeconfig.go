// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package site

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/dop251/goja"
)

const (
	DefaultRuntimeConfigKey      = "config.js"
	DefaultRuntimeConfigVariable = "appConfig"

	// APIURLKey is the runtime config entry holding the gateway invoke URL.
	APIURLKey = "apiUrl"

	RuntimeConfigContentType = "application/javascript"
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var runtimeConfigTmpl = template.Must(template.New("runtime-config").
	Funcs(sprig.TxtFuncMap()).
	Parse(`// Generated by webstack. Do not edit.
window.{{ .Variable }} = {{ .Values | toPrettyJson }};
`))

// RuntimeConfig describes the script that hands deploy-time values to the
// browser.
type RuntimeConfig struct {
	Key      string            `mapstructure:"key" yaml:"key" json:"key"`
	Variable string            `mapstructure:"variable" yaml:"variable" json:"variable"`
	Values   map[string]string `mapstructure:"values" yaml:"values" json:"values"`
}

// WithDefaults fills the key and variable name.
func (rc RuntimeConfig) WithDefaults() RuntimeConfig {
	if rc.Key == "" {
		rc.Key = DefaultRuntimeConfigKey
	}
	if rc.Variable == "" {
		rc.Variable = DefaultRuntimeConfigVariable
	}
	return rc
}

// RenderRuntimeConfig returns the script text for rc.
func RenderRuntimeConfig(rc RuntimeConfig) (string, error) {
	rc = rc.WithDefaults()
	if !identifier.MatchString(rc.Variable) {
		return "", fmt.Errorf("runtime config: %q is not a valid identifier", rc.Variable)
	}
	if rc.Values == nil {
		rc.Values = map[string]string{}
	}

	var buf bytes.Buffer
	if err := runtimeConfigTmpl.Execute(&buf, rc); err != nil {
		return "", fmt.Errorf("failed to render runtime config: %w", err)
	}
	return buf.String(), nil
}

// ValidateRuntimeConfig runs script against an empty window object and checks
// that window[variable] holds every entry of want.
func ValidateRuntimeConfig(script, variable string, want map[string]string) error {
	vm := goja.New()
	window := vm.NewObject()
	if err := vm.Set("window", window); err != nil {
		return err
	}

	if _, err := vm.RunString(script); err != nil {
		return fmt.Errorf("runtime config does not evaluate: %w", err)
	}

	v := window.Get(variable)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return fmt.Errorf("runtime config does not define window.%s", variable)
	}
	obj := v.ToObject(vm)

	for k, w := range want {
		got := obj.Get(k)
		if got == nil || goja.IsUndefined(got) {
			return fmt.Errorf("runtime config is missing %s", k)
		}
		if got.String() != w {
			return fmt.Errorf("runtime config %s is %q, want %q", k, got.String(), w)
		}
	}
	return nil
}

// RuntimeConfigScript renders and validates the script publishing apiURL
// under variable. Extra values are merged in. It is used as an ApplyT
// callback on the stage invoke URL.
func RuntimeConfigScript(rc RuntimeConfig, apiURL string) (string, error) {
	rc = rc.WithDefaults()
	values := map[string]string{}
	for k, v := range rc.Values {
		values[k] = v
	}
	values[APIURLKey] = apiURL
	rc.Values = values

	script, err := RenderRuntimeConfig(rc)
	if err != nil {
		return "", err
	}
	if err := ValidateRuntimeConfig(script, rc.Variable, values); err != nil {
		return "", err
	}
	return script, nil
}
