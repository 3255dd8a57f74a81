// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
)

const (
	DefaultName          = "s3-static-web"
	DefaultIndexDocument = "index.html"
	DefaultRuntime       = "dotnet8"
	DefaultMemorySize    = 128
	DefaultTimeout       = 10
	DefaultStageName     = "prod"
)

// FunctionSpec describes one Lambda function and the gateway route that
// fronts it.
type FunctionSpec struct {
	Name        string            `mapstructure:"name" yaml:"name" json:"name"`
	Runtime     string            `mapstructure:"runtime" yaml:"runtime" json:"runtime"`
	Code        string            `mapstructure:"code" yaml:"code" json:"code"`
	Handler     string            `mapstructure:"handler" yaml:"handler" json:"handler"`
	Route       string            `mapstructure:"route" yaml:"route" json:"route"`
	MemorySize  int               `mapstructure:"memorySize" yaml:"memorySize" json:"memorySize"`
	Timeout     int               `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Environment map[string]string `mapstructure:"environment" yaml:"environment" json:"environment"`
}

// Options selects which parts of the stack are declared. A stack without
// functions is a plain static website; the gateway and the runtime config
// script only exist when at least one function does.
type Options struct {
	Name          string             `mapstructure:"name" yaml:"name" json:"name"`
	IndexDocument string             `mapstructure:"index" yaml:"index" json:"index"`
	ErrorDocument string             `mapstructure:"error" yaml:"error" json:"error"`
	SiteDir       string             `mapstructure:"siteDir" yaml:"siteDir" json:"siteDir"`
	Include       []string           `mapstructure:"include" yaml:"include" json:"include"`
	Exclude       []string           `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	Content       string             `mapstructure:"content" yaml:"content" json:"content"`
	ForceDestroy  bool               `mapstructure:"forceDestroy" yaml:"forceDestroy" json:"forceDestroy"`
	Functions     []FunctionSpec     `mapstructure:"functions" yaml:"functions" json:"functions"`
	StageName     string             `mapstructure:"stageName" yaml:"stageName" json:"stageName"`
	RuntimeConfig site.RuntimeConfig `mapstructure:"runtimeConfig" yaml:"runtimeConfig" json:"runtimeConfig"`
	Tags          map[string]string  `mapstructure:"tags" yaml:"tags" json:"tags"`
}

// Defaults returns a copy of o with every unset field filled in.
func (o Options) Defaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.IndexDocument == "" {
		o.IndexDocument = DefaultIndexDocument
	}
	if o.SiteDir == "" && o.Content == "" {
		o.Content = site.DefaultIndexHTML
	}
	if o.StageName == "" {
		o.StageName = DefaultStageName
	}
	o.RuntimeConfig = o.RuntimeConfig.WithDefaults()

	fns := make([]FunctionSpec, len(o.Functions))
	for i, fn := range o.Functions {
		if fn.Runtime == "" {
			fn.Runtime = DefaultRuntime
		}
		if fn.MemorySize == 0 {
			fn.MemorySize = DefaultMemorySize
		}
		if fn.Timeout == 0 {
			fn.Timeout = DefaultTimeout
		}
		fns[i] = fn
	}
	o.Functions = fns
	return o
}

// HasGateway reports whether a REST API is declared.
func (o Options) HasGateway() bool {
	return len(o.Functions) > 0
}

// Validate reports every problem with o at once.
func (o Options) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(o.Name) == "" {
		result = multierror.Append(result, fmt.Errorf("name is required"))
	}
	if o.IndexDocument == "" || strings.Contains(o.IndexDocument, "/") {
		result = multierror.Append(result, fmt.Errorf("index document %q must be a bare file name", o.IndexDocument))
	}

	names := map[string]bool{}
	routes := map[string]string{}
	for i, fn := range o.Functions {
		label := fn.Name
		if label == "" {
			label = fmt.Sprintf("functions[%d]", i)
			result = multierror.Append(result, fmt.Errorf("%s: name is required", label))
		} else if names[fn.Name] {
			result = multierror.Append(result, fmt.Errorf("%s: duplicate function name", label))
		}
		names[fn.Name] = true

		if fn.Code == "" {
			result = multierror.Append(result, fmt.Errorf("%s: code is required", label))
		}
		if fn.Handler == "" {
			result = multierror.Append(result, fmt.Errorf("%s: handler is required", label))
		}

		route := strings.Trim(fn.Route, "/")
		if other, dup := routes[route]; dup {
			result = multierror.Append(result, fmt.Errorf("%s: route %q already served by %s", label, "/"+route, other))
		}
		routes[route] = label
	}

	if o.HasGateway() && o.StageName == "" {
		result = multierror.Append(result, fmt.Errorf("stage name is required when functions are declared"))
	}

	return result.ErrorOrNil()
}
