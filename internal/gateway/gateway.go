// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

const (
	// Principal is the service principal granted invoke permission.
	Principal = "apigateway.amazonaws.com"

	// InvokeAction is the Lambda action the gateway needs.
	InvokeAction = "lambda:InvokeFunction"

	proxyPath = "{proxy+}"
)

// Route binds a path prefix to a function. An empty Path is the root
// catch-all.
type Route struct {
	Path        string
	FunctionArn string
}

type integration struct {
	URI                 string `json:"uri"`
	PassthroughBehavior string `json:"passthroughBehavior"`
	HTTPMethod          string `json:"httpMethod"`
	Type                string `json:"type"`
}

type operation struct {
	Integration integration `json:"x-amazon-apigateway-integration"`
}

type pathItem struct {
	AnyMethod operation `json:"x-amazon-apigateway-any-method"`
}

type info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type document struct {
	Swagger string              `json:"swagger"`
	Info    info                `json:"info"`
	Paths   map[string]pathItem `json:"paths"`
}

// IntegrationURI is the Lambda proxy invocation URI for functionArn. The
// region comes from the ARN itself.
func IntegrationURI(functionArn string) (string, error) {
	a, err := arn.Parse(functionArn)
	if err != nil {
		return "", fmt.Errorf("invalid function arn %q: %w", functionArn, err)
	}
	if a.Service != "lambda" {
		return "", fmt.Errorf("invalid function arn %q: service is %q", functionArn, a.Service)
	}
	if a.Region == "" {
		return "", fmt.Errorf("invalid function arn %q: no region", functionArn)
	}

	return fmt.Sprintf("arn:%s:apigateway:%s:lambda:path/2015-03-31/functions/%s/invocations",
		a.Partition, a.Region, functionArn), nil
}

// Paths returns the gateway paths served by r. A greedy proxy path needs at
// least one segment, so the prefix itself is listed too.
func (r Route) Paths() []string {
	p := strings.Trim(r.Path, "/")
	if p == "" {
		return []string{"/", "/" + proxyPath}
	}
	return []string{"/" + p, "/" + p + "/" + proxyPath}
}

// Body renders the OpenAPI 2.0 definition of a REST API that proxies every
// method on each route to its function.
func Body(title string, routes []Route) (string, error) {
	if len(routes) == 0 {
		return "", fmt.Errorf("gateway %q has no routes", title)
	}

	doc := document{
		Swagger: "2.0",
		Info:    info{Title: title, Version: "1.0"},
		Paths:   map[string]pathItem{},
	}

	for _, r := range routes {
		uri, err := IntegrationURI(r.FunctionArn)
		if err != nil {
			return "", err
		}
		item := pathItem{AnyMethod: operation{Integration: integration{
			URI:                 uri,
			PassthroughBehavior: "when_no_match",
			HTTPMethod:          "POST",
			Type:                "aws_proxy",
		}}}
		for _, p := range r.Paths() {
			if _, dup := doc.Paths[p]; dup {
				return "", fmt.Errorf("gateway %q: duplicate path %s", title, p)
			}
			doc.Paths[p] = item
		}
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal gateway body: %w", err)
	}
	return string(b), nil
}

// InvokeSourceArn scopes an invoke permission to every stage, method and path
// of the deployment identified by executionArn.
func InvokeSourceArn(executionArn string) string {
	if strings.HasSuffix(executionArn, "/") {
		return executionArn + "*/*"
	}
	return executionArn + "/*/*"
}
