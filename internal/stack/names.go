// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"github.com/iancoleman/strcase"
)

// Output names exported by the stack.
const (
	OutputBucketName      = "bucketName"
	OutputWebsiteEndpoint = "websiteEndpoint"
	OutputRoleName        = "roleName"
	OutputAPIURL          = "apiUrl"
)

// FunctionOutputName is the export holding the ARN of the named function.
func FunctionOutputName(fn string) string {
	return strcase.ToLowerCamel(fn) + "Arn"
}

// names derives logical resource names from the stack name.
type names string

func (n names) bucket() string       { return string(n) + "-bucket" }
func (n names) publicAccess() string { return string(n) + "-bucket-public-access" }
func (n names) bucketPolicy() string { return string(n) + "-bucket-policy" }
func (n names) role() string         { return string(n) + "-lambda-role" }
func (n names) rolePolicy() string   { return string(n) + "-lambda-log-policy" }
func (n names) api() string          { return string(n) + "-api" }
func (n names) deployment() string   { return string(n) + "-api-deployment" }
func (n names) stage() string        { return string(n) + "-api-stage" }
func (n names) runtimeConfig() string {
	return string(n) + "-runtime-config"
}

func (n names) object(key string) string {
	return string(n) + "-object-" + key
}

func (n names) function(fn string) string {
	return strcase.ToKebab(fn)
}

func (n names) permission(fn string) string {
	return strcase.ToKebab(fn) + "-api-permission"
}

// APITitle is the name of the REST API declared for a stack named name.
func APITitle(name string) string {
	return names(name).api()
}
