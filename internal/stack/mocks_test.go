// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"fmt"
	"sync"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	testBucketID     = "my-bucket"
	testAccount      = "123456789012"
	testRegion       = "us-west-2"
	testAPIID        = "a1b2c3d4e5"
	testExecutionArn = "arn:aws:execute-api:" + testRegion + ":" + testAccount + ":" + testAPIID + "/"
)

func testFunctionArn(name string) string {
	return fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", testRegion, testAccount, name)
}

func testInvokeURL(stage string) string {
	return fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s", testAPIID, testRegion, stage)
}

// registered is one resource seen by the mock engine.
type registered struct {
	Type   string
	Name   string
	Inputs resource.PropertyMap
}

// mocks resolves resources the way the AWS provider would, closely enough
// for the wiring between them to be checked.
type mocks struct {
	mu        sync.Mutex
	resources []registered
}

func (m *mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.resources = append(m.resources, registered{Type: args.TypeToken, Name: args.Name, Inputs: args.Inputs})
	m.mu.Unlock()

	outs := args.Inputs.Copy()
	id := args.Name + "-id"

	switch args.TypeToken {
	case "aws:s3/bucket:Bucket":
		id = testBucketID
		outs["bucket"] = resource.NewStringProperty(testBucketID)
		outs["websiteEndpoint"] = resource.NewStringProperty(testBucketID + ".s3-website-" + testRegion + ".amazonaws.com")
	case "aws:iam/role:Role":
		outs["name"] = resource.NewStringProperty(args.Name + "-1a2b3c")
		outs["arn"] = resource.NewStringProperty("arn:aws:iam::" + testAccount + ":role/" + args.Name + "-1a2b3c")
	case "aws:lambda/function:Function":
		outs["name"] = resource.NewStringProperty(args.Name)
		outs["arn"] = resource.NewStringProperty(testFunctionArn(args.Name))
	case "aws:apigateway/restApi:RestApi":
		id = testAPIID
	case "aws:apigateway/deployment:Deployment":
		outs["executionArn"] = resource.NewStringProperty(testExecutionArn)
	case "aws:apigateway/stage:Stage":
		stage := args.Inputs["stageName"].StringValue()
		outs["invokeUrl"] = resource.NewStringProperty(testInvokeURL(stage))
	}

	return id, outs, nil
}

func (m *mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return args.Args, nil
}

func (m *mocks) ofType(typ string) []registered {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []registered
	for _, r := range m.resources {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func (m *mocks) named(typ, name string) (registered, bool) {
	for _, r := range m.ofType(typ) {
		if r.Name == name {
			return r, true
		}
	}
	return registered{}, false
}

func str(r registered, key string) string {
	v, ok := r.Inputs[resource.PropertyKey(key)]
	if !ok || !v.IsString() {
		return ""
	}
	return v.StringValue()
}

func resourceKey(k string) resource.PropertyKey {
	return resource.PropertyKey(k)
}
