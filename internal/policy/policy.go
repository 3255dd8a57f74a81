// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"fmt"
)

const (
	// Version is the only IAM policy language version in use.
	Version = "2012-10-17"

	Allow = "Allow"

	Everyone  = "*"
	GetObject = "s3:GetObject"

	LambdaService = "lambda.amazonaws.com"
	LogsResource  = "arn:aws:logs:*:*:*"
)

// Document is an IAM or bucket policy document.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single policy statement. Principal, Action and Resource
// accept either a string or a list, mirroring the policy grammar.
type Statement struct {
	Sid       string `json:"Sid"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action"`
	Resource  any    `json:"Resource,omitempty"`
}

// ServicePrincipal names an AWS service allowed by a trust policy.
type ServicePrincipal struct {
	Service string `json:"Service"`
}

// LambdaAssumeRole is the trust policy that lets the Lambda service assume an
// execution role.
func LambdaAssumeRole() Document {
	return Document{
		Version: Version,
		Statement: []Statement{{
			Sid:       "",
			Effect:    Allow,
			Principal: ServicePrincipal{Service: LambdaService},
			Action:    "sts:AssumeRole",
		}},
	}
}

// LambdaLogging grants a function's role permission to write CloudWatch logs.
func LambdaLogging() Document {
	return Document{
		Version: Version,
		Statement: []Statement{{
			Effect: Allow,
			Action: []string{
				"logs:CreateLogGroup",
				"logs:CreateLogStream",
				"logs:PutLogEvents",
			},
			Resource: LogsResource,
		}},
	}
}

// PublicReadResource is the object ARN pattern covering every key in bucketID.
func PublicReadResource(bucketID string) string {
	return "arn:aws:s3:::" + bucketID + "/*"
}

// PublicRead lets anyone read any object in bucketID.
func PublicRead(bucketID string) Document {
	return Document{
		Version: Version,
		Statement: []Statement{{
			Effect:    Allow,
			Principal: Everyone,
			Action:    []string{GetObject},
			Resource:  PublicReadResource(bucketID),
		}},
	}
}

// JSON renders d as indented JSON.
func (d Document) JSON() (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy: %w", err)
	}
	return string(b), nil
}

// MustJSON is JSON for documents built entirely from literals.
func (d Document) MustJSON() string {
	s, err := d.JSON()
	if err != nil {
		panic(err)
	}
	return s
}

// PublicReadJSON renders PublicRead(bucketID). Its signature fits an ApplyT
// callback on a bucket id output.
func PublicReadJSON(bucketID string) (string, error) {
	if bucketID == "" {
		return "", fmt.Errorf("public read policy: empty bucket id")
	}
	return PublicRead(bucketID).JSON()
}
