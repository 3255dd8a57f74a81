// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package stack

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/apex/log"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/apigateway"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/gateway"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/policy"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/resgraph"
	"github.com/GeXiaoguo/pulumi-s3-static-web/internal/site"
)

// Stack holds every resource declared by Compose.
type Stack struct {
	Plan          *resgraph.Graph
	Assets        []site.Asset
	Bucket        *s3.Bucket
	PublicAccess  *s3.BucketPublicAccessBlock
	BucketPolicy  *s3.BucketPolicy
	Objects       map[string]*s3.BucketObject
	Role          *iam.Role
	RolePolicy    *iam.RolePolicy
	Functions     map[string]*lambda.Function
	API           *apigateway.RestApi
	Deployment    *apigateway.Deployment
	Stage         *apigateway.Stage
	Permissions   map[string]*lambda.Permission
	RuntimeConfig *s3.BucketObject
}

// Program returns a Pulumi program composing opts.
func Program(opts Options) pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		_, err := Compose(ctx, opts)
		return err
	}
}

// Compose declares the stack described by opts and exports its outputs.
// Every reference between resources is wired through outputs; nothing here
// waits for a value to resolve.
func Compose(ctx *pulumi.Context, opts Options) (*Stack, error) {
	opts = opts.Defaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stack options: %w", err)
	}

	assets, err := ScanAssets(opts)
	if err != nil {
		return nil, err
	}

	plan, err := Plan(opts, assets)
	if err != nil {
		return nil, err
	}
	log.Debugf("composing %d resources for %s", plan.Len(), opts.Name)

	s := &Stack{
		Plan:        plan,
		Assets:      assets,
		Objects:     map[string]*s3.BucketObject{},
		Functions:   map[string]*lambda.Function{},
		Permissions: map[string]*lambda.Permission{},
	}
	n := names(opts.Name)
	tags := pulumi.ToStringMap(opts.Tags)

	if err := s.website(ctx, n, opts, tags); err != nil {
		return nil, err
	}

	if opts.HasGateway() {
		if err := s.functions(ctx, n, opts, tags); err != nil {
			return nil, err
		}
		if err := s.gateway(ctx, n, opts, tags); err != nil {
			return nil, err
		}
	}

	s.export(ctx, opts)
	return s, nil
}

func (s *Stack) website(ctx *pulumi.Context, n names, opts Options, tags pulumi.StringMap) error {
	website := &s3.BucketWebsiteArgs{IndexDocument: pulumi.String(opts.IndexDocument)}
	if opts.ErrorDocument != "" {
		website.ErrorDocument = pulumi.String(opts.ErrorDocument)
	}

	bucket, err := s3.NewBucket(ctx, n.bucket(), &s3.BucketArgs{
		Website:      website,
		ForceDestroy: pulumi.Bool(opts.ForceDestroy),
		Tags:         tags,
	})
	if err != nil {
		return fmt.Errorf("failed to declare bucket: %w", err)
	}
	s.Bucket = bucket

	// A public bucket policy is rejected while any of these are set.
	access, err := s3.NewBucketPublicAccessBlock(ctx, n.publicAccess(), &s3.BucketPublicAccessBlockArgs{
		Bucket:                bucket.ID(),
		BlockPublicAcls:       pulumi.Bool(false),
		BlockPublicPolicy:     pulumi.Bool(false),
		IgnorePublicAcls:      pulumi.Bool(false),
		RestrictPublicBuckets: pulumi.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("failed to declare public access block: %w", err)
	}
	s.PublicAccess = access

	bucketPolicy, err := s3.NewBucketPolicy(ctx, n.bucketPolicy(), &s3.BucketPolicyArgs{
		Bucket: bucket.ID(),
		Policy: bucket.ID().ApplyT(policy.PublicReadJSON).(pulumi.StringOutput),
	}, pulumi.DependsOn([]pulumi.Resource{access}))
	if err != nil {
		return fmt.Errorf("failed to declare bucket policy: %w", err)
	}
	s.BucketPolicy = bucketPolicy

	if len(s.Assets) == 0 && opts.Content != "" {
		obj, err := s3.NewBucketObject(ctx, n.object(opts.IndexDocument), &s3.BucketObjectArgs{
			Bucket:      bucket.ID(),
			Key:         pulumi.String(opts.IndexDocument),
			Content:     pulumi.String(opts.Content),
			ContentType: pulumi.String(InlineContentType),
		})
		if err != nil {
			return fmt.Errorf("failed to declare %s: %w", opts.IndexDocument, err)
		}
		s.Objects[opts.IndexDocument] = obj
		return nil
	}

	for _, a := range s.Assets {
		obj, err := s3.NewBucketObject(ctx, n.object(a.Key), &s3.BucketObjectArgs{
			Bucket:      bucket.ID(),
			Key:         pulumi.String(a.Key),
			Source:      pulumi.NewFileAsset(a.Path),
			ContentType: pulumi.String(a.ContentType),
		})
		if err != nil {
			return fmt.Errorf("failed to declare %s: %w", a.Key, err)
		}
		s.Objects[a.Key] = obj
	}
	return nil
}

func (s *Stack) functions(ctx *pulumi.Context, n names, opts Options, tags pulumi.StringMap) error {
	trust, err := policy.LambdaAssumeRole().JSON()
	if err != nil {
		return err
	}
	role, err := iam.NewRole(ctx, n.role(), &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(trust),
		Tags:             tags,
	})
	if err != nil {
		return fmt.Errorf("failed to declare execution role: %w", err)
	}
	s.Role = role

	logging, err := policy.LambdaLogging().JSON()
	if err != nil {
		return err
	}
	rolePolicy, err := iam.NewRolePolicy(ctx, n.rolePolicy(), &iam.RolePolicyArgs{
		Role:   role.ID(),
		Policy: pulumi.String(logging),
	})
	if err != nil {
		return fmt.Errorf("failed to declare log policy: %w", err)
	}
	s.RolePolicy = rolePolicy

	for _, spec := range opts.Functions {
		args := &lambda.FunctionArgs{
			Runtime:    pulumi.String(spec.Runtime),
			Code:       pulumi.NewFileArchive(spec.Code),
			Handler:    pulumi.String(spec.Handler),
			Role:       role.Arn,
			MemorySize: pulumi.Int(spec.MemorySize),
			Timeout:    pulumi.Int(spec.Timeout),
			Tags:       tags,
		}
		if len(spec.Environment) > 0 {
			args.Environment = &lambda.FunctionEnvironmentArgs{
				Variables: pulumi.ToStringMap(spec.Environment),
			}
		}

		fn, err := lambda.NewFunction(ctx, n.function(spec.Name), args,
			pulumi.DependsOn([]pulumi.Resource{rolePolicy}))
		if err != nil {
			return fmt.Errorf("failed to declare function %s: %w", spec.Name, err)
		}
		s.Functions[spec.Name] = fn
	}
	return nil
}

func (s *Stack) gateway(ctx *pulumi.Context, n names, opts Options, tags pulumi.StringMap) error {
	arns := make([]interface{}, 0, len(opts.Functions))
	for _, spec := range opts.Functions {
		arns = append(arns, s.Functions[spec.Name].Arn)
	}

	title := n.api()
	specs := opts.Functions
	body := pulumi.All(arns...).ApplyT(func(resolved []interface{}) (string, error) {
		routes := make([]gateway.Route, 0, len(resolved))
		for i, v := range resolved {
			arn, ok := v.(string)
			if !ok {
				return "", fmt.Errorf("function %s: arn is %T", specs[i].Name, v)
			}
			routes = append(routes, gateway.Route{Path: specs[i].Route, FunctionArn: arn})
		}
		return gateway.Body(title, routes)
	}).(pulumi.StringOutput)

	api, err := apigateway.NewRestApi(ctx, n.api(), &apigateway.RestApiArgs{
		Name: pulumi.String(title),
		Body: body,
		Tags: tags,
	})
	if err != nil {
		return fmt.Errorf("failed to declare rest api: %w", err)
	}
	s.API = api

	deployment, err := apigateway.NewDeployment(ctx, n.deployment(), &apigateway.DeploymentArgs{
		RestApi: api.ID(),
		Triggers: pulumi.StringMap{
			"redeployment": body.ApplyT(digest).(pulumi.StringOutput),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to declare deployment: %w", err)
	}
	s.Deployment = deployment

	stage, err := apigateway.NewStage(ctx, n.stage(), &apigateway.StageArgs{
		RestApi:    api.ID(),
		Deployment: deployment.ID(),
		StageName:  pulumi.String(opts.StageName),
		Tags:       tags,
	})
	if err != nil {
		return fmt.Errorf("failed to declare stage: %w", err)
	}
	s.Stage = stage

	sourceArn := deployment.ExecutionArn.ApplyT(gateway.InvokeSourceArn).(pulumi.StringOutput)
	for _, spec := range opts.Functions {
		perm, err := lambda.NewPermission(ctx, n.permission(spec.Name), &lambda.PermissionArgs{
			Action:    pulumi.String(gateway.InvokeAction),
			Function:  s.Functions[spec.Name].Name,
			Principal: pulumi.String(gateway.Principal),
			SourceArn: sourceArn,
		})
		if err != nil {
			return fmt.Errorf("failed to declare invoke permission for %s: %w", spec.Name, err)
		}
		s.Permissions[spec.Name] = perm
	}

	rc := opts.RuntimeConfig
	script := stage.InvokeUrl.ApplyT(func(url string) (string, error) {
		return site.RuntimeConfigScript(rc, url)
	}).(pulumi.StringOutput)

	obj, err := s3.NewBucketObject(ctx, n.runtimeConfig(), &s3.BucketObjectArgs{
		Bucket:       s.Bucket.ID(),
		Key:          pulumi.String(rc.Key),
		Content:      script,
		ContentType:  pulumi.String(site.RuntimeConfigContentType),
		CacheControl: pulumi.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("failed to declare runtime config: %w", err)
	}
	s.RuntimeConfig = obj
	return nil
}

func (s *Stack) export(ctx *pulumi.Context, opts Options) {
	ctx.Export(OutputBucketName, s.Bucket.ID())
	ctx.Export(OutputWebsiteEndpoint, s.Bucket.WebsiteEndpoint)
	if s.Role != nil {
		ctx.Export(OutputRoleName, s.Role.Name)
	}
	for _, spec := range opts.Functions {
		ctx.Export(FunctionOutputName(spec.Name), s.Functions[spec.Name].Arn)
	}
	if s.Stage != nil {
		ctx.Export(OutputAPIURL, s.Stage.InvokeUrl)
	}
}

func digest(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
