// Package aws implements the provider boundary on top of EC2. Describe
// responses are translated into provider-agnostic status snapshots;
// lifecycle mutations go through the cloud-API retry policy so
// throttling and brief network loss never surface to the operator.
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/retry"
)

// managedTagKey marks instances created by runctl; List only reports
// instances carrying it.
const managedTagKey = "runctl:managed"

type ec2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
}

type awsProvider struct {
	client ec2API
	retry  retry.Policy
}

// New creates an EC2-backed provider from a resolved SDK config.
func New(cfg awssdk.Config) provider.Provider {
	return &awsProvider{
		client: ec2.NewFromConfig(cfg),
		retry:  retry.ForCloudAPI(),
	}
}

func (p *awsProvider) Name() string {
	return "aws"
}

func (p *awsProvider) List(ctx context.Context) ([]domain.ResourceStatus, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   awssdk.String("tag:" + managedTagKey),
				Values: []string{"true"},
			},
		},
	}

	resp, err := retry.Do(ctx, p.retry, func(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
		out, err := p.client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, wrapAPIError("describe instances", err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	var statuses []domain.ResourceStatus
	for _, reservation := range resp.Reservations {
		for _, instance := range reservation.Instances {
			statuses = append(statuses, toStatus(instance))
		}
	}
	return statuses, nil
}

func (p *awsProvider) Describe(ctx context.Context, id string) (*domain.ResourceStatus, error) {
	if id == "" {
		return nil, &errdefs.ValidationError{Field: "instance id", Reason: "must not be empty"}
	}

	input := &ec2.DescribeInstancesInput{InstanceIds: []string{id}}
	resp, err := retry.Do(ctx, p.retry, func(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
		out, err := p.client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, wrapAPIError("describe instance", err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	for _, reservation := range resp.Reservations {
		for _, instance := range reservation.Instances {
			if awssdk.ToString(instance.InstanceId) == id {
				status := toStatus(instance)
				return &status, nil
			}
		}
	}
	return nil, &errdefs.NotFoundError{Resource: "instance", ID: id}
}

func (p *awsProvider) Start(ctx context.Context, id string) error {
	if id == "" {
		return &errdefs.ValidationError{Field: "instance id", Reason: "must not be empty"}
	}
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		_, err := p.client.StartInstances(ctx, &ec2.StartInstancesInput{
			InstanceIds: []string{id},
		})
		if err != nil {
			return wrapAPIError(fmt.Sprintf("start instance %s", id), err)
		}
		return nil
	})
}

func (p *awsProvider) Stop(ctx context.Context, id string) error {
	if id == "" {
		return &errdefs.ValidationError{Field: "instance id", Reason: "must not be empty"}
	}
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		_, err := p.client.StopInstances(ctx, &ec2.StopInstancesInput{
			InstanceIds: []string{id},
		})
		if err != nil {
			return wrapAPIError(fmt.Sprintf("stop instance %s", id), err)
		}
		return nil
	})
}

func (p *awsProvider) Terminate(ctx context.Context, id string) error {
	if id == "" {
		return &errdefs.ValidationError{Field: "instance id", Reason: "must not be empty"}
	}
	return p.retry.Execute(ctx, func(ctx context.Context) error {
		_, err := p.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
			InstanceIds: []string{id},
		})
		if err != nil {
			return wrapAPIError(fmt.Sprintf("terminate instance %s", id), err)
		}
		return nil
	})
}

func wrapAPIError(op string, err error) error {
	return &errdefs.CloudProviderError{
		Provider: "aws",
		Message:  fmt.Sprintf("failed to %s", op),
		Err:      err,
	}
}
