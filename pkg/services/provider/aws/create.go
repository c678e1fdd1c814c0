package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/google/uuid"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

// defaultTrainingAMI is the Deep Learning AMI used when a profile does
// not pin one.
const defaultTrainingAMI = "ami-0c7217cdde317cfec"

func (p *awsProvider) Create(ctx context.Context, spec provider.LaunchSpec) (string, error) {
	if spec.InstanceType == "" {
		return "", &errdefs.ValidationError{Field: "instance type", Reason: "must not be empty"}
	}

	tags := []types.Tag{
		{Key: awssdk.String(managedTagKey), Value: awssdk.String("true")},
	}
	if spec.Name != "" {
		tags = append(tags, types.Tag{Key: awssdk.String("Name"), Value: awssdk.String(spec.Name)})
	}
	for _, tag := range spec.Tags {
		tags = append(tags, types.Tag{Key: awssdk.String(tag.Key), Value: awssdk.String(tag.Value)})
	}

	input := &ec2.RunInstancesInput{
		ImageId:      awssdk.String(defaultTrainingAMI),
		InstanceType: types.InstanceType(spec.InstanceType),
		MinCount:     awssdk.Int32(1),
		MaxCount:     awssdk.Int32(1),
		// Idempotency token: a retried RunInstances call must not rent
		// a second instance.
		ClientToken: awssdk.String(uuid.NewString()),
		TagSpecifications: []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags:         tags,
			},
		},
	}
	if spec.DiskGB > 0 {
		input.BlockDeviceMappings = []types.BlockDeviceMapping{
			{
				DeviceName: awssdk.String("/dev/sda1"),
				Ebs: &types.EbsBlockDevice{
					VolumeSize: awssdk.Int32(int32(spec.DiskGB)),
					VolumeType: types.VolumeTypeGp3,
				},
			},
		}
	}

	var instanceID string
	err := p.retry.Execute(ctx, func(ctx context.Context) error {
		out, err := p.client.RunInstances(ctx, input)
		if err != nil {
			return wrapAPIError(fmt.Sprintf("launch %s instance", spec.InstanceType), err)
		}
		if len(out.Instances) == 0 {
			return wrapAPIError("launch instance", fmt.Errorf("no instances in response"))
		}
		instanceID = awssdk.ToString(out.Instances[0].InstanceId)
		return nil
	})
	if err != nil {
		return "", err
	}
	return instanceID, nil
}
