package aws

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

// toStatus translates a raw EC2 instance into the provider-agnostic
// status snapshot the tracker consumes.
func toStatus(instance types.Instance) domain.ResourceStatus {
	instanceType := string(instance.InstanceType)

	instanceName := ""
	tags := make([]domain.Tag, 0, len(instance.Tags))
	for _, tag := range instance.Tags {
		key := awssdk.ToString(tag.Key)
		value := awssdk.ToString(tag.Value)
		if key == "Name" {
			instanceName = value
		}
		tags = append(tags, domain.Tag{Key: key, Value: value})
	}

	return domain.ResourceStatus{
		ID:           awssdk.ToString(instance.InstanceId),
		Name:         instanceName,
		State:        mapInstanceState(instance.State),
		InstanceType: instanceType,
		LaunchTime:   instance.LaunchTime,
		CostPerHour:  instanceTypePrice(instanceType),
		PublicIP:     awssdk.ToString(instance.PublicIpAddress),
		Tags:         tags,
	}
}

func mapInstanceState(state *types.InstanceState) domain.ResourceState {
	if state == nil {
		return domain.StateUnknown
	}
	switch state.Name {
	case types.InstanceStateNamePending:
		return domain.StateStarting
	case types.InstanceStateNameRunning:
		return domain.StateRunning
	case types.InstanceStateNameStopping, types.InstanceStateNameStopped:
		return domain.StateStopped
	case types.InstanceStateNameShuttingDown:
		return domain.StateTerminating
	case types.InstanceStateNameTerminated:
		return domain.StateTerminated
	default:
		return domain.StateUnknown
	}
}
