package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/arclabs561/runctl/pkg/services/config"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

// Factory builds the EC2 provider from a runctl profile.
func Factory(ctx context.Context, profilePath string) (provider.Provider, error) {
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(profile.Region),
	}
	if profile.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile.AWSProfile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return New(cfg), nil
}
