package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/models/domain"
	"github.com/arclabs561/runctl/pkg/services/provider"
)

type CreateCmd struct {
	profilePath  string
	provider     string
	name         string
	instanceType string
	diskGB       int
	tags         map[string]string
	registry     provider.Registry
}

func NewCreateCmd(registry provider.Registry) *cobra.Command {
	cc := &CreateCmd{registry: registry}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Rent a new compute resource for training",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.profilePath, "profile", "", "Path to the runctl profile")
	cmd.Flags().StringVar(&cc.provider, "provider", "aws", "Provider to use (aws, runpod)")
	cmd.Flags().StringVar(&cc.name, "name", "", "Display name for the resource")
	cmd.Flags().StringVar(&cc.instanceType, "type", "", "Instance type (aws) or GPU type (runpod)")
	cmd.Flags().IntVar(&cc.diskGB, "disk", 0, "Root disk size in GB")
	cmd.Flags().StringToStringVar(&cc.tags, "tag", nil, "Extra tags as key=value (repeatable)")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (cc *CreateCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	prov, err := cc.registry.Create(ctx, cc.provider, cc.profilePath)
	if err != nil {
		return fmt.Errorf("failed to create provider %q: %w", cc.provider, err)
	}

	spec := provider.LaunchSpec{
		Name:         cc.name,
		InstanceType: cc.instanceType,
		DiskGB:       cc.diskGB,
	}
	for k, v := range cc.tags {
		spec.Tags = append(spec.Tags, domain.Tag{Key: k, Value: v})
	}

	id, err := prov.Create(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", id, cc.instanceType)
	return nil
}
