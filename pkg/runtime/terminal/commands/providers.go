package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/services/provider"
)

func NewProvidersCmd(registry provider.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := registry.ListProviders()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers registered.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered providers:\n%s\n", strings.Join(names, "\n"))
			return nil
		},
	}
}
