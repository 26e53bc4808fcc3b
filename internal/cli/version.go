package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gridfields/pkg/gridfields"
)

const modulePath = "github.com/mesh-intelligence/gridfields"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gridfields version",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gridfields v%s\n", gridfields.Version)
			if gridfields.Revision != "" {
				fmt.Fprintf(out, "revision: %s\n", gridfields.Revision)
			}
			fmt.Fprintf(out, "module: %s\n", modulePath)
			return nil
		},
	}
}
