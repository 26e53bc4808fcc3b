package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newGridsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "grids",
		Short: "List grids that have fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(s *session) error {
				ids, err := s.store.GridIDs()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if flags.jsonMode {
					if ids == nil {
						ids = []string{}
					}
					data, err := json.MarshalIndent(ids, "", "  ")
					if err != nil {
						return fmt.Errorf("marshal grids: %w", err)
					}
					fmt.Fprintln(out, string(data))
					return nil
				}
				if len(ids) == 0 {
					fmt.Fprintln(out, "No grids found.")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			})
		},
	}
}
