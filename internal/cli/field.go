package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// fieldFlags are the flags shared by the field subcommands.
type fieldFlags struct {
	gridID     string
	fieldID    string
	name       string
	desc       string
	fieldType  string
	typeOption string
	width      int
	frozen     bool
	visible    bool
	to         int
}

func newFieldCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Create, inspect, and change the fields of a grid",
	}
	cmd.AddCommand(
		newFieldCreateCmd(flags),
		newFieldListCmd(flags),
		newFieldShowCmd(flags),
		newFieldUpdateCmd(flags),
		newFieldDeleteCmd(flags),
		newFieldSwitchCmd(flags),
		newFieldTypeOptionCmd(flags),
		newFieldDuplicateCmd(flags),
		newFieldMoveCmd(flags),
	)
	return cmd
}

func (ff *fieldFlags) bindGrid(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.gridID, "grid", "", "grid id (required)")
}

func (ff *fieldFlags) bindField(cmd *cobra.Command) {
	ff.bindGrid(cmd)
	cmd.Flags().StringVar(&ff.fieldID, "id", "", "field id (required)")
}

func (ff *fieldFlags) requireGrid() error {
	if ff.gridID == "" {
		return usageError("--grid is required")
	}
	return nil
}

func (ff *fieldFlags) requireField() error {
	if err := ff.requireGrid(); err != nil {
		return err
	}
	if ff.fieldID == "" {
		return usageError("--id is required")
	}
	return nil
}

func newFieldCreateCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a field to a grid",
		Long: `Create appends a field with a fresh id. Without --type-option the
field starts from the default configuration of its type.

Types: text, number, date, single_select, multi_select, checkbox, url

Example:
  gridfields field create --grid tasks --name Status --type single_select
  gridfields field create --grid tasks --name Price --type number --type-option '{"format":"usd","scale":2,"symbol":"$","sign_positive":true,"name":"Price"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireGrid(); err != nil {
				return err
			}
			if ff.name == "" {
				return usageError("--name is required")
			}
			ft, err := types.ParseFieldType(ff.fieldType)
			if err != nil {
				return err
			}
			params := types.CreateFieldParams{
				GridID:      ff.gridID,
				Name:        ff.name,
				Description: ff.desc,
				Type:        ft,
				Width:       ff.width,
			}
			if ff.typeOption != "" {
				params.TypeOption = []byte(ff.typeOption)
			}
			if cmd.Flags().Changed("visible") {
				params.Visible = &ff.visible
			}
			return withSession(flags, func(s *session) error {
				f, err := s.engine.CreateField(ff.gridID, params)
				if err != nil {
					return err
				}
				return printField(cmd.OutOrStdout(), f, flags.jsonMode)
			})
		},
	}
	ff.bindGrid(cmd)
	cmd.Flags().StringVar(&ff.name, "name", "", "field name (required)")
	cmd.Flags().StringVar(&ff.desc, "description", "", "field description")
	cmd.Flags().StringVar(&ff.fieldType, "type", string(types.FieldTypeText), "field type")
	cmd.Flags().StringVar(&ff.typeOption, "type-option", "", "type configuration as JSON")
	cmd.Flags().IntVar(&ff.width, "width", 0, "display width (default 150)")
	cmd.Flags().BoolVar(&ff.visible, "visible", true, "show the field")
	return cmd
}

func newFieldListCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the fields of a grid in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireGrid(); err != nil {
				return err
			}
			return withSession(flags, func(s *session) error {
				fields, err := s.engine.ListFields(ff.gridID)
				if err != nil {
					return err
				}
				return printFields(cmd.OutOrStdout(), fields, flags.jsonMode)
			})
		},
	}
	ff.bindGrid(cmd)
	return cmd
}

func newFieldShowCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one field with its type configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			return withSession(flags, func(s *session) error {
				f, err := s.engine.GetField(ff.gridID, ff.fieldID)
				if err != nil {
					return err
				}
				return printField(cmd.OutOrStdout(), f, flags.jsonMode)
			})
		},
	}
	ff.bindField(cmd)
	return cmd
}

func newFieldUpdateCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the name, description, frozen flag, width, visibility, or type configuration of a field",
		Long: `Update applies only the flags that are given. Frozen fields still accept
name, description, frozen, width, and visibility changes.

Example:
  gridfields field update --grid tasks --id <field-id> --frozen --width 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			cs := types.FieldChangeset{FieldID: ff.fieldID, GridID: ff.gridID}
			changed := cmd.Flags().Changed
			if changed("name") {
				cs.Name = &ff.name
			}
			if changed("description") {
				cs.Description = &ff.desc
			}
			if changed("frozen") {
				cs.Frozen = &ff.frozen
			}
			if changed("width") {
				cs.Width = &ff.width
			}
			if changed("visible") {
				cs.Visible = &ff.visible
			}
			if changed("type-option") {
				cs.TypeOption = append([]byte{}, ff.typeOption...)
			}
			return withSession(flags, func(s *session) error {
				f, err := s.engine.UpdateField(ff.gridID, cs)
				if err != nil {
					return err
				}
				return printField(cmd.OutOrStdout(), f, flags.jsonMode)
			})
		},
	}
	ff.bindField(cmd)
	cmd.Flags().StringVar(&ff.name, "name", "", "new name")
	cmd.Flags().StringVar(&ff.desc, "description", "", "new description")
	cmd.Flags().BoolVar(&ff.frozen, "frozen", false, "freeze the field's type")
	cmd.Flags().IntVar(&ff.width, "width", 0, "new display width")
	cmd.Flags().BoolVar(&ff.visible, "visible", true, "show the field")
	cmd.Flags().StringVar(&ff.typeOption, "type-option", "", "new configuration for the current type, as JSON")
	return cmd
}

func newFieldDeleteCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a field from a grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			return withSession(flags, func(s *session) error {
				if err := s.engine.DeleteField(ff.gridID, ff.fieldID); err != nil {
					return err
				}
				return printDone(cmd.OutOrStdout(), flags.jsonMode, "deleted", ff.fieldID)
			})
		},
	}
	ff.bindField(cmd)
	return cmd
}

func newFieldSwitchCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "switch",
		Short: "Change the type of a field",
		Long: `Switch changes a field's type. The configuration of the old type is kept,
so switching back restores it. A checkbox field switched to a select type
gets the options CHECK and UNCHECK.

Example:
  gridfields field switch --grid tasks --id <field-id> --type checkbox`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			ft, err := types.ParseFieldType(ff.fieldType)
			if err != nil {
				return err
			}
			return withSession(flags, func(s *session) error {
				f, err := s.engine.SwitchFieldType(ff.gridID, ff.fieldID, ft)
				if err != nil {
					return err
				}
				return printField(cmd.OutOrStdout(), f, flags.jsonMode)
			})
		},
	}
	ff.bindField(cmd)
	cmd.Flags().StringVar(&ff.fieldType, "type", "", "target type (required)")
	return cmd
}

func newFieldTypeOptionCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "type-option",
		Short: "Replace the configuration of a field's current type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			if ff.typeOption == "" {
				return usageError("--data is required")
			}
			return withSession(flags, func(s *session) error {
				if err := s.engine.UpdateTypeOption(ff.gridID, ff.fieldID, []byte(ff.typeOption)); err != nil {
					return err
				}
				f, err := s.engine.GetField(ff.gridID, ff.fieldID)
				if err != nil {
					return err
				}
				return printField(cmd.OutOrStdout(), f, flags.jsonMode)
			})
		},
	}
	ff.bindField(cmd)
	cmd.Flags().StringVar(&ff.typeOption, "data", "", "configuration as JSON (required)")
	return cmd
}

func newFieldDuplicateCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "duplicate",
		Short: "Copy a field and insert the copy after it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			return withSession(flags, func(s *session) error {
				f, err := s.engine.DuplicateField(ff.gridID, ff.fieldID)
				if err != nil {
					return err
				}
				return printField(cmd.OutOrStdout(), f, flags.jsonMode)
			})
		},
	}
	ff.bindField(cmd)
	return cmd
}

func newFieldMoveCmd(flags *rootFlags) *cobra.Command {
	ff := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a field to a display position (0-based)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ff.requireField(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("to") {
				return usageError("--to is required")
			}
			return withSession(flags, func(s *session) error {
				if err := s.engine.MoveField(ff.gridID, ff.fieldID, ff.to); err != nil {
					return err
				}
				fields, err := s.engine.ListFields(ff.gridID)
				if err != nil {
					return err
				}
				return printFields(cmd.OutOrStdout(), fields, flags.jsonMode)
			})
		},
	}
	ff.bindField(cmd)
	cmd.Flags().IntVar(&ff.to, "to", 0, "target position (required)")
	return cmd
}
