package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/wire"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage table fields",
	Long: `Add, update and delete user fields. Foreign key fields are generated from
relationships and cannot be edited here. Types use the model annotation format,
e.g. "String(100)", "Integer", "Numeric(10, 2), unique=True".`,
}

var fieldAddCmd = &cobra.Command{
	Use:   "add [table] [name]",
	Short: "Add a field to a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.AddFieldRequest{Table: args[0], Name: args[1]}
		typ, required, unique, err := fieldFlags(cmd)
		if err != nil {
			return err
		}
		req.Type, req.Required, req.Unique = typ, required, unique

		_, err = wire.ModelerAdapter().AddField(context.Background(), req)
		return err
	},
}

var fieldUpdateCmd = &cobra.Command{
	Use:   "update [table] [field]",
	Short: "Change a field's name, type or constraints",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.UpdateFieldRequest{Table: args[0], Field: args[1]}
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		typ, required, unique, err := fieldFlags(cmd)
		if err != nil {
			return err
		}
		req.Type, req.Required, req.Unique = typ, required, unique
		if req.Name == nil && req.Type == nil && req.Required == nil && req.Unique == nil {
			return fmt.Errorf("nothing to update (use --name, --type, --required, --optional or --unique)")
		}

		_, err = wire.ModelerAdapter().UpdateField(context.Background(), req)
		return err
	},
}

var fieldDeleteCmd = &cobra.Command{
	Use:   "delete [table] [field]",
	Short: "Delete a field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ModelerAdapter().DeleteField(context.Background(), args[0], args[1])
	},
}

// fieldFlags reads the shared type and constraint flags; unset flags are nil.
func fieldFlags(cmd *cobra.Command) (typ *string, required, unique *bool, err error) {
	if cmd.Flags().Changed("type") {
		t, _ := cmd.Flags().GetString("type")
		typ = &t
	}
	req, _ := cmd.Flags().GetBool("required")
	opt, _ := cmd.Flags().GetBool("optional")
	switch {
	case req && opt:
		return nil, nil, nil, fmt.Errorf("--required and --optional are mutually exclusive")
	case cmd.Flags().Changed("required"):
		required = &req
	case cmd.Flags().Changed("optional"):
		v := !opt
		required = &v
	}
	if cmd.Flags().Changed("unique") {
		u, _ := cmd.Flags().GetBool("unique")
		unique = &u
	}
	return typ, required, unique, nil
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Column type (default String(100))")
	cmd.Flags().Bool("required", false, "Mark the field nullable=False")
	cmd.Flags().Bool("optional", false, "Mark the field nullable=True")
	cmd.Flags().Bool("unique", false, "Mark the field unique=True (--unique=false clears it)")
}

func init() {
	addFieldFlags(fieldAddCmd)
	addFieldFlags(fieldUpdateCmd)
	fieldUpdateCmd.Flags().StringP("name", "n", "", "New field name")

	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldUpdateCmd)
	fieldCmd.AddCommand(fieldDeleteCmd)
}

// FieldCmd returns the field command
func FieldCmd() *cobra.Command {
	return fieldCmd
}
