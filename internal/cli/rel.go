package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/cheatgen/internal/ports/primary"
	"github.com/example/cheatgen/internal/wire"
)

var relCmd = &cobra.Command{
	Use:     "rel",
	Aliases: []string{"relationship"},
	Short:   "Edit relationship lists by hand",
	Long: `Edit a table's has_one, has_many and many_to_many lists directly.
A pair of tables holds at most one relationship; adding a new one replaces the old.
Prefer 'cheatgen interview' when unsure which kind applies.`,
}

var relAddCmd = &cobra.Command{
	Use:   "add [table] [kind] [target]",
	Short: "Add a relationship (kind: has_one, has_many, many_to_many)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.ModelerAdapter().AddRelationship(context.Background(), primary.AddRelationshipRequest{
			Table:  args[0],
			Kind:   args[1],
			Target: args[2],
		})
		return err
	},
}

var relUpdateCmd = &cobra.Command{
	Use:   "update [table] [kind] [index] [target]",
	Short: "Point the index-th relationship of a kind at another table",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[2])
		if err != nil {
			return err
		}
		_, err = wire.ModelerAdapter().UpdateRelationship(context.Background(), primary.UpdateRelationshipRequest{
			Table:  args[0],
			Kind:   args[1],
			Index:  index,
			Target: args[3],
		})
		return err
	},
}

var relDeleteCmd = &cobra.Command{
	Use:   "delete [table] [kind] [index]",
	Short: "Remove the index-th relationship of a kind",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[2])
		if err != nil {
			return err
		}
		_, err = wire.ModelerAdapter().DeleteRelationship(context.Background(), primary.DeleteRelationshipRequest{
			Table: args[0],
			Kind:  args[1],
			Index: index,
		})
		return err
	},
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer, got %q", s)
	}
	return i, nil
}

func init() {
	relCmd.AddCommand(relAddCmd)
	relCmd.AddCommand(relUpdateCmd)
	relCmd.AddCommand(relDeleteCmd)
}

// RelCmd returns the rel command
func RelCmd() *cobra.Command {
	return relCmd
}
