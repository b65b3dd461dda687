package cli

import (
	"github.com/spf13/cobra"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree"
)

// relCommand creates the "rel" command group.
func (c *CLI) relCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rel",
		Aliases: []string{"relationship"},
		Short:   "Add and remove relationships",
	}
	cmd.AddCommand(c.relAddCommand())
	cmd.AddCommand(c.relRemoveCommand())
	return cmd
}

func (c *CLI) relAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <project.json> parent|spouse <from-id> <to-id>",
		Short: "Link two people",
		Long: `Link two people.

A parent relationship points from the parent to the child. Spouse
relationships have no direction. Links that would create an ancestry cycle are
rejected and the project is left unchanged.`,
		Args:      cobra.ExactArgs(4),
		ValidArgs: []string{string(tree.RelParent), string(tree.RelSpouse)},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tree.ParseRelationType(args[1])
			if err != nil {
				return err
			}
			from, to := args[2], args[3]

			var rel *tree.Relationship
			err = c.updateProject(cmd.Context(), args[0], func(p *tree.TreeProject) error {
				for _, id := range []string{from, to} {
					if p.Person(id) == nil {
						return errors.New(errors.ErrCodeNotFound, "person %s not found", id)
					}
				}
				rel = tree.NewRelationship(c.ids(), t, from, to)
				if !p.AddRelationship(rel) {
					return errors.New(errors.ErrCodeInvalidInput, "%s relationship %s-%s already exists", t, from, to)
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Linked %s %s %s", from, iconArrow, to)
			printDetail("%s relationship %s", t, rel.ID)
			return nil
		},
	}
}

func (c *CLI) relRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <project.json> <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove relationships by id",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.updateProject(cmd.Context(), args[0], func(p *tree.TreeProject) error {
				for _, id := range args[1:] {
					if p.Relationship(id) == nil {
						return errors.New(errors.ErrCodeNotFound, "relationship %s not found", id)
					}
					p.RemoveRelationship(id)
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %d relationship(s)", len(args)-1)
			return nil
		},
	}
}
