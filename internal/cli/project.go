package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree/layout"
	"github.com/geneatree/geneatree/pkg/tree/validate"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new <project.json>",
		Short: "Create an empty project",
		Long: `Create an empty project file.

Page settings come from the [settings] table of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if err := c.store().Save(cfg.NewProject(), path); err != nil {
				return err
			}
			printSuccess("Created project")
			printFile(path)
			printNextStep("Add someone", fmt.Sprintf("%s people add %s \"Full Name\"", appName, path))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// validateCommand creates the "validate" command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project.json>",
		Short: "Check a project for integrity problems",
		Long: `Check a project for integrity problems.

Every problem is printed, not just the first one. The exit status is non-zero
when the project is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(cmd.Context(), args[0])
			if err != nil {
				var verr *validate.ValidationError
				if stderrors.As(err, &verr) {
					printProblems(verr.Problems)
				}
				return err
			}
			printSuccess("Project is valid")
			printStats(len(p.People), len(p.Relationships))
			return nil
		},
	}
}

func printProblems(problems []string) {
	printError("%d problem(s) found", len(problems))
	for _, problem := range problems {
		printDetail("%s", problem)
	}
}

// layoutCommand creates the "layout" command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		startX, startY float64
		dryRun         bool
	)

	cmd := &cobra.Command{
		Use:   "layout <project.json>",
		Short: "Arrange people in generation rows",
		Long: `Arrange people in generation rows.

Every person gets a generation level from the longest chain of parents above
them; rows are centred on --start-x and spaced by the project's generation and
sibling spacing. The project is saved unless --dry-run is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("start-x") {
				startX = cfg.Layout.StartX
			}
			if !cmd.Flags().Changed("start-y") {
				startY = cfg.Layout.StartY
			}

			prog := newProgress(loggerFromContext(ctx))
			p, err := c.loadProject(ctx, args[0])
			if err != nil {
				return err
			}
			levels := layout.AutoLayout(p, startX, startY)
			prog.done(fmt.Sprintf("Laid out %d people", len(levels)))

			fmt.Fprintln(cmd.OutOrStdout(), peopleTable(p))
			if dryRun {
				return nil
			}
			if err := c.store().Save(p, args[0]); err != nil {
				return err
			}
			printSuccess("Saved layout")
			printFile(args[0])
			return nil
		},
	}

	cmd.Flags().Float64Var(&startX, "start-x", 0, "x of the centre of every row")
	cmd.Flags().Float64Var(&startY, "start-y", 0, "y of the first generation row")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the rows without saving")
	return cmd
}
