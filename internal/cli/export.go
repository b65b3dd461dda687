package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/export/nodelink"
	"github.com/geneatree/geneatree/pkg/tree"
)

// exportCommand creates the "export" command group.
func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project as a diagram",
		Long: `Export a project as a node-link diagram.

Each generation is one Graphviz rank; parent edges point down and spouses are
joined by dashed lines. PDF pages follow the project's page settings.`,
	}

	cmd.AddCommand(c.exportDOTCommand())
	cmd.AddCommand(c.exportSVGCommand())
	cmd.AddCommand(c.exportPDFCommand())

	return cmd
}

func (c *CLI) exportDOTCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot <project.json>",
		Short: "Write Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dot := nodelink.ToDOT(p, nodelink.Options{Detailed: detailed})
			if output == "" || output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}
			if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "can't write %s", output)
			}
			printSuccess("Exported DOT")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include full names and dates in labels")
	return cmd
}

func (c *CLI) exportSVGCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "svg <project.json>",
		Short: "Render the diagram to SVG with Graphviz",
		Long: `Render the diagram to SVG with Graphviz.

Rendered diagrams are cached by content under $XDG_CACHE_HOME/geneatree, so
exporting an unchanged project is instant. Use --no-cache to bypass it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			p, err := c.loadProject(ctx, args[0])
			if err != nil {
				return err
			}
			renderer := c.newRenderer(cfg)
			defer renderer.Cache.Close()

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".svg"
			}

			dot := nodelink.ToDOT(p, nodelink.Options{Detailed: detailed})
			spin := newSpinnerWithContext(ctx, os.Stderr, "Rendering diagram...")
			if isTerminal(os.Stderr) {
				spin.Start()
			}
			svg, cached, err := renderer.SVG(ctx, dot)
			spin.Stop()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "can't render diagram")
			}

			if err := os.WriteFile(output, svg, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "can't write %s", output)
			}
			printSuccess("Exported SVG")
			printCacheStatus(cached)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: project name with .svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include full names and dates in labels")
	return cmd
}

func (c *CLI) exportPDFCommand() *cobra.Command {
	var (
		output      string
		detailed    bool
		pageSize    string
		orientation string
		margin      float64
	)

	cmd := &cobra.Command{
		Use:   "pdf <project.json>",
		Short: "Render the diagram to a one-page PDF",
		Long: `Render the diagram to a one-page PDF.

The page size, orientation and margin come from the project settings unless
overridden by flags. The diagram is scaled to fit inside the margins.

Requires rsvg-convert (librsvg):
  macOS:  brew install librsvg
  Linux:  apt install librsvg2-bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			p, err := c.loadProject(ctx, args[0])
			if err != nil {
				return err
			}

			settings := p.Settings
			flags := cmd.Flags()
			if flags.Changed("page-size") {
				settings.PageSize = pageSize
			}
			if flags.Changed("orientation") {
				settings.Orientation = orientation
			}
			if flags.Changed("margin") {
				settings.MarginMM = margin
			}
			page := nodelink.PageFor(settings)

			renderer := c.newRenderer(cfg)
			defer renderer.Cache.Close()

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".pdf"
			}

			dot := nodelink.ToDOT(p, nodelink.Options{Detailed: detailed})
			spin := newSpinnerWithContext(ctx, os.Stderr, "Rendering PDF...")
			if isTerminal(os.Stderr) {
				spin.Start()
			}
			pdf, cached, err := renderer.PDF(ctx, dot, page)
			spin.Stop()
			if err != nil {
				if errors.Is(err, errors.ErrCodeUnsupported) {
					return err
				}
				return errors.Wrap(errors.ErrCodeInternal, err, "can't render diagram")
			}

			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "can't write %s", output)
			}
			printSuccess("Exported PDF")
			printDetail("%s %s, %gmm margin", tree.NormalizePageSize(settings.PageSize), tree.NormalizeOrientation(settings.Orientation), page.Margin)
			printCacheStatus(cached)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: project name with .pdf)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include full names and dates in labels")
	cmd.Flags().StringVar(&pageSize, "page-size", "", "page size: A4, A3 or LETTER (default from project)")
	cmd.Flags().StringVar(&orientation, "orientation", "", "portrait or landscape (default from project)")
	cmd.Flags().Float64Var(&margin, "margin", 0, "margin in millimetres (default from project)")
	return cmd
}
