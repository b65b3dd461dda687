package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geneatree/geneatree/pkg/config"
	"github.com/geneatree/geneatree/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <project.json>",
		Short: "Serve a project over HTTP",
		Long: `Serve a project over HTTP.

The project stays in memory; changes made through the API are written back
only by POST /v1/save. Stop the server with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			p, err := c.loadProject(ctx, args[0])
			if err != nil {
				return err
			}
			renderer := c.newRenderer(cfg)
			defer renderer.Cache.Close()

			srv := server.New(p, args[0], server.Options{
				Logger:   loggerFromContext(ctx),
				Store:    c.store(),
				Renderer: renderer,
				IDs:      c.ids(),
				StartX:   cfg.Layout.StartX,
				StartY:   cfg.Layout.StartY,
			})
			printInfo("Serving %s on %s", args[0], StyleHighlight.Render(fmt.Sprintf("http://%s/v1", addr)))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")
	return cmd
}
