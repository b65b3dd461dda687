package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/geneatree/geneatree/pkg/buildinfo"
	"github.com/geneatree/geneatree/pkg/cache"
	"github.com/geneatree/geneatree/pkg/config"
	"github.com/geneatree/geneatree/pkg/export/nodelink"
	"github.com/geneatree/geneatree/pkg/store"
	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/validate"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "geneatree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// IDs generates ids for people and relationships added from the
	// command line. Nil means random ids.
	IDs tree.IDGenerator

	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Geneatree edits family-tree projects",
		Long:         `Geneatree creates, validates and lays out family-tree projects stored as JSON files with their photos kept in an assets directory next to them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/geneatree/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the rendered diagram cache")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.peopleCommand())
	root.AddCommand(c.relCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

func (c *CLI) config() (config.Config, error) {
	return config.Load(c.configPath)
}

func (c *CLI) store() *store.Store {
	return store.New(c.Logger, c.IDs)
}

func (c *CLI) ids() tree.IDGenerator {
	if c.IDs == nil {
		return tree.NewID
	}
	return c.IDs
}

// loadProject reads and validates the project at path.
func (c *CLI) loadProject(ctx context.Context, path string) (*tree.TreeProject, error) {
	loggerFromContext(ctx).Debug("loading project", "path", path)
	return c.store().Load(path)
}

// updateProject loads the project at path, applies fn and saves the result.
// Nothing is written when fn fails or leaves the project invalid.
func (c *CLI) updateProject(ctx context.Context, path string, fn func(*tree.TreeProject) error) error {
	p, err := c.loadProject(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	if err := validate.AssertValid(p); err != nil {
		return err
	}
	return c.store().Save(p, path)
}

// newRenderer returns an SVG renderer backed by the file cache unless
// caching is disabled by flag or config.
func (c *CLI) newRenderer(cfg config.Config) *nodelink.Renderer {
	cc, err := newCache(c.noCache || !cfg.Export.Cache)
	if err != nil {
		printWarning("Cache unavailable, rendering without it: %v", err)
		cc = cache.NewNullCache()
	}
	return nodelink.NewRenderer(cc)
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/geneatree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
