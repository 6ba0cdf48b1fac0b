package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/catalogue/pkg/buildinfo"
	"github.com/matzehuels/catalogue/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the command name used in help and completion output.
const appName = "catalogue"

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

	// Out receives status lines and, for "--file -", the consolidated file.
	Out io.Writer
	// Err receives status lines when Out carries the catalogue.
	Err io.Writer
	// In is read by explode when the file is "-".
	In io.Reader
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    w,
		In:     os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   appName + " --dir DIR (--implode | --explode) [--file FILE]",
		Short: "Catalogue converts product catalogues between a directory tree and one JSON file",
		Long: `Catalogue converts a product catalogue between its editable directory
tree and a single consolidated JSON file.

  --implode reads DIR/attributes/attributes.json and every
            DIR/products/<name>/{timeline.json,versions/*.json}
            into FILE (default catalogue_import.json, "-" for stdout).
  --explode writes FILE ("-" for stdin) back out as a tree under DIR.

Invalid version files are skipped with a warning. A missing or broken
attributes.json or timeline.json aborts the run.`,
		Example: `  catalogue -d data --implode
  catalogue -d data --implode -f build/catalogue.json --indent
  catalogue -d data --implode --watch
  catalogue -d data --explode -f build/catalogue.json`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.Flags()
	flags.StringVarP(&opts.dir, "dir", "d", "", "catalogue root directory")
	flags.StringVarP(&opts.file, "file", "f", "", `consolidated JSON file ("-" for stdout/stdin)`)
	flags.BoolVarP(&opts.implode, "implode", "i", false, "build the consolidated file from the directory tree")
	flags.BoolVarP(&opts.explode, "explode", "e", false, "write the consolidated file out as a directory tree")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "re-implode whenever the tree changes")
	flags.StringVar(&opts.indent, "indent", "", "pretty-print the consolidated file with this indent")
	flags.Lookup("indent").NoOptDefVal = defaultIndent
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")

	root.MarkFlagsMutuallyExclusive("implode", "explode")
	root.MarkFlagsMutuallyExclusive("watch", "explode")
	root.MarkFlagsOneRequired("implode", "explode")
	_ = root.MarkFlagFilename("file", "json")
	_ = root.MarkFlagFilename("config", "toml", "yaml", "yml")
	_ = root.MarkFlagDirname("dir")

	root.AddCommand(c.completionCommand())

	return root
}

// defaultIndent is used when --indent is given without a value.
const defaultIndent = "    "

// runLogger returns the CLI logger tagged with a short id for this run.
func (c *CLI) runLogger() *log.Logger {
	return c.Logger.With("run", uuid.NewString()[:8])
}

// statusWriter picks where human-readable lines go for cfg.
func (c *CLI) statusWriter(cfg config.Config, mode config.Mode) io.Writer {
	if mode == config.ModeImplode && cfg.File == config.StdStream {
		return c.Err
	}
	return c.Out
}
