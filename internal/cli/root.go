package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/catalogue/pkg/config"
	"github.com/matzehuels/catalogue/pkg/errors"
)

// options holds the raw flag values of the root command.
type options struct {
	dir        string
	file       string
	indent     string
	configPath string
	implode    bool
	explode    bool
	watch      bool
}

func (o *options) mode() config.Mode {
	switch {
	case o.implode:
		return config.ModeImplode
	case o.explode:
		return config.ModeExplode
	}
	return ""
}

// resolveConfig layers flags that were set explicitly over the loaded
// configuration and validates the result for the selected mode.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir = opts.dir
	}
	if flags.Changed("file") {
		cfg.File = opts.file
	}
	if flags.Changed("indent") {
		cfg.Indent = opts.indent
	}
	if f := flags.Lookup("verbose"); f != nil && f.Changed {
		cfg.Verbose = f.Value.String() == "true"
	}

	if err := cfg.Validate(opts.mode()); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *CLI) run(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}

	logger := c.runLogger()
	ctx := withLogger(cmd.Context(), logger)
	mode := opts.mode()
	logger.Debug("starting", "mode", mode, "config", cfg.String())

	switch mode {
	case config.ModeImplode:
		if opts.watch {
			return c.watchImplode(ctx, cfg)
		}
		_, err := c.implodeOnce(ctx, cfg, "")
		return err
	case config.ModeExplode:
		return c.explode(ctx, cfg)
	}
	return errors.New(errors.ErrCodeInternal, "unknown mode %q", mode)
}
