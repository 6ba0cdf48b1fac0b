package cli

import (
	"context"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/config"
	catio "github.com/matzehuels/catalogue/pkg/io"
	"github.com/matzehuels/catalogue/pkg/tree"
)

// explode reads the consolidated file and writes it out under cfg.Dir.
func (c *CLI) explode(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var (
		doc    *catalogue.Document
		err    error
		source = cfg.File
	)
	if cfg.File == config.StdStream {
		source = "stdin"
		doc, err = catio.ReadDocument(c.In)
	} else {
		doc, err = catio.ImportDocument(cfg.File)
	}
	if err != nil {
		return err
	}

	if err := tree.Explode(cfg.Dir, doc, tree.Options{Logger: logger}); err != nil {
		return err
	}
	prog.done("exploded " + source)

	u := ui{w: c.statusWriter(cfg, config.ModeExplode)}
	u.success("Exploded %s", source)
	u.file(cfg.Dir)
	u.stats(len(doc.Products), doc.VersionCount(), 0)
	return nil
}
