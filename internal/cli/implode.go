package cli

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/catalogue/pkg/config"
	"github.com/matzehuels/catalogue/pkg/errors"
	catio "github.com/matzehuels/catalogue/pkg/io"
	"github.com/matzehuels/catalogue/pkg/tree"
	"github.com/matzehuels/catalogue/pkg/watch"
)

// implodeOnce reads the tree at cfg.Dir and writes the consolidated file.
// If the encoded output has digest last, nothing is written. It returns the
// digest of the output it produced.
func (c *CLI) implodeOnce(ctx context.Context, cfg config.Config, last string) (string, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	res, err := tree.Implode(cfg.Dir, tree.Options{Logger: logger})
	if err != nil {
		return last, err
	}
	data, err := catio.MarshalDocument(res.Document, catio.WriteOptions{Indent: cfg.Indent})
	if err != nil {
		return last, err
	}

	digest := catio.Digest(data)
	if digest == last {
		logger.Debug("catalogue unchanged", "digest", digest[:12])
		return digest, nil
	}

	if cfg.File == config.StdStream {
		if _, err := c.Out.Write(data); err != nil {
			return last, errors.Wrap(errors.ErrCodeWrite, err, "write catalogue")
		}
	} else if err := catio.WriteFile(cfg.File, data); err != nil {
		return last, err
	}
	prog.done("imploded " + cfg.Dir)

	u := ui{w: c.statusWriter(cfg, config.ModeImplode)}
	u.success("Imploded %s", cfg.Dir)
	if cfg.File != config.StdStream {
		u.file(cfg.File)
	}
	u.stats(len(res.Document.Products), res.Document.VersionCount(), len(res.Skipped))
	for _, s := range res.Skipped {
		u.detail("skipped %s/%s (%s)", s.Product, s.File, s.Reason)
	}
	return digest, nil
}

// watchImplode implodes once and then again after every settled change to
// the tree, until ctx is cancelled. A tree error is logged and the last good
// output stays in place; a failed write stops watching.
func (c *CLI) watchImplode(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	digest, err := c.implodeOnce(ctx, cfg, "")
	if err != nil {
		if isWriteError(err) {
			return err
		}
		logger.Error("initial implode failed", "err", errors.UserMessage(err))
	}

	w, err := watch.New(cfg.Dir, watch.Options{
		Debounce: time.Duration(cfg.Debounce),
		Ignore:   outputFilter(cfg.File),
		Abort:    isWriteError,
		Logger:   logger,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeMissingFile, err, "watch %s", cfg.Dir)
	}
	defer w.Close()

	u := ui{w: c.statusWriter(cfg, config.ModeImplode)}
	u.info("Watching %s (ctrl+c to stop)", cfg.Dir)

	err = w.Run(ctx, func(ctx context.Context) error {
		d, err := c.implodeOnce(ctx, cfg, digest)
		if err != nil {
			return err
		}
		digest = d
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

func isWriteError(err error) bool {
	return errors.Is(err, errors.ErrCodeWrite)
}

// outputFilter reports the output file and its temporary siblings, so that
// writing the catalogue inside the watched tree does not trigger a rebuild.
func outputFilter(file string) func(string) bool {
	if file == config.StdStream {
		return nil
	}
	target, err := filepath.Abs(file)
	if err != nil {
		return nil
	}
	dir, base := filepath.Split(target)
	tmpPrefix := "." + base + "."

	return func(path string) bool {
		p, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		if p == target {
			return true
		}
		pdir, pbase := filepath.Split(p)
		return pdir == dir && strings.HasPrefix(pbase, tmpPrefix)
	}
}
