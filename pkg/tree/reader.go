package tree

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/errors"
)

// Fixed names inside a catalogue tree.
const (
	AttributesDir  = "attributes"
	AttributesFile = "attributes.json"
	ProductsDir    = "products"
	TimelineFile   = "timeline.json"
	VersionsDir    = "versions"
)

// Options configures Implode and Explode.
type Options struct {
	// Logger receives skip warnings and debug progress. Nil discards output.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// Skip records a version file that Implode left out.
type Skip struct {
	Product string
	File    string
	Path    string
	Reason  SkipReason
	Err     error
}

// Result is the outcome of a successful Implode.
type Result struct {
	Document *catalogue.Document
	Skipped  []Skip
}

// Implode reads the catalogue tree at root into a Document.
//
// A missing or unparsable attributes.json, timeline.json, products/ or
// versions/ directory aborts the operation with a MISSING_FILE or
// MALFORMED_INPUT error. Invalid files under versions/ are skipped, logged
// as warnings, and listed in Result.Skipped.
func Implode(root string, opts Options) (*Result, error) {
	logger := opts.logger()

	attrs, err := readValue(filepath.Join(root, AttributesDir, AttributesFile))
	if err != nil {
		return nil, err
	}
	res := &Result{Document: catalogue.NewDocument(attrs)}

	productsDir := filepath.Join(root, ProductsDir)
	names, err := listEntries(productsDir, true)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		p, skipped, err := readProduct(filepath.Join(productsDir, name), name, logger)
		if err != nil {
			return nil, err
		}
		res.Document.Products[name] = p
		res.Skipped = append(res.Skipped, skipped...)
		logger.Debug("read product", "product", name, "versions", len(p.Versions), "skipped", len(skipped))
	}

	return res, nil
}

func readProduct(dir, name string, logger *log.Logger) (*catalogue.Product, []Skip, error) {
	timeline, err := readValue(filepath.Join(dir, TimelineFile))
	if err != nil {
		return nil, nil, err
	}
	p := catalogue.NewProduct(timeline)

	versionsDir := filepath.Join(dir, VersionsDir)
	files, err := listEntries(versionsDir, false)
	if err != nil {
		return nil, nil, err
	}

	var skipped []Skip
	for _, f := range files {
		v := Classify(versionsDir, f)
		if v.Included() {
			p.Versions[v.Version] = v.Value
			continue
		}
		keyvals := []any{"product", name, "reason", v.Reason}
		if v.Err.Cause != nil {
			keyvals = append(keyvals, "err", v.Err.Cause)
		}
		logger.Warn(v.Err.Message, keyvals...)
		skipped = append(skipped, Skip{
			Product: name,
			File:    f,
			Path:    filepath.Join(versionsDir, f),
			Reason:  v.Reason,
			Err:     v.Err,
		})
	}
	return p, skipped, nil
}

// readValue reads a required JSON file. Any failure is fatal.
func readValue(path string) (catalogue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapRead(err, path)
	}
	v, err := catalogue.DecodeValue(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "parse %s", path)
	}
	return v, nil
}

// listEntries returns the names of the directories (dirs=true) or
// non-directories (dirs=false) directly inside dir. Symlinks are resolved.
// os.ReadDir already sorts by filename.
func listEntries(dir string, dirs bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapRead(err, dir)
	}

	var names []string
	for _, e := range entries {
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		if isDir == dirs {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
