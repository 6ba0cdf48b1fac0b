package tree

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// indent is the per-level indentation of tree files.
	indent = "    "
)

// Explode writes doc as a catalogue tree under root.
//
// Missing directories are created; existing ones are reused and never
// cleared. Every file is rewritten. A failed mkdir returns
// DIRECTORY_CREATION and a failed write returns WRITE_FAILED; files written
// before the failure stay on disk.
func Explode(root string, doc *catalogue.Document, opts Options) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "explode: nil document")
	}
	logger := opts.logger()

	if err := ensureDir(root); err != nil {
		return err
	}

	attrDir := filepath.Join(root, AttributesDir)
	if err := ensureDir(attrDir); err != nil {
		return err
	}
	if err := writeValue(filepath.Join(attrDir, AttributesFile), doc.Attributes); err != nil {
		return err
	}

	productsDir := filepath.Join(root, ProductsDir)
	if err := ensureDir(productsDir); err != nil {
		return err
	}

	for _, name := range doc.ProductNames() {
		p := doc.Products[name]
		if p == nil {
			p = catalogue.NewProduct(nil)
		}
		if err := writeProduct(filepath.Join(productsDir, name), p); err != nil {
			return err
		}
		logger.Debug("wrote product", "product", name, "versions", len(p.Versions))
	}
	return nil
}

func writeProduct(dir string, p *catalogue.Product) error {
	if err := ensureDir(dir); err != nil {
		return err
	}
	if err := writeValue(filepath.Join(dir, TimelineFile), p.Timeline); err != nil {
		return err
	}

	versionsDir := filepath.Join(dir, VersionsDir)
	if err := ensureDir(versionsDir); err != nil {
		return err
	}
	for _, v := range p.VersionNames() {
		path := filepath.Join(versionsDir, v+"."+versionExt)
		if err := writeValue(path, p.Versions[v]); err != nil {
			return err
		}
	}
	return nil
}

// ensureDir creates dir if it does not exist.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errors.New(errors.ErrCodeDirectoryCreation, "%s exists and is not a directory", dir)
	case !os.IsNotExist(err):
		return errors.Wrap(errors.ErrCodeDirectoryCreation, err, "stat %s", dir)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryCreation, err, "mkdir %s", dir)
	}
	return nil
}

func writeValue(path string, v catalogue.Value) error {
	data, err := Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "encode %s", path)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	return nil
}

// Marshal encodes v the way tree files are written: sorted keys, four-space
// indentation, no HTML escaping, trailing newline.
func Marshal(v catalogue.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
