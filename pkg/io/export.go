package io

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/errors"
)

// WriteOptions controls the consolidated output format.
type WriteOptions struct {
	// Indent pretty-prints with this string per level. Empty means compact.
	Indent string
}

// MarshalDocument encodes doc in the consolidated format with sorted keys.
// The result has a trailing newline.
func MarshalDocument(doc *catalogue.Document, opts WriteOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil document")
	}
	out := wireDocument{
		Attributes: doc.Attributes,
		Products:   make(map[string]wireProduct, len(doc.Products)),
	}
	for name, p := range doc.Products {
		wp := wireProduct{Versions: map[string]catalogue.Value{}}
		if p != nil {
			wp.Timeline = p.Timeline
			if p.Versions != nil {
				wp.Versions = p.Versions
			}
		}
		out.Products[name] = wp
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts.Indent != "" {
		enc.SetIndent("", opts.Indent)
	}
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so path holds either the old or the new content.
func WriteFile(path string, data []byte) error {
	if err := writeFileAtomic(path, data); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Digest returns the SHA-256 of data as a 64-character hex string.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
