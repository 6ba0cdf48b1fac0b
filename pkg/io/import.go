package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/errors"
)

type wireDocument struct {
	Attributes catalogue.Value        `json:"attributes"`
	Products   map[string]wireProduct `json:"products"`
}

type wireProduct struct {
	Timeline catalogue.Value            `json:"timeline"`
	Versions map[string]catalogue.Value `json:"versions"`
}

// Required member names. Lookups are exact; encoding/json would match
// struct fields case-insensitively.
const (
	keyAttributes = "attributes"
	keyProducts   = "products"
	keyTimeline   = "timeline"
	keyVersions   = "versions"
)

// members decodes a JSON object into its undecoded members, so missing keys
// can be told apart from explicit nulls. A JSON null yields a nil map.
func members(data []byte) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadDocument decodes a consolidated catalogue from r.
//
// The input must be a JSON object with "attributes" and "products" members,
// and every product must have "timeline" and "versions". Numbers are kept
// as json.Number. ReadDocument returns a MALFORMED_INPUT error for anything
// else. It does not close r.
func ReadDocument(r io.Reader) (*catalogue.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read catalogue")
	}
	return UnmarshalDocument(data)
}

// UnmarshalDocument decodes a consolidated catalogue from data.
func UnmarshalDocument(data []byte) (*catalogue.Document, error) {
	raw, err := members(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode catalogue")
	}
	rawAttrs, ok := raw[keyAttributes]
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedInput, "catalogue has no attributes")
	}
	rawProducts, ok := raw[keyProducts]
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedInput, "catalogue has no products object")
	}
	products, err := members(rawProducts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "products")
	}
	if products == nil {
		return nil, errors.New(errors.ErrCodeMalformedInput, "catalogue has no products object")
	}

	attrs, err := catalogue.DecodeValue(rawAttrs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "attributes")
	}
	doc := catalogue.NewDocument(attrs)

	for name, rp := range products {
		p, err := decodeProduct(rp)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "product %s", name)
		}
		doc.Products[name] = p
	}
	return doc, nil
}

func decodeProduct(data json.RawMessage) (*catalogue.Product, error) {
	raw, err := members(data)
	if err != nil {
		return nil, err
	}
	rawTimeline, ok := raw[keyTimeline]
	if !ok {
		return nil, fmt.Errorf("no timeline")
	}
	rawVersions, ok := raw[keyVersions]
	if !ok {
		return nil, fmt.Errorf("no versions object")
	}
	versions, err := members(rawVersions)
	if err != nil {
		return nil, fmt.Errorf("versions: %w", err)
	}
	if versions == nil {
		return nil, fmt.Errorf("no versions object")
	}

	timeline, err := catalogue.DecodeValue(rawTimeline)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	p := catalogue.NewProduct(timeline)
	for v, content := range versions {
		value, err := catalogue.DecodeValue(content)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", v, err)
		}
		p.Versions[v] = value
	}
	return p, nil
}

// ImportDocument reads the consolidated catalogue at path.
// A missing file is a MISSING_FILE error.
func ImportDocument(path string) (*catalogue.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapRead(err, path)
	}
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return doc, nil
}
