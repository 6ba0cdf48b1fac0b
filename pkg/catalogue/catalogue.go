package catalogue

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strconv"
)

// Value is an opaque JSON value: nil, bool, json.Number, string, []any or
// map[string]any.
type Value = any

// Document is the consolidated catalogue.
type Document struct {
	Attributes Value               `json:"attributes"`
	Products   map[string]*Product `json:"products"`
}

// Product is a single entry under products/.
type Product struct {
	Timeline Value            `json:"timeline"`
	Versions map[string]Value `json:"versions"`
}

// ErrEmpty is returned by DecodeValue for input without any JSON value.
var ErrEmpty = errors.New("no JSON value")

// NewDocument returns a Document with the given attributes and no products.
func NewDocument(attributes Value) *Document {
	return &Document{
		Attributes: attributes,
		Products:   make(map[string]*Product),
	}
}

// NewProduct returns a Product with the given timeline and no versions.
func NewProduct(timeline Value) *Product {
	return &Product{
		Timeline: timeline,
		Versions: make(map[string]Value),
	}
}

// ProductNames returns the product names in lexicographic order.
func (d *Document) ProductNames() []string {
	return sortedKeys(d.Products)
}

// VersionNames returns the version names in lexicographic order.
func (p *Product) VersionNames() []string {
	return sortedKeys(p.Versions)
}

// VersionCount returns the total number of versions across all products.
func (d *Document) VersionCount() int {
	n := 0
	for _, p := range d.Products {
		if p != nil {
			n += len(p.Versions)
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DecodeValue parses exactly one JSON value from data.
// Numbers are kept as json.Number. Trailing data after the value is an error.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v Value
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, errors.New("invalid character after top-level value")
		}
		return nil, err
	}
	return v, nil
}

// IsVersionName reports whether name parses as a floating-point number.
// Values outside the float64 range still count: "1e400" names a version.
func IsVersionName(name string) bool {
	_, err := strconv.ParseFloat(name, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
