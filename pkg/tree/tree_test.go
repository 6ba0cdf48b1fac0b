package tree

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/errors"
	catio "github.com/matzehuels/catalogue/pkg/io"
)

// writeTree creates files under root from a map of slash-separated relative
// paths to contents.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func mustValue(t *testing.T, s string) catalogue.Value {
	t.Helper()
	v, err := catalogue.DecodeValue([]byte(s))
	if err != nil {
		t.Fatalf("DecodeValue(%q): %v", s, err)
	}
	return v
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func sampleTree() map[string]string {
	return map[string]string{
		"attributes/attributes.json":           `{"currency": "EUR", "regions": ["eu", "us"]}`,
		"products/widget/timeline.json":        `{"launched": "2020-01-01"}`,
		"products/widget/versions/1.json":      `{"price": 10}`,
		"products/widget/versions/2.5.json":    `{"price": 12.50, "tags": ["new"]}`,
		"products/gadget/timeline.json":        `[]`,
		"products/gadget/versions/3.json":      `{"price": null}`,
		"products/empty/timeline.json":         `{}`,
		"products/empty/versions/.placeholder": ``,
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, base, ext string
	}{
		{"1.json", "1", "json"},
		{"1.2.json", "1.2", "json"},
		{"1.2.txt", "1.2", "txt"},
		{"README", "README", ""},
		{".json", "", "json"},
		{"1.json.bak", "1.json", "bak"},
	}

	for _, tt := range tests {
		base, ext := SplitName(tt.name)
		if base != tt.base || ext != tt.ext {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.name, base, ext, tt.base, tt.ext)
		}
	}
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"1.json":     `{"a": 1}`,
		"2.5.json":   `[1, 2]`,
		"1e3.json":   `"x"`,
		"abc.json":   `{}`,
		"1.2.txt":    `{}`,
		"notes":      `{}`,
		"3.json":     `{"a": `,
		"4.json":     ``,
		"5.JSON":     `{}`,
		"6.json.bak": `{}`,
	})

	tests := []struct {
		file    string
		version string
		reason  SkipReason
	}{
		{"1.json", "1", SkipNone},
		{"2.5.json", "2.5", SkipNone},
		{"1e3.json", "1e3", SkipNone},
		{"abc.json", "abc", SkipNotNumeric},
		{"1.2.txt", "1.2", SkipWrongExtension},
		{"notes", "notes", SkipWrongExtension},
		{"3.json", "3", SkipInvalidJSON},
		{"4.json", "4", SkipInvalidJSON},
		{"5.JSON", "5", SkipWrongExtension},
		{"6.json.bak", "6.json", SkipWrongExtension},
		{"7.json", "7", SkipUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			v := Classify(dir, tt.file)
			if v.Version != tt.version {
				t.Errorf("Version = %q, want %q", v.Version, tt.version)
			}
			if v.Reason != tt.reason {
				t.Errorf("Reason = %v, want %v", v.Reason, tt.reason)
			}
			if v.Included() {
				if v.Err != nil {
					t.Errorf("included file has Err = %v", v.Err)
				}
				return
			}
			if !errors.Is(v.Err, errors.ErrCodeInvalidVersionFile) {
				t.Errorf("Err = %v, want INVALID_VERSION_FILE", v.Err)
			}
		})
	}
}

func TestClassifyLowercasesParseError(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"3.json": `{"a": TRUE}`})

	v := Classify(dir, "3.json")
	if v.Reason != SkipInvalidJSON {
		t.Fatalf("Reason = %v, want %v", v.Reason, SkipInvalidJSON)
	}
	cause := v.Err.Cause.Error()
	if cause != strings.ToLower(cause) {
		t.Errorf("cause not lowercased: %q", cause)
	}
	if !strings.Contains(cause, "'t'") {
		t.Errorf("cause = %q, want the offending character", cause)
	}
	msg := v.Err.Error()
	if !strings.Contains(msg, "3.json") {
		t.Errorf("Err = %q, should name the file", msg)
	}
}

func TestImplode(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, sampleTree())

	var buf bytes.Buffer
	res, err := Implode(root, Options{Logger: testLogger(&buf)})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}

	want := &catalogue.Document{
		Attributes: mustValue(t, `{"currency": "EUR", "regions": ["eu", "us"]}`),
		Products: map[string]*catalogue.Product{
			"widget": {
				Timeline: mustValue(t, `{"launched": "2020-01-01"}`),
				Versions: map[string]catalogue.Value{
					"1":   mustValue(t, `{"price": 10}`),
					"2.5": mustValue(t, `{"price": 12.50, "tags": ["new"]}`),
				},
			},
			"gadget": {
				Timeline: mustValue(t, `[]`),
				Versions: map[string]catalogue.Value{
					"3": mustValue(t, `{"price": null}`),
				},
			},
			"empty": {
				Timeline: mustValue(t, `{}`),
				Versions: map[string]catalogue.Value{},
			},
		},
	}
	if diff := cmp.Diff(want, res.Document); diff != "" {
		t.Errorf("Implode() mismatch (-want +got):\n%s", diff)
	}

	if len(res.Skipped) != 1 || res.Skipped[0].File != ".placeholder" {
		t.Errorf("Skipped = %+v, want only .placeholder", res.Skipped)
	}
}

func TestImplodeSkipsInvalidVersionFiles(t *testing.T) {
	root := t.TempDir()
	files := sampleTree()
	files["products/widget/versions/abc.json"] = `{"price": 1}`
	files["products/widget/versions/1.2.txt"] = `{"price": 1}`
	files["products/widget/versions/3.json"] = `{"price": `
	writeTree(t, root, files)
	if err := os.MkdirAll(filepath.Join(root, "products/widget/versions/4.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	res, err := Implode(root, Options{Logger: testLogger(&buf)})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}

	versions := res.Document.Products["widget"].VersionNames()
	if diff := cmp.Diff([]string{"1", "2.5"}, versions); diff != "" {
		t.Errorf("widget versions mismatch (-want +got):\n%s", diff)
	}

	var got []string
	for _, s := range res.Skipped {
		if s.Product == "widget" {
			got = append(got, s.File+":"+s.Reason.String())
		}
	}
	want := []string{
		"1.2.txt:incorrect file type",
		"3.json:invalid json",
		"abc.json:not a version number",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	out := buf.String()
	for _, s := range []string{"incorrect file type", "not a version number", "invalid json in 3.json", "widget"} {
		if !strings.Contains(out, s) {
			t.Errorf("log output missing %q:\n%s", s, out)
		}
	}
}

func TestImplodeFatal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(files map[string]string)
		code   errors.Code
	}{
		{
			name:   "missing attributes",
			mutate: func(f map[string]string) { delete(f, "attributes/attributes.json") },
			code:   errors.ErrCodeMissingFile,
		},
		{
			name:   "malformed attributes",
			mutate: func(f map[string]string) { f["attributes/attributes.json"] = `{"currency": ` },
			code:   errors.ErrCodeMalformedInput,
		},
		{
			name:   "missing timeline",
			mutate: func(f map[string]string) { delete(f, "products/gadget/timeline.json") },
			code:   errors.ErrCodeMissingFile,
		},
		{
			name:   "malformed timeline",
			mutate: func(f map[string]string) { f["products/widget/timeline.json"] = `not json` },
			code:   errors.ErrCodeMalformedInput,
		},
		{
			name: "missing products",
			mutate: func(f map[string]string) {
				for k := range f {
					if strings.HasPrefix(k, "products/") {
						delete(f, k)
					}
				}
			},
			code: errors.ErrCodeMissingFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			files := sampleTree()
			tt.mutate(files)
			writeTree(t, root, files)

			res, err := Implode(root, Options{})
			if err == nil {
				t.Fatalf("Implode() = %+v, want error", res)
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Implode() error = %v, want code %s", err, tt.code)
			}
			if errors.Is(err, errors.ErrCodeInvalidVersionFile) {
				t.Errorf("error %v should not be a skip", err)
			}
		})
	}
}

func TestImplodeMissingVersionsDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"attributes/attributes.json":    `{}`,
		"products/widget/timeline.json": `{}`,
	})

	_, err := Implode(root, Options{})
	if !errors.Is(err, errors.ErrCodeMissingFile) {
		t.Errorf("Implode() error = %v, want MISSING_FILE", err)
	}
}

func TestImplodeIgnoresStrayFilesInProducts(t *testing.T) {
	root := t.TempDir()
	files := sampleTree()
	files["products/README.md"] = "# products"
	writeTree(t, root, files)

	res, err := Implode(root, Options{})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}
	if diff := cmp.Diff([]string{"empty", "gadget", "widget"}, res.Document.ProductNames()); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestExplodeLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	doc := catalogue.NewDocument(mustValue(t, `{"b": 1, "a": "<x>"}`))
	p := catalogue.NewProduct(mustValue(t, `{"start": "2021"}`))
	p.Versions["1"] = mustValue(t, `{"z": [1, 2], "y": {"d": true, "c": null}}`)
	doc.Products["widget"] = p
	doc.Products["bare"] = catalogue.NewProduct(nil)

	if err := Explode(root, doc, Options{}); err != nil {
		t.Fatalf("Explode: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "products", "widget", "versions", "1.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{
    "y": {
        "c": null,
        "d": true
    },
    "z": [
        1,
        2
    ]
}
`
	if string(got) != want {
		t.Errorf("1.json =\n%s\nwant\n%s", got, want)
	}

	attrs, err := os.ReadFile(filepath.Join(root, "attributes", "attributes.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(attrs) != "{\n    \"a\": \"<x>\",\n    \"b\": 1\n}\n" {
		t.Errorf("attributes.json = %q", attrs)
	}

	info, err := os.Stat(filepath.Join(root, "products", "bare", "versions"))
	if err != nil || !info.IsDir() {
		t.Errorf("bare/versions should exist as a directory: %v", err)
	}
}

func TestExplodeIdempotent(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()
	writeTree(t, src, sampleTree())
	res, err := Implode(src, Options{})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}

	if err := Explode(root, res.Document, Options{}); err != nil {
		t.Fatalf("first Explode: %v", err)
	}
	first := snapshot(t, root)

	if err := Explode(root, res.Document, Options{}); err != nil {
		t.Fatalf("second Explode: %v", err)
	}
	second := snapshot(t, root)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second explode changed files (-first +second):\n%s", diff)
	}
}

func TestExplodeKeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"products/widget/versions/draft.txt": "keep me",
		"products/widget/versions/1.json":    `{"old": true}`,
	})

	doc := catalogue.NewDocument(mustValue(t, `{}`))
	p := catalogue.NewProduct(mustValue(t, `{}`))
	p.Versions["1"] = mustValue(t, `{"new": true}`)
	doc.Products["widget"] = p

	if err := Explode(root, doc, Options{}); err != nil {
		t.Fatalf("Explode: %v", err)
	}

	files := snapshot(t, root)
	if files["products/widget/versions/draft.txt"] != "keep me" {
		t.Error("explode removed an unrelated file")
	}
	if files["products/widget/versions/1.json"] != "{\n    \"new\": true\n}\n" {
		t.Errorf("1.json not overwritten: %q", files["products/widget/versions/1.json"])
	}
}

func TestExplodeErrors(t *testing.T) {
	t.Run("nil document", func(t *testing.T) {
		err := Explode(t.TempDir(), nil, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Explode(nil) error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(root, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := Explode(root, catalogue.NewDocument(nil), Options{})
		if !errors.Is(err, errors.ErrCodeDirectoryCreation) {
			t.Errorf("Explode() error = %v, want DIRECTORY_CREATION", err)
		}
	})

	t.Run("version path is a directory", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "products", "widget", "versions", "1.json"), 0o755); err != nil {
			t.Fatal(err)
		}
		doc := catalogue.NewDocument(nil)
		p := catalogue.NewProduct(nil)
		p.Versions["1"] = "x"
		doc.Products["widget"] = p

		err := Explode(root, doc, Options{})
		if !errors.Is(err, errors.ErrCodeWrite) {
			t.Errorf("Explode() error = %v, want WRITE_FAILED", err)
		}
		if _, statErr := os.Stat(filepath.Join(root, "products", "widget", "timeline.json")); statErr != nil {
			t.Errorf("files written before the failure should remain: %v", statErr)
		}
	})
}

func TestRoundTripDocument(t *testing.T) {
	doc := catalogue.NewDocument(mustValue(t, `{"name": "shop", "n": 1.0, "list": [1, "two", null, false]}`))
	a := catalogue.NewProduct(mustValue(t, `{"events": [{"at": "2020"}]}`))
	a.Versions["1"] = mustValue(t, `{"price": 9.99}`)
	a.Versions["1.5"] = mustValue(t, `"plain string"`)
	a.Versions["10"] = mustValue(t, `[]`)
	a.Versions["2e1"] = mustValue(t, `12345678901234567890`)
	doc.Products["alpha"] = a
	doc.Products["beta"] = catalogue.NewProduct(mustValue(t, `null`))

	root := t.TempDir()
	if err := Explode(root, doc, Options{}); err != nil {
		t.Fatalf("Explode: %v", err)
	}
	res, err := Implode(root, Options{})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("Skipped = %+v, want none", res.Skipped)
	}
	if diff := cmp.Diff(doc, res.Document); diff != "" {
		t.Errorf("implode(explode(D)) mismatch (-want +got):\n%s", diff)
	}
}

func TestImplodeDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, sampleTree())

	encode := func() []byte {
		t.Helper()
		res, err := Implode(root, Options{})
		if err != nil {
			t.Fatalf("Implode: %v", err)
		}
		data, err := catio.MarshalDocument(res.Document, catio.WriteOptions{})
		if err != nil {
			t.Fatalf("MarshalDocument: %v", err)
		}
		return data
	}

	first, second := encode(), encode()
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("implode of an unchanged tree differs (-first +second):\n%s", diff)
	}
}

func TestRoundTripTree(t *testing.T) {
	src := t.TempDir()
	files := sampleTree()
	delete(files, "products/empty/versions/.placeholder")
	writeTree(t, src, files)
	if err := os.MkdirAll(filepath.Join(src, "products", "empty", "versions"), 0o755); err != nil {
		t.Fatal(err)
	}

	first, err := Implode(src, Options{})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}
	dst := t.TempDir()
	if err := Explode(dst, first.Document, Options{}); err != nil {
		t.Fatalf("Explode: %v", err)
	}
	second, err := Implode(dst, Options{})
	if err != nil {
		t.Fatalf("Implode: %v", err)
	}

	if diff := cmp.Diff(first.Document, second.Document); diff != "" {
		t.Errorf("explode(implode(T)) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(paths(snapshot(t, src)), paths(snapshot(t, dst))); diff != "" {
		t.Errorf("tree layout mismatch (-want +got):\n%s", diff)
	}
}

// snapshot returns every regular file under root keyed by slash path.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return out
}

func paths(files map[string]string) map[string]bool {
	out := make(map[string]bool, len(files))
	for k := range files {
		out[k] = true
	}
	return out
}
