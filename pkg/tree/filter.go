package tree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/catalogue/pkg/catalogue"
	"github.com/matzehuels/catalogue/pkg/errors"
)

// versionExt is the only extension accepted under versions/.
const versionExt = "json"

// SkipReason says why a version file was left out.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipWrongExtension
	SkipNotNumeric
	SkipInvalidJSON
	SkipUnreadable
)

var skipReasonText = map[SkipReason]string{
	SkipNone:           "included",
	SkipWrongExtension: "incorrect file type",
	SkipNotNumeric:     "not a version number",
	SkipInvalidJSON:    "invalid json",
	SkipUnreadable:     "unreadable",
}

// String returns the short human-readable reason.
func (r SkipReason) String() string {
	if s, ok := skipReasonText[r]; ok {
		return s
	}
	return "unknown"
}

// Verdict is the result of classifying one file under versions/.
// Value is set only when the file is included; Err only when it is skipped.
type Verdict struct {
	Version string          // base name without extension
	Value   catalogue.Value // parsed content when included
	Reason  SkipReason
	Err     *errors.Error // INVALID_VERSION_FILE when skipped
}

// Included reports whether the file becomes a version entry.
func (v Verdict) Included() bool { return v.Reason == SkipNone }

// SplitName splits a filename at its last dot.
// A name without a dot has an empty extension.
func SplitName(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// Classify decides whether the file dir/name is a valid version file.
//
// Checks run in order and stop at the first failure:
//  1. the extension must be "json"
//  2. the base name must parse as a number
//  3. the content must be a single valid JSON value
//
// Classify never returns a fatal error; every failure is reported in the
// Verdict.
func Classify(dir, name string) Verdict {
	base, ext := SplitName(name)
	v := Verdict{Version: base}

	if ext != versionExt {
		return v.skip(SkipWrongExtension, nil, "%s has incorrect file type, expected a .json file", name)
	}
	if !catalogue.IsVersionName(base) {
		return v.skip(SkipNotNumeric, nil, "%s is not a version number", name)
	}

	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return v.skip(SkipUnreadable, err, "read %s", name)
	}
	value, err := catalogue.DecodeValue(data)
	if err != nil {
		return v.skip(SkipInvalidJSON, lowerError(err), "invalid json in %s", name)
	}

	v.Value = value
	return v
}

func (v Verdict) skip(reason SkipReason, cause error, format string, args ...any) Verdict {
	v.Reason = reason
	v.Err = errors.Wrap(errors.ErrCodeInvalidVersionFile, cause, format, args...)
	return v
}

// lowerErr lowercases the message of a parse error for warnings.
type lowerErr struct{ err error }

func (e lowerErr) Error() string { return strings.ToLower(e.err.Error()) }
func (e lowerErr) Unwrap() error { return e.err }

func lowerError(err error) error { return lowerErr{err: err} }
