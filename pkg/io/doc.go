// Package io reads and writes the consolidated catalogue file.
//
// # JSON Format
//
// The consolidated file is a single JSON object:
//
//	{
//	  "attributes": { ... },
//	  "products": {
//	    "widget": {
//	      "timeline": { ... },
//	      "versions": {"1": { ... }, "2.5": { ... }}
//	    }
//	  }
//	}
//
// Both top-level keys are required, and every product must carry both
// "timeline" and "versions". Attribute, timeline, and version values are
// opaque and may be any JSON value.
//
// # Import
//
// Use [ImportDocument] to read from a file path, or [ReadDocument] to read
// from any io.Reader. A missing file is reported as MISSING_FILE; anything
// that does not decode into the format above is MALFORMED_INPUT.
//
// # Export
//
// Use [MarshalDocument] to encode a Document. Keys are sorted at every
// level, so encoding the same Document twice produces identical bytes, and
// [Digest] of the result identifies its content. Output is compact unless
// [WriteOptions.Indent] is set.
//
// [WriteFile] writes encoded bytes to a temporary file next to the target
// and renames it into place, so readers never see a half-written catalogue.
package io
