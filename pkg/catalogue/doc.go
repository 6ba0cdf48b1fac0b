// Package catalogue provides the in-memory model shared by implode and explode.
//
// # Overview
//
// A product catalogue is stored either as a directory tree of small JSON files
// or as one consolidated JSON document. Both representations map onto the
// same [Document]:
//
//	{
//	  "attributes": { ... },
//	  "products": {
//	    "widget": {
//	      "timeline": { ... },
//	      "versions": {
//	        "1":   { ... },
//	        "1.5": { ... }
//	      }
//	    }
//	  }
//	}
//
// # Values
//
// Attributes, timelines, and version contents are opaque [Value]s. The
// package never interprets them; it only carries them between the two
// representations. Values are decoded with [DecodeValue], which keeps
// numbers as [encoding/json.Number] so their literal text is written back
// unchanged.
//
// # Version Names
//
// Version keys must look like numbers ("1", "2.1", "1e3"). [IsVersionName]
// implements that check. It is a naming convention only: version keys are
// stored and emitted as strings and never compared numerically.
//
// # Ordering
//
// Go maps are unordered. [Document.ProductNames] and [Product.VersionNames]
// return keys sorted lexicographically, which is the order every reader and
// writer in this module uses.
package catalogue
