// Package tree maps a catalogue directory tree to and from a [catalogue.Document].
//
// # Layout
//
// The on-disk layout is fixed:
//
//	root/
//	  attributes/attributes.json
//	  products/
//	    <product>/
//	      timeline.json
//	      versions/
//	        <version>.json
//
// # Implode
//
// [Implode] reads the tree into a Document. attributes.json and each
// timeline.json are required; a missing or unparsable one aborts the whole
// operation. Files under versions/ are lenient: each one is classified by
// [Classify], and files with the wrong extension, a non-numeric name, or
// unparsable content are skipped with a warning instead of failing.
//
//	res, err := tree.Implode("catalogue", tree.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	for _, s := range res.Skipped {
//	    fmt.Println(s.Path, s.Reason)
//	}
//
// # Explode
//
// [Explode] writes a Document back out as a tree. Directories are created
// when missing and never cleared; files are overwritten. Output is
// pretty-printed with four-space indentation and sorted keys, so running
// Explode twice produces byte-identical files. Nothing is validated on the
// way out.
//
// # Ordering
//
// Directory listings are sorted before processing, which makes warnings,
// skip reports, and write order deterministic regardless of the
// filesystem.
//
// # Concurrency
//
// Both operations are synchronous and single-threaded. Callers must not run
// them concurrently against the same root.
package tree
