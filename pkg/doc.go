// Package pkg provides the libraries behind the catalogue command.
//
// # Overview
//
// A product catalogue is edited as a directory tree and shipped as one
// consolidated JSON file. The packages convert between the two:
//
//	data/
//	  attributes/attributes.json
//	  products/<product>/timeline.json
//	  products/<product>/versions/<version>.json
//	         ↕  [tree] Implode / Explode
//	[catalogue] Document
//	         ↕  [io] ImportDocument / MarshalDocument + WriteFile
//	catalogue.json
//
// # Quick Start
//
//	res, err := tree.Implode("data", tree.Options{Logger: logger})
//	if err != nil {
//	    return err // missing or broken attributes.json / timeline.json
//	}
//	for _, s := range res.Skipped {
//	    fmt.Println("skipped", s.Product, s.File, s.Reason)
//	}
//	data, err := io.MarshalDocument(res.Document, io.WriteOptions{})
//	if err != nil {
//	    return err
//	}
//	err = io.WriteFile("catalogue.json", data)
//
// # Packages
//
//   - [catalogue]: the in-memory Document and version-name rules
//   - [tree]: reading and writing the directory tree
//   - [io]: the consolidated JSON file
//   - [errors]: coded errors shared by all packages
//   - [config]: layered settings for the command
//   - [watch]: re-running implode when the tree changes
//   - [buildinfo]: version information set at link time
//
// [catalogue]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/catalogue
// [tree]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/tree
// [io]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/errors
// [config]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/config
// [watch]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/watch
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/catalogue/pkg/buildinfo
package pkg
