// Package source loads file format definitions.
//
// # File Source
//
// The file source reads YAML from a single file or from every .yaml/.yml
// file below a directory. A document either lists formats:
//
//	formats:
//	  - name: Partners
//	    model: party.party
//	    kind: delimited
//	    state: active
//	    path: /var/exports
//	    file_name: partners.csv
//	    header: true
//	    separator: ","
//	    quote: '"'
//	    fields:
//	      - {name: code, sequence: 1, expression: $code}
//	      - {name: name, sequence: 2, expression: $name}
//
// or holds a single definition at the top level. Several documents may share
// a file, separated by "---".
//
//	src := source.NewFileSource("formats/", logger)
//	defs, err := src.Load(ctx)
//
// # Registry
//
// A Registry holds the loaded set and is what the exporter, scheduler and CLI
// look formats up in. Load replaces the set only when the source loads
// cleanly:
//
//	reg := source.NewRegistry()
//	if err := reg.Load(ctx, src); err != nil {
//	    // reg still holds the previous formats
//	}
//	def, err := reg.Get("Partners")
//
// # In-Memory Source
//
// MemorySource serves definitions built in code, mostly for tests.
package source
