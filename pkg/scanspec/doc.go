// Package scanspec loads scanner machines from declarative YAML or JSON
// documents.
//
// A document lists machines; each machine lists states in the same shape
// the scanner package uses in Go code. Named functions referenced from a
// document (combine and advance) resolve against a Registry.
//
// # Document Format
//
//	machines:
//	  - name: string-literal
//	    fallback: none          # or "accumulated"
//	    max_steps: 100000
//	    states:
//	      - name: start
//	        transitions:
//	          - {match: {char: '"'}, advance: char, next: read}
//	          - {match: default, advance: char, next: start}
//	      - name: read
//	        transitions:
//	          - {match: {regex: '\\(.)'}, accumulate: {group: 1}, advance: match, next: read}
//	          - {match: {char: '"'}, advance: char, next: exit}
//	          - {match: default, accumulate: match, advance: char, next: read}
//
// Matchers are default, {char}, {range: "a-z"}, {any: [...]} and {regex}.
// Accumulate is match, {group: N} or {combine: NAME}. Advance is char,
// match, {group: N} or {func: NAME}. JSON documents use the same keys.
//
// # Sources
//
// Documents are read through the Source interface. DirSource reads from a
// local directory and S3Source from an S3 bucket:
//
//	src, err := scanspec.NewS3Source(ctx, scanspec.S3Config{
//		Bucket: "machines",
//		Region: "us-east-1",
//		Prefix: "prod",
//	})
//	lib, err := scanspec.Load(ctx, src, "literals", scanspec.NewRegistry())
//	m, err := lib.Machine("string-literal")
//	res, err := m.Run(ctx, scanner.NewBuffer(input))
//
// Cache compiles documents once per distinct content.
//
// # Error Handling
//
// Problems inside a machine are reported as *DefinitionError naming the
// machine, state and transition index. Every definition error matches
// ErrInvalidDocument. Sources report missing documents as ErrNotFound.
package scanspec
