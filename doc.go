// Package timescape is a schema-driven code generation engine.
//
// A schema algebra (package schema) describes data shapes. Each schema is
// lowered independently into four target artifacts:
//
//   - runtime validators (compiler/gen/validator)
//   - static type declarations (compiler/gen/typescript, compiler/gen/golang)
//   - typed remote-call client stubs (compiler/gen/client)
//   - version-migration transformer skeletons (compiler/gen/transformer)
//
// Handler, module and schema descriptions are separately aggregated into a
// checksum-protected manifest bundle with an embedded version-compatibility
// graph (compiler/gen/bundle).
//
// Every generator is a pure function over immutable input. The
// orchestrator in compiler/gen runs them concurrently and returns a map of
// relative path to generated text; persisting that map is the caller's job.
//
// This package holds the error taxonomy shared by all of them:
//
//   - SchemaError: malformed schema construction
//   - ReferentialError: duplicate ids, missing module or schema references
//   - IntegrityError: checksum or signature mismatch on re-validation
//   - DescriptorError: malformed handler or module descriptors
//
// Example:
//
//	if _, err := bundle.Build(in); timescape.IsReferentialError(err) {
//		log.Fatal(err)
//	}
package timescape
