// Package gen drives the timescape generators.
//
// Generate turns an in-memory set of schemas, handler descriptors and
// module descriptors into generated text keyed by relative path, plus the
// manifest bundle. Write persists that map atomically.
//
// # Architecture
//
// The pipeline follows this flow:
//
//	schemas, handlers, modules (compiler/load or in-memory)
//	        ↓
//	   bundle.Build (descriptor, reference and schema checks; version graph)
//	        ↓
//	   one task per output file, run on an errgroup worker pool
//	        ↓
//	   Result.Files (relative path -> text) + Result.Bundle
//	        ↓
//	   Write (temp file + rename per file)
//
// Input problems are all found by bundle.Build before any rendering
// starts, so a run either produces every file or none.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - ConfigError: invalid options or a feature missing its settings
//   - GenerationError: a file could not be rendered or written
//
// GenerationError unwraps to the cause, so the root taxonomy still applies:
//
//	res, err := gen.Generate(ctx, cfg, in)
//	if timescape.IsReferentialError(err) {
//	    // duplicate id or dangling module/schema reference
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithTarget("./generated"),
//	    gen.WithFeatures(gen.FeatureClientAuth, gen.FeatureGoTypes),
//	    gen.WithLogger(logger),
//	)
//
// # Generated Output
//
//	{target}/
//	├── manifest.json
//	├── types/
//	│   ├── index.ts
//	│   └── {Schema}.ts
//	├── validators/
//	│   ├── index.ts
//	│   ├── validation.ts   // shared runtime helpers
//	│   └── {Schema}.ts
//	├── client/
//	│   └── client.ts
//	├── transformers/
//	│   └── {from}__{to}.ts // one per breaking edge, never overwritten
//	└── go/
//	    └── types.go        // with go/types
//
// # Features
//
//   - client/auth: bearer token option on the client
//   - client/timeout: request timeout option on the client
//   - bundle/metadata: project name and environment in the bundle
//   - go/types: Go declarations of every schema
//   - bundle/sign: ed25519 signature over the bundle checksum
package gen
