// Package domain defines the core business entities for docthemes.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Exchange: One completed question/answer cycle
//   - ExtractedAnswer: A per-document answer returned by the answering service
//   - ExclusionSet: Documents the user has opted out of querying
//   - Segment: A renderable piece of a theme summary, possibly a citation
//
// It also holds the pure derivations over those types: citation parsing
// and resolution, match-set derivation and the exclusion checklist.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
