// Package ir provides the backend-neutral query intermediate representation.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This ensures IR remains the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The operator set is closed: every operator has exactly one mapping in
//     each backend synthesizer, and the set is never extended per clause.
//   - A Query is constructed once by the extractor, read afterward, and
//     never persisted. Nothing in this package is mutable shared state.
//   - BETWEEN never survives extraction: it is lowered to a >= / <= pair
//     before the IR reaches either synthesizer.
package ir
