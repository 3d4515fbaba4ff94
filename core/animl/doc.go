// Package animl implements the AnIML (Analytical Information Markup
// Language) document model: a typed, immutable entity graph for analytical
// chemistry measurements with their experimental provenance, plus the
// decoding engine for the three encodings a data series may use.
//
// The package consumes the structured element tree defined in core/element
// (an XML parser's output; core/animlxml produces it from AnIML XML) and
// exposes four operations:
//
//   - Build: recursive validation and construction of the entity graph,
//     accumulating all structural defects in one pass.
//   - Resolve: post-build resolution of soft identifier references
//     (container ids, template ids, sample/step/series references).
//   - DecodeSeries: decoding of individual, binary-encoded, and
//     auto-incremented value sets into ordered, typed, restartable
//     sequences.
//   - Unit.Transform: the composed SI conversion of a unit's component
//     chain.
//
// The core is purely computational: no I/O, no locking, no shared state
// once a document is built. Independent documents, and independent series
// within one document, may be validated and decoded in parallel.
package animl
