// Package tree defines the family-tree data model.
//
// # Overview
//
// A [TreeProject] is the aggregate root: it owns an ordered list of
// [Person] nodes, an ordered list of [Relationship] edges between them, the
// page/layout [TreeSettings], and a derived asset manifest that maps person
// ids to project-relative photo paths.
//
// Two relationship types exist:
//
//   - [RelParent]: directed, From is the parent and To is the child
//   - [RelSpouse]: an unordered pair; From and To are interchangeable
//
// The model is plain data. Nothing in this package knows how a person is
// drawn; a rendering layer keeps its own index from person id to whatever
// visual handle it needs and refreshes it by re-reading the project.
//
// # Identifiers
//
// Ids are opaque strings. New ids come from an [IDGenerator] passed
// explicitly to [NewPerson], [NewRelationship] and [Decode]. The default,
// [NewID], returns a random UUID as 32 hex characters. Tests use
// [SequentialIDs] to get reproducible ids.
//
// # Serialization
//
// [Encode] and [Decode] convert between a project and the nested
// map-of-primitives form that is written to disk as JSON. Decoding is
// defensive: missing fields fall back to their defaults, and a missing or
// empty id is replaced by a fresh one. The only hard failure is a shape the
// model cannot represent, most importantly an unknown relationship type,
// which yields a DECODE_ERROR from [github.com/geneatree/geneatree/pkg/errors].
//
// TreeProject also implements json.Marshaler and json.Unmarshaler so that
// the same defaults apply to every JSON reader.
//
// # Structural Rules
//
// The constructors do not enforce graph invariants (unique ids, existing
// endpoints, acyclic parent edges). Those are checked by the validate
// subpackage, and must hold before the layout subpackage is run.
//
// # Concurrency
//
// A TreeProject is not safe for concurrent use. Callers that share one
// between goroutines must serialize access themselves.
package tree
