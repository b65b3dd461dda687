// Package validate checks a [tree.TreeProject] against its structural
// invariants.
//
// # Rules
//
// A project is valid when:
//   - person ids and relationship ids are unique
//   - every person has a non-blank display name or full name
//   - every relationship has a known type and both endpoints exist
//   - no relationship links a person to itself
//   - no parent edge (ordered pair) or spouse edge (unordered pair) repeats
//   - the parent edges form no cycle
//
// [Project] reports every violation it finds in one pass and never fails.
// [AssertValid] turns a non-empty report into a [*ValidationError].
//
// # Cycles
//
// Cycle detection runs an iterative depth-first search with white, gray and
// black coloring over the graph of parent edges whose endpoints resolve.
// Every person is tried as a root, so a cycle unreachable from the first
// root is still found. Only the existence of a cycle is reported.
//
// Layout assumes an acyclic parent graph, so validate before calling
// [layout.AutoLayout].
//
// [tree.TreeProject]: github.com/geneatree/geneatree/pkg/tree.TreeProject
// [layout.AutoLayout]: github.com/geneatree/geneatree/pkg/tree/layout.AutoLayout
package validate
