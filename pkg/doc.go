// Package pkg holds the geneatree libraries.
//
// # Overview
//
// A family tree is a [tree.TreeProject]: people, parent and spouse
// relationships between them, page settings, and a manifest of photos kept
// next to the project file. The packages build on each other:
//
//	[tree]              entity model, JSON codec, ids, name and date helpers
//	[tree/validate]     referential integrity and ancestry-cycle checks
//	[tree/layout]       generation levels and row positions
//	[store]             project file and assets directory on disk
//	[export/nodelink]   Graphviz DOT and SVG export
//	[server]            HTTP API over one loaded project
//
// Supporting packages: [errors] (coded errors), [config] (TOML settings),
// [cache] (rendered SVG cache), [observability] (metrics hooks) and
// [buildinfo].
//
// # Quick Start
//
//	p, err := store.Load("family.json")
//	if err != nil {
//	    return err
//	}
//	layout.AutoLayout(p, 0, 0)
//	return store.Save(p, "family.json")
//
// [tree.TreeProject]: github.com/geneatree/geneatree/pkg/tree.TreeProject
// [tree]: github.com/geneatree/geneatree/pkg/tree
// [tree/validate]: github.com/geneatree/geneatree/pkg/tree/validate
// [tree/layout]: github.com/geneatree/geneatree/pkg/tree/layout
// [store]: github.com/geneatree/geneatree/pkg/store
// [export/nodelink]: github.com/geneatree/geneatree/pkg/export/nodelink
// [server]: github.com/geneatree/geneatree/pkg/server
// [errors]: github.com/geneatree/geneatree/pkg/errors
// [config]: github.com/geneatree/geneatree/pkg/config
// [cache]: github.com/geneatree/geneatree/pkg/cache
// [observability]: github.com/geneatree/geneatree/pkg/observability
// [buildinfo]: github.com/geneatree/geneatree/pkg/buildinfo
package pkg
