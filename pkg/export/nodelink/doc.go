// Package nodelink exports a family tree as a node-link diagram.
//
// # Usage
//
// Convert a project to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(p, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// A [Renderer] adds caching keyed by the DOT text, so re-exporting an
// unchanged tree skips Graphviz entirely:
//
//	r := nodelink.NewRenderer(fileCache)
//	svg, hit, err := r.SVG(ctx, dot)
//
// PDF output goes through the same cache and then rsvg-convert, sized to the
// project's page settings:
//
//	pdf, hit, err := r.PDF(ctx, dot, nodelink.PageFor(p.Settings))
//
// # DOT Format
//
// The generated DOT lays generations out top to bottom (rankdir=TB), one
// rank=same group per generation. Within a generation, nodes are listed by
// display name and id. Parent edges are arrows; spouse edges are dashed lines
// with constraint=false so that marriages never push a person into another
// generation.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process and needs no system installation. PDF conversion shells out to
// rsvg-convert from librsvg.
package nodelink
