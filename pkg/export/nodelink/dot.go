package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/geneatree/geneatree/pkg/cache"
	"github.com/geneatree/geneatree/pkg/observability"
	"github.com/geneatree/geneatree/pkg/tree"
	"github.com/geneatree/geneatree/pkg/tree/layout"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds full name and life dates under the display name.
	Detailed bool
}

// ToDOT converts a project to Graphviz DOT source. Each generation is a
// rank of its own, ordered like [layout.AutoLayout] orders a row. Parent
// edges point from parent to child; spouse edges are dashed, undirected and
// do not affect ranking.
func ToDOT(p *tree.TreeProject, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")

	people := p.PeopleByID()
	for _, row := range layout.Rows(layout.ComputeGenerations(p), p) {
		fmt.Fprintf(&buf, "\n  // generation %d\n", row.Level)
		buf.WriteString("  { rank=same;")
		for _, id := range row.IDs {
			fmt.Fprintf(&buf, " %s;", quote(id))
		}
		buf.WriteString(" }\n")
		for _, id := range row.IDs {
			fmt.Fprintf(&buf, "  %s [label=%s];\n", quote(id), quote(fmtLabel(people[id], opts.Detailed)))
		}
	}

	buf.WriteString("\n")
	for _, r := range p.Relationships {
		if people[r.FromID] == nil || people[r.ToID] == nil {
			continue
		}
		switch r.Type {
		case tree.RelParent:
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(r.FromID), quote(r.ToID))
		case tree.RelSpouse:
			fmt.Fprintf(&buf, "  %s -> %s [dir=none, style=dashed, constraint=false];\n", quote(r.FromID), quote(r.ToID))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// quote returns s as a DOT double-quoted string. Only backslash, double
// quote and line breaks are escaped; everything else is written verbatim.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func fmtLabel(p *tree.Person, detailed bool) string {
	name := p.Name()
	if !detailed {
		return name
	}

	lines := []string{name}
	if full := tree.Value(p.FullName); full != "" && full != name {
		lines = append(lines, full)
	}
	birth, death := tree.Value(p.BirthDate), tree.Value(p.DeathDate)
	switch {
	case birth != "" && death != "":
		lines = append(lines, birth+" - "+death)
	case birth != "":
		lines = append(lines, "b. "+birth)
	case death != "":
		lines = append(lines, "d. "+death)
	}
	return strings.Join(lines, "\n")
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose viewBox starts at
// the origin and whose width and height match it, so the image scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// Renderer renders SVG through a cache keyed by the DOT source.
type Renderer struct {
	Cache cache.Cache
	// TTL bounds how long rendered SVG is kept. Zero keeps it forever.
	TTL time.Duration
	// render and convert are swapped out in tests.
	render  func(context.Context, string) ([]byte, error)
	convert func(context.Context, []byte, Page) ([]byte, error)
}

// NewRenderer returns a renderer backed by c. A nil cache disables caching.
func NewRenderer(c cache.Cache) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Renderer{Cache: c}
}

// SVG returns the rendered diagram for dot and whether it came from the
// cache. Cache read and write failures fall back to rendering.
func (r *Renderer) SVG(ctx context.Context, dot string) ([]byte, bool, error) {
	c := r.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	key := cache.Key("svg", []byte(dot))
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "svg")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "svg")

	render := r.render
	if render == nil {
		render = RenderSVG
	}
	svg, err := render(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, svg, r.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "svg", len(svg))
	}
	return svg, false, nil
}
