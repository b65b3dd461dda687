// Package layout assigns generation levels and card positions to the people
// of a [tree.TreeProject].
//
// [ComputeGenerations] gives every person a level one below its deepest
// parent (roots are level 0). [AutoLayout] then places each level on its own
// horizontal row, centered on a start point, with siblings sorted by name.
//
// Both functions assume the parent edges are acyclic; on cyclic input they
// terminate but the levels are meaningless. Run validate.AssertValid first.
//
// [tree.TreeProject]: github.com/geneatree/geneatree/pkg/tree.TreeProject
package layout

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/geneatree/geneatree/pkg/tree"
)

// Row is one generation of people, sorted for display.
type Row struct {
	Level int
	IDs   []string
}

// ComputeGenerations returns the generation level of every person in p.
//
// Each parent edge whose endpoints are both known pushes the child to at
// least one level below the parent. Edges are relaxed until nothing changes
// or len(p.People) passes have run, whichever comes first, so the result is
// exact for acyclic input and bounded for cyclic input.
func ComputeGenerations(p *tree.TreeProject) map[string]int {
	levels := make(map[string]int, len(p.People))
	for _, person := range p.People {
		levels[person.ID] = 0
	}

	var edges [][2]string
	for _, r := range p.Relationships {
		if r.Type != tree.RelParent {
			continue
		}
		_, fromOK := levels[r.FromID]
		_, toOK := levels[r.ToID]
		if fromOK && toOK {
			edges = append(edges, [2]string{r.FromID, r.ToID})
		}
	}

	for range max(1, len(levels)) {
		changed := false
		for _, e := range edges {
			if next := levels[e[0]] + 1; next > levels[e[1]] {
				levels[e[1]] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return levels
}

// Rows groups the ids in levels by level, in ascending level order. Each row
// is sorted by lowercased display name, then by id, so the order is total and
// reproducible.
func Rows(levels map[string]int, p *tree.TreeProject) []Row {
	people := p.PeopleByID()
	groups := make(map[int][]string)
	for id, level := range levels {
		groups[level] = append(groups[level], id)
	}

	rows := make([]Row, 0, len(groups))
	for _, level := range slices.Sorted(maps.Keys(groups)) {
		ids := groups[level]
		slices.SortFunc(ids, func(a, b string) int {
			return cmp.Or(
				cmp.Compare(sortName(people[a]), sortName(people[b])),
				cmp.Compare(a, b),
			)
		})
		rows = append(rows, Row{Level: level, IDs: ids})
	}
	return rows
}

func sortName(p *tree.Person) string {
	if p == nil {
		return ""
	}
	return strings.ToLower(p.DisplayName)
}

// AutoLayout positions every person of p and returns the levels used.
//
// Row n sits at startY + n*GenerationSpacing. Within a row, cards are
// SiblingSpacing apart and the row is centered on startX. Only Person.Pos is
// modified.
func AutoLayout(p *tree.TreeProject, startX, startY float64) map[string]int {
	levels := ComputeGenerations(p)
	people := p.PeopleByID()
	spacing := p.Settings.SiblingSpacing

	for _, row := range Rows(levels, p) {
		width := float64(len(row.IDs)-1) * spacing
		x0 := startX - width/2
		y := startY + float64(row.Level)*p.Settings.GenerationSpacing
		for i, id := range row.IDs {
			people[id].Pos = tree.Position{X: x0 + float64(i)*spacing, Y: y}
		}
	}
	return levels
}
