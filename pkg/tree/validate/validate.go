package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree"
)

// ValidationError reports every invariant a project violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid project data:\n- " + strings.Join(e.Problems, "\n- ")
}

// Code implements [errors.Coder].
func (e *ValidationError) Code() errors.Code {
	return errors.ErrCodeValidation
}

// AssertValid returns a *ValidationError when [Project] reports problems.
func AssertValid(p *tree.TreeProject) error {
	if problems := Project(p); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Project returns a human-readable line for every structural problem in p,
// or nil when p is valid. The output is deterministic for a given project.
func Project(p *tree.TreeProject) []string {
	var problems []string

	personIDs := make([]string, len(p.People))
	for i, person := range p.People {
		personIDs[i] = person.ID
	}
	if dups := duplicates(personIDs); len(dups) > 0 {
		problems = append(problems, fmt.Sprintf("Duplicate person ids: %v", dups))
	}

	for _, person := range p.People {
		if strings.TrimSpace(person.DisplayName) == "" && strings.TrimSpace(tree.Value(person.FullName)) == "" {
			problems = append(problems, fmt.Sprintf("Person %s has no display_name or full_name", person.ID))
		}
	}

	relIDs := make([]string, len(p.Relationships))
	for i, r := range p.Relationships {
		relIDs[i] = r.ID
	}
	if dups := duplicates(relIDs); len(dups) > 0 {
		problems = append(problems, fmt.Sprintf("Duplicate relationship ids: %v", dups))
	}

	known := make(map[string]bool, len(personIDs))
	for _, id := range personIDs {
		known[id] = true
	}

	parentPairs := make(map[[2]string]bool)
	spousePairs := make(map[[2]string]bool)
	children := make(map[string][]string)

	for _, r := range p.Relationships {
		if !r.Type.IsValid() {
			problems = append(problems, fmt.Sprintf("Unknown relationship type: %s:%s", r.ID, r.Type))
		}
		if !known[r.FromID] {
			problems = append(problems, fmt.Sprintf("Relationship %s references missing from_id=%s", r.ID, r.FromID))
		}
		if !known[r.ToID] {
			problems = append(problems, fmt.Sprintf("Relationship %s references missing to_id=%s", r.ID, r.ToID))
		}
		if r.FromID == r.ToID {
			problems = append(problems, fmt.Sprintf("Relationship %s links person to itself", r.ID))
		}

		switch r.Type {
		case tree.RelParent:
			key := [2]string{r.FromID, r.ToID}
			if parentPairs[key] {
				problems = append(problems, fmt.Sprintf("Duplicate parent relationship: %s->%s", r.FromID, r.ToID))
			}
			parentPairs[key] = true
			if known[r.FromID] && known[r.ToID] {
				children[r.FromID] = append(children[r.FromID], r.ToID)
			}
		case tree.RelSpouse:
			key := [2]string{r.FromID, r.ToID}
			if key[1] < key[0] {
				key[0], key[1] = key[1], key[0]
			}
			if spousePairs[key] {
				problems = append(problems, fmt.Sprintf("Duplicate spouse relationship: %s<->%s", key[0], key[1]))
			}
			spousePairs[key] = true
		}
	}

	if hasCycle(personIDs, children) {
		problems = append(problems, "Parent relationships contain a cycle")
	}
	return problems
}

// duplicates returns the sorted set of values that occur more than once.
func duplicates(values []string) []string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	var dups []string
	for v, n := range counts {
		if n > 1 {
			dups = append(dups, v)
		}
	}
	slices.Sort(dups)
	return dups
}

// hasCycle reports whether the directed graph given by children contains a
// cycle. Each id in roots that is still unvisited starts a new search.
func hasCycle(roots []string, children map[string][]string) bool {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		node string
		next int
	}

	color := make(map[string]int, len(roots))
	for _, root := range roots {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{node: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := children[top.node]
			if top.next == len(kids) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := kids[top.next]
			top.next++
			switch color[child] {
			case gray:
				return true
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			}
		}
	}
	return false
}
