package validate

import (
	stderrors "errors"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree"
)

func person(id, name string) *tree.Person {
	return &tree.Person{ID: id, DisplayName: name, Style: tree.Metadata{}}
}

func rel(id string, t tree.RelationType, from, to string) *tree.Relationship {
	return &tree.Relationship{ID: id, Type: t, FromID: from, ToID: to, Meta: tree.Metadata{}}
}

func project(people []*tree.Person, rels ...*tree.Relationship) *tree.TreeProject {
	p := tree.New()
	p.People = people
	p.Relationships = rels
	return p
}

func containsProblem(problems []string, substr string) bool {
	return slices.ContainsFunc(problems, func(s string) bool { return strings.Contains(s, substr) })
}

func TestProject_Valid(t *testing.T) {
	p := project(
		[]*tree.Person{person("gp", "Grandparent"), person("pa", "Parent A"), person("pb", "Parent B"), person("c", "Child")},
		rel("r1", tree.RelParent, "gp", "pa"),
		rel("r2", tree.RelParent, "gp", "pb"),
		rel("r3", tree.RelSpouse, "pa", "pb"),
		rel("r4", tree.RelParent, "pa", "c"),
		rel("r5", tree.RelParent, "pb", "c"),
	)

	if problems := Project(p); problems != nil {
		t.Errorf("Project() = %v, want nil", problems)
	}
	if err := AssertValid(p); err != nil {
		t.Errorf("AssertValid() = %v, want nil", err)
	}
}

func TestProject_EmptyProjectIsValid(t *testing.T) {
	if problems := Project(tree.New()); problems != nil {
		t.Errorf("Project() = %v, want nil", problems)
	}
}

func TestProject_Problems(t *testing.T) {
	tests := []struct {
		name    string
		project *tree.TreeProject
		want    string
	}{
		{
			name:    "missing name",
			project: project([]*tree.Person{person("a", "  ")}),
			want:    "Person a has no display_name or full_name",
		},
		{
			name:    "duplicate person ids",
			project: project([]*tree.Person{person("b", "B"), person("a", "A"), person("b", "B2"), person("a", "A2")}),
			want:    "Duplicate person ids: [a b]",
		},
		{
			name: "duplicate relationship ids",
			project: project([]*tree.Person{person("a", "A"), person("b", "B")},
				rel("r", tree.RelParent, "a", "b"),
				rel("r", tree.RelSpouse, "a", "b")),
			want: "Duplicate relationship ids: [r]",
		},
		{
			name: "unknown type",
			project: project([]*tree.Person{person("a", "A"), person("b", "B")},
				rel("r", "sibling", "a", "b")),
			want: "Unknown relationship type: r:sibling",
		},
		{
			name: "missing from",
			project: project([]*tree.Person{person("b", "B")},
				rel("r", tree.RelParent, "ghost", "b")),
			want: "Relationship r references missing from_id=ghost",
		},
		{
			name: "missing to",
			project: project([]*tree.Person{person("a", "A")},
				rel("r", tree.RelParent, "a", "ghost")),
			want: "Relationship r references missing to_id=ghost",
		},
		{
			name: "self link",
			project: project([]*tree.Person{person("a", "A")},
				rel("r", tree.RelSpouse, "a", "a")),
			want: "Relationship r links person to itself",
		},
		{
			name: "duplicate parent",
			project: project([]*tree.Person{person("a", "A"), person("b", "B")},
				rel("r1", tree.RelParent, "a", "b"),
				rel("r2", tree.RelParent, "a", "b")),
			want: "Duplicate parent relationship: a->b",
		},
		{
			name: "duplicate spouse reversed",
			project: project([]*tree.Person{person("a", "A"), person("b", "B")},
				rel("r1", tree.RelSpouse, "b", "a"),
				rel("r2", tree.RelSpouse, "a", "b")),
			want: "Duplicate spouse relationship: a<->b",
		},
		{
			name: "two-node cycle",
			project: project([]*tree.Person{person("a", "A"), person("b", "B")},
				rel("r1", tree.RelParent, "a", "b"),
				rel("r2", tree.RelParent, "b", "a")),
			want: "Parent relationships contain a cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Project(tt.project)
			if !slices.Contains(problems, tt.want) {
				t.Errorf("Project() = %q, want it to contain %q", problems, tt.want)
			}
		})
	}
}

func TestProject_FullNameIsEnough(t *testing.T) {
	a := person("a", "")
	a.FullName = tree.Optional("Анна Иванова")
	if problems := Project(project([]*tree.Person{a})); problems != nil {
		t.Errorf("Project() = %v, want nil", problems)
	}
}

func TestProject_DeathDateOptional(t *testing.T) {
	a := person("a", "A")
	a.BirthDate = tree.Optional("1931")
	a.DeathDate = nil
	if problems := Project(project([]*tree.Person{a})); problems != nil {
		t.Errorf("Project() = %v, want nil", problems)
	}
}

func TestProject_ParallelParentsAreNotDuplicates(t *testing.T) {
	p := project([]*tree.Person{person("a", "A"), person("b", "B")},
		rel("r1", tree.RelParent, "a", "b"),
		rel("r2", tree.RelSpouse, "a", "b"),
	)
	if problems := Project(p); problems != nil {
		t.Errorf("Project() = %v, want nil", problems)
	}
}

func TestProject_Cycles(t *testing.T) {
	tests := []struct {
		name      string
		people    []string
		edges     [][2]string
		wantCycle bool
	}{
		{"chain", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, false},
		{"diamond", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, false},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, true},
		// The first root reaches nothing; the cycle lives in a separate component.
		{"detached cycle", []string{"x", "a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, true},
		// A cycle entered from a node that is not part of it.
		{"tail into cycle", []string{"t", "a", "b", "c"}, [][2]string{{"t", "a"}, {"a", "b"}, {"b", "c"}, {"c", "b"}}, true},
		// Edges through an unknown person are ignored for cycle detection.
		{"unresolved edge", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "ghost"}, {"ghost", "a"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var people []*tree.Person
			for _, id := range tt.people {
				people = append(people, person(id, strings.ToUpper(id)))
			}
			var rels []*tree.Relationship
			for i, e := range tt.edges {
				rels = append(rels, rel("r"+string(rune('0'+i)), tree.RelParent, e[0], e[1]))
			}

			got := containsProblem(Project(project(people, rels...)), "cycle")
			if got != tt.wantCycle {
				t.Errorf("cycle reported = %v, want %v", got, tt.wantCycle)
			}
		})
	}
}

func TestProject_DeepChainDoesNotRecurse(t *testing.T) {
	const n = 100_000
	people := make([]*tree.Person, n)
	rels := make([]*tree.Relationship, 0, n)
	for i := range people {
		id := "p" + strconv.Itoa(i)
		people[i] = person(id, id)
		if i > 0 {
			rels = append(rels, rel("r"+strconv.Itoa(i), tree.RelParent, people[i-1].ID, id))
		}
	}
	if problems := Project(project(people, rels...)); problems != nil {
		t.Errorf("Project() = %v, want nil", problems[:1])
	}
}

func TestProject_AccumulatesProblems(t *testing.T) {
	p := project([]*tree.Person{person("a", ""), person("a", "A"), person("b", "B")},
		rel("r1", tree.RelParent, "a", "b"),
		rel("r2", tree.RelParent, "b", "a"),
		rel("r3", tree.RelSpouse, "b", "ghost"),
	)

	problems := Project(p)
	for _, want := range []string{"Duplicate person ids", "no display_name", "missing to_id=ghost", "cycle"} {
		if !containsProblem(problems, want) {
			t.Errorf("Project() = %q, missing %q", problems, want)
		}
	}
}

func TestAssertValid(t *testing.T) {
	p := project([]*tree.Person{person("a", "A")},
		rel("r1", tree.RelParent, "a", "a"),
	)

	err := AssertValid(p)
	if err == nil {
		t.Fatal("AssertValid() = nil, want error")
	}

	var verr *ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("AssertValid() error type = %T, want *ValidationError", err)
	}
	if !strings.HasPrefix(err.Error(), "invalid project data:\n- ") {
		t.Errorf("Error() = %q", err.Error())
	}
	if len(verr.Problems) == 0 {
		t.Error("Problems is empty")
	}
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("errors.Is(err, VALIDATION_ERROR) = false")
	}
}
