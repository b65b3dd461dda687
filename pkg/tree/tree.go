package tree

import (
	"slices"

	"github.com/geneatree/geneatree/pkg/errors"
)

// CurrentVersion is the project schema version written by this package.
const CurrentVersion = 1

// DefaultDisplayName is the label given to a person created without one.
const DefaultDisplayName = "Новый человек"

// Metadata stores arbitrary key-value pairs attached to a person (style) or a
// relationship (meta). The core never interprets it; values are preserved
// verbatim through [Encode] and [Decode]. Metadata maps are never nil on
// objects produced by this package.
type Metadata map[string]any

// RelationType distinguishes parent edges from spouse edges.
type RelationType string

const (
	// RelParent is a directed edge from parent (From) to child (To).
	RelParent RelationType = "parent"
	// RelSpouse is an undirected edge between two partners.
	RelSpouse RelationType = "spouse"
)

// IsValid reports whether t is one of the known relationship types.
func (t RelationType) IsValid() bool {
	return t == RelParent || t == RelSpouse
}

// ParseRelationType converts untrusted input into a RelationType.
// Any value other than "parent" or "spouse" is a DECODE_ERROR.
func ParseRelationType(s string) (RelationType, error) {
	t := RelationType(s)
	if !t.IsValid() {
		return "", errors.New(errors.ErrCodeDecode, "unsupported relationship type: %q", s)
	}
	return t, nil
}

// Position is the top-left anchor of a person's card in scene coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Person is a node in the family graph.
//
// Optional text fields are nil when absent. Birth and death dates are opaque
// strings (a bare year or a calendar date); see [NormalizeDate] for the
// accepted input forms.
type Person struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	FullName    *string  `json:"full_name"`
	Gender      *string  `json:"gender"`
	BirthDate   *string  `json:"birth_date"`
	DeathDate   *string  `json:"death_date"`
	Note        *string  `json:"note"`
	PhotoPath   *string  `json:"photo_path"`
	Pos         Position `json:"pos"`
	Style       Metadata `json:"style"`
}

// NewPerson creates a person with a fresh id from gen.
// An empty displayName is replaced by [DefaultDisplayName].
func NewPerson(gen IDGenerator, displayName string) *Person {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return &Person{ID: gen.next(), DisplayName: displayName, Style: Metadata{}}
}

// Name returns the best human-readable label: the display name, or the full
// name when the display name is blank.
func (p *Person) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return Value(p.FullName)
}

// Relationship is an edge between two people.
type Relationship struct {
	ID     string       `json:"id"`
	Type   RelationType `json:"type"`
	FromID string       `json:"from_id"`
	ToID   string       `json:"to_id"`
	Meta   Metadata     `json:"meta"`
}

// NewRelationship creates a relationship with a fresh id from gen.
func NewRelationship(gen IDGenerator, t RelationType, fromID, toID string) *Relationship {
	return &Relationship{ID: gen.next(), Type: t, FromID: fromID, ToID: toID, Meta: Metadata{}}
}

// Involves reports whether personID is either endpoint of r.
func (r *Relationship) Involves(personID string) bool {
	return r.FromID == personID || r.ToID == personID
}

// SameEdge reports whether r and o connect the same people with the same
// type. Spouse edges compare as unordered pairs, parent edges as ordered
// pairs. Ids and metadata are ignored.
func (r *Relationship) SameEdge(o *Relationship) bool {
	if r.Type != o.Type {
		return false
	}
	if r.FromID == o.FromID && r.ToID == o.ToID {
		return true
	}
	return r.Type == RelSpouse && r.FromID == o.ToID && r.ToID == o.FromID
}

// TreeProject is the aggregate root of a family tree.
//
// The zero value is usable but carries version 0 and zero settings; use
// [New] to get a project with defaults.
type TreeProject struct {
	ProjectVersion int               `json:"project_version"`
	People         []*Person         `json:"people"`
	Relationships  []*Relationship   `json:"relationships"`
	Settings       TreeSettings      `json:"settings"`
	AssetsManifest map[string]string `json:"assets_manifest"`
}

// New returns an empty project with the current schema version and default
// settings.
func New() *TreeProject {
	return &TreeProject{
		ProjectVersion: CurrentVersion,
		Settings:       DefaultSettings(),
		AssetsManifest: map[string]string{},
	}
}

// PeopleByID returns a map from id to person for O(1) lookups.
// When ids are duplicated, the last person wins.
func (p *TreeProject) PeopleByID() map[string]*Person {
	m := make(map[string]*Person, len(p.People))
	for _, person := range p.People {
		m[person.ID] = person
	}
	return m
}

// Person returns the person with the given id, or nil if there is none.
// Like [TreeProject.PeopleByID], the last of several duplicates wins.
func (p *TreeProject) Person(id string) *Person {
	for i := len(p.People) - 1; i >= 0; i-- {
		if p.People[i].ID == id {
			return p.People[i]
		}
	}
	return nil
}

// Relationship returns the relationship with the given id, or nil.
func (p *TreeProject) Relationship(id string) *Relationship {
	for _, r := range p.Relationships {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// AddPerson appends person to the project. It does not check for duplicate
// ids; the validator reports those.
func (p *TreeProject) AddPerson(person *Person) {
	p.People = append(p.People, person)
}

// RemovePerson removes the person with the given id together with every
// relationship that references it. Removing an unknown id is a no-op.
func (p *TreeProject) RemovePerson(id string) {
	p.People = slices.DeleteFunc(p.People, func(person *Person) bool { return person.ID == id })
	p.Relationships = slices.DeleteFunc(p.Relationships, func(r *Relationship) bool { return r.Involves(id) })
}

// HasRelationship reports whether an edge equivalent to r already exists
// (see [Relationship.SameEdge]).
func (p *TreeProject) HasRelationship(r *Relationship) bool {
	return slices.ContainsFunc(p.Relationships, r.SameEdge)
}

// AddRelationship appends r unless an equivalent edge already exists.
// It reports whether r was added.
func (p *TreeProject) AddRelationship(r *Relationship) bool {
	if p.HasRelationship(r) {
		return false
	}
	p.Relationships = append(p.Relationships, r)
	return true
}

// RemoveRelationship deletes the relationship with the given id.
// Removing an unknown id is a no-op.
func (p *TreeProject) RemoveRelationship(id string) {
	p.Relationships = slices.DeleteFunc(p.Relationships, func(r *Relationship) bool { return r.ID == id })
}

// ParentsOf returns the ids of the parents of personID in edge order.
func (p *TreeProject) ParentsOf(personID string) []string {
	var ids []string
	for _, r := range p.Relationships {
		if r.Type == RelParent && r.ToID == personID {
			ids = append(ids, r.FromID)
		}
	}
	return ids
}

// ChildrenOf returns the ids of the children of personID in edge order.
func (p *TreeProject) ChildrenOf(personID string) []string {
	var ids []string
	for _, r := range p.Relationships {
		if r.Type == RelParent && r.FromID == personID {
			ids = append(ids, r.ToID)
		}
	}
	return ids
}

// SpousesOf returns the ids of the partners of personID in edge order.
func (p *TreeProject) SpousesOf(personID string) []string {
	var ids []string
	for _, r := range p.Relationships {
		if r.Type != RelSpouse {
			continue
		}
		switch personID {
		case r.FromID:
			ids = append(ids, r.ToID)
		case r.ToID:
			ids = append(ids, r.FromID)
		}
	}
	return ids
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional string, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
