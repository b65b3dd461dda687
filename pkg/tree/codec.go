package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"

	"github.com/geneatree/geneatree/pkg/errors"
)

// Encode converts a project to its plain nested-map form, the shape written
// to disk as JSON. Empty optional strings encode as nil; nil metadata encodes
// as an empty map.
func Encode(p *TreeProject) map[string]any {
	people := make([]any, len(p.People))
	for i, person := range p.People {
		people[i] = encodePerson(person)
	}
	rels := make([]any, len(p.Relationships))
	for i, r := range p.Relationships {
		rels[i] = encodeRelationship(r)
	}
	manifest := make(map[string]any, len(p.AssetsManifest))
	for id, path := range p.AssetsManifest {
		manifest[id] = path
	}
	return map[string]any{
		"project_version": p.ProjectVersion,
		"people":          people,
		"relationships":   rels,
		"settings":        encodeSettings(p.Settings),
		"assets_manifest": manifest,
	}
}

func encodePerson(p *Person) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"display_name": p.DisplayName,
		"full_name":    encodeOptional(p.FullName),
		"gender":       encodeOptional(p.Gender),
		"birth_date":   encodeOptional(p.BirthDate),
		"death_date":   encodeOptional(p.DeathDate),
		"note":         encodeOptional(p.Note),
		"photo_path":   encodeOptional(p.PhotoPath),
		"pos":          map[string]any{"x": p.Pos.X, "y": p.Pos.Y},
		"style":        cloneMeta(p.Style),
	}
}

func encodeRelationship(r *Relationship) map[string]any {
	return map[string]any{
		"id":      r.ID,
		"type":    string(r.Type),
		"from_id": r.FromID,
		"to_id":   r.ToID,
		"meta":    cloneMeta(r.Meta),
	}
}

func encodeSettings(s TreeSettings) map[string]any {
	return map[string]any{
		"page_size":          s.PageSize,
		"orientation":        s.Orientation,
		"margin_mm":          s.MarginMM,
		"card_width":         s.CardWidth,
		"card_height":        s.CardHeight,
		"generation_spacing": s.GenerationSpacing,
		"sibling_spacing":    s.SiblingSpacing,
	}
}

func encodeOptional(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// Decode builds a project from its nested-map form.
//
// Missing fields take their documented defaults, and people or relationships
// without an id get a fresh one from gen (nil means [NewID]). Decode fails
// with a DECODE_ERROR when a field has an unusable shape (for example a
// person that is not an object) or a relationship has an unknown type.
func Decode(raw map[string]any, gen IDGenerator) (*TreeProject, error) {
	version, err := intField(raw, "project_version", CurrentVersion)
	if err != nil {
		return nil, err
	}
	p := &TreeProject{ProjectVersion: version}

	people, err := listField(raw, "people")
	if err != nil {
		return nil, err
	}
	for i, item := range people {
		person, err := decodePerson(item, gen)
		if err != nil {
			return nil, fmt.Errorf("people[%d]: %w", i, err)
		}
		p.People = append(p.People, person)
	}

	rels, err := listField(raw, "relationships")
	if err != nil {
		return nil, err
	}
	for i, item := range rels {
		r, err := decodeRelationship(item, gen)
		if err != nil {
			return nil, fmt.Errorf("relationships[%d]: %w", i, err)
		}
		p.Relationships = append(p.Relationships, r)
	}

	if p.Settings, err = decodeSettings(raw["settings"]); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	manifest, err := mapField(raw, "assets_manifest")
	if err != nil {
		return nil, err
	}
	p.AssetsManifest = make(map[string]string, len(manifest))
	for id, v := range manifest {
		p.AssetsManifest[id] = fmt.Sprint(v)
	}
	return p, nil
}

func decodePerson(item any, gen IDGenerator) (*Person, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeDecode, "person must be an object, got %T", item)
	}
	p := &Person{
		ID:          idField(m, "id", gen),
		DisplayName: stringOr(m["display_name"], DefaultDisplayName),
	}
	optionals := []struct {
		key string
		dst **string
	}{
		{"full_name", &p.FullName},
		{"gender", &p.Gender},
		{"birth_date", &p.BirthDate},
		{"death_date", &p.DeathDate},
		{"note", &p.Note},
		{"photo_path", &p.PhotoPath},
	}
	for _, o := range optionals {
		v, err := optionalField(m, o.key)
		if err != nil {
			return nil, fmt.Errorf("person %s: %w", p.ID, err)
		}
		*o.dst = v
	}

	pos, err := mapField(m, "pos")
	if err != nil {
		return nil, fmt.Errorf("person %s: %w", p.ID, err)
	}
	if p.Pos.X, err = floatField(pos, "x", 0); err != nil {
		return nil, fmt.Errorf("person %s: pos: %w", p.ID, err)
	}
	if p.Pos.Y, err = floatField(pos, "y", 0); err != nil {
		return nil, fmt.Errorf("person %s: pos: %w", p.ID, err)
	}

	style, err := mapField(m, "style")
	if err != nil {
		return nil, fmt.Errorf("person %s: %w", p.ID, err)
	}
	p.Style = Metadata(style)
	return p, nil
}

func decodeRelationship(item any, gen IDGenerator) (*Relationship, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeDecode, "relationship must be an object, got %T", item)
	}
	t := RelParent
	if v, ok := m["type"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeDecode, "relationship type must be a string, got %v", v)
		}
		var err error
		if t, err = ParseRelationType(s); err != nil {
			return nil, err
		}
	}
	meta, err := mapField(m, "meta")
	if err != nil {
		return nil, err
	}
	return &Relationship{
		ID:     idField(m, "id", gen),
		Type:   t,
		FromID: stringOr(m["from_id"], ""),
		ToID:   stringOr(m["to_id"], ""),
		Meta:   Metadata(meta),
	}, nil
}

func decodeSettings(v any) (TreeSettings, error) {
	s := DefaultSettings()
	if v == nil {
		return s, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return s, errors.New(errors.ErrCodeDecode, "settings must be an object, got %T", v)
	}
	if len(m) == 0 {
		return s, nil
	}
	s.PageSize = stringOr(m["page_size"], s.PageSize)
	s.Orientation = stringOr(m["orientation"], s.Orientation)
	floats := []struct {
		key string
		dst *float64
	}{
		{"margin_mm", &s.MarginMM},
		{"card_width", &s.CardWidth},
		{"card_height", &s.CardHeight},
		{"generation_spacing", &s.GenerationSpacing},
		{"sibling_spacing", &s.SiblingSpacing},
	}
	for _, f := range floats {
		val, err := floatField(m, f.key, *f.dst)
		if err != nil {
			return s, err
		}
		*f.dst = val
	}
	return s, nil
}

// MarshalJSON encodes the project with a stable field order. Nil slices and
// maps are written as empty collections.
func (p TreeProject) MarshalJSON() ([]byte, error) {
	type doc TreeProject
	d := doc(p)
	if d.People == nil {
		d.People = []*Person{}
	}
	if d.Relationships == nil {
		d.Relationships = []*Relationship{}
	}
	if d.AssetsManifest == nil {
		d.AssetsManifest = map[string]string{}
	}
	return marshalNoEscape(d)
}

// UnmarshalJSON decodes a project document through [Decode] so that the
// usual defaults apply. Numbers inside style and meta are kept as
// json.Number to preserve their exact text.
func (p *TreeProject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return errors.New(errors.ErrCodeDecode, "project must be an object, got %T", raw)
	}
	decoded, err := Decode(m, nil)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

// MarshalJSON writes empty optional strings as null and nil style as {}.
func (p Person) MarshalJSON() ([]byte, error) {
	type doc Person
	d := doc(p)
	for _, s := range []**string{&d.FullName, &d.Gender, &d.BirthDate, &d.DeathDate, &d.Note, &d.PhotoPath} {
		*s = Optional(Value(*s))
	}
	if d.Style == nil {
		d.Style = Metadata{}
	}
	return marshalNoEscape(d)
}

// MarshalJSON writes nil meta as {}.
func (r Relationship) MarshalJSON() ([]byte, error) {
	type doc Relationship
	d := doc(r)
	if d.Meta == nil {
		d.Meta = Metadata{}
	}
	return marshalNoEscape(d)
}

// marshalNoEscape is json.Marshal without HTML escaping, so names such as
// "Smith & Sons" stay readable in the project file.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// =============================================================================
// Field helpers
// =============================================================================

func idField(m map[string]any, key string, gen IDGenerator) string {
	if s := stringOr(m[key], ""); s != "" {
		return s
	}
	return gen.next()
}

// stringOr renders v as a string, returning def for nil, empty strings,
// false and zero, which mirrors how the file format treats falsy values.
func stringOr(v any, def string) string {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		if x == "" {
			return def
		}
		return x
	case bool:
		if !x {
			return def
		}
	case float64:
		if x == 0 {
			return def
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return def
		}
	}
	return fmt.Sprint(v)
}

func optionalField(m map[string]any, key string) (*string, error) {
	switch x := m[key].(type) {
	case nil:
		return nil, nil
	case string:
		return Optional(x), nil
	case map[string]any, []any:
		return nil, errors.New(errors.ErrCodeDecode, "%s must be a string, got %T", key, x)
	case float64:
		return Optional(strconv.FormatFloat(x, 'f', -1, 64)), nil
	default:
		return Optional(fmt.Sprint(x)), nil
	}
}

func listField(m map[string]any, key string) ([]any, error) {
	switch x := m[key].(type) {
	case nil:
		return nil, nil
	case []any:
		return x, nil
	default:
		return nil, errors.New(errors.ErrCodeDecode, "%s must be a list, got %T", key, x)
	}
}

// mapField returns a shallow copy of the object at key, or an empty map when
// the key is missing or null.
func mapField(m map[string]any, key string) (map[string]any, error) {
	switch x := m[key].(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return maps.Clone(x), nil
	case Metadata:
		return maps.Clone(map[string]any(x)), nil
	default:
		return nil, errors.New(errors.ErrCodeDecode, "%s must be an object, got %T", key, x)
	}
}

func floatField(m map[string]any, key string, def float64) (float64, error) {
	switch x := m[key].(type) {
	case nil:
		return def, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeDecode, err, "%s must be a number", key)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeDecode, err, "%s must be a number", key)
		}
		return f, nil
	default:
		return 0, errors.New(errors.ErrCodeDecode, "%s must be a number, got %T", key, x)
	}
}

func intField(m map[string]any, key string, def int) (int, error) {
	f, err := floatField(m, key, float64(def))
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func cloneMeta(m Metadata) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(map[string]any(m))
}
