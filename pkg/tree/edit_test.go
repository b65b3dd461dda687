package tree

import (
	"testing"

	"github.com/geneatree/geneatree/pkg/errors"
)

func TestPersonEditApply(t *testing.T) {
	p := &Person{
		ID:          "a",
		DisplayName: "Anna",
		Gender:      Optional("F"),
		BirthDate:   Optional("1950"),
		Note:        Optional("keep me"),
	}
	edit := PersonEdit{
		DisplayName: Optional("Anna K."),
		BirthDate:   Optional("1950-03-07"),
		DeathDate:   Optional("2010"),
		Gender:      new(string),
	}
	if err := edit.Apply(p); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if p.DisplayName != "Anna K." {
		t.Errorf("DisplayName = %q", p.DisplayName)
	}
	if Value(p.BirthDate) != "07.03.1950" || Value(p.DeathDate) != "2010" {
		t.Errorf("dates = %q, %q", Value(p.BirthDate), Value(p.DeathDate))
	}
	if p.Gender != nil {
		t.Errorf("Gender = %q, want cleared", *p.Gender)
	}
	if Value(p.Note) != "keep me" {
		t.Errorf("Note = %q, want untouched", Value(p.Note))
	}
}

func TestPersonEditRejects(t *testing.T) {
	tests := []struct {
		name string
		edit PersonEdit
	}{
		{"empty display name", PersonEdit{DisplayName: Optional(" "), Note: Optional("x")}},
		{"bad birth date", PersonEdit{Note: Optional("x"), BirthDate: Optional("31.02.1950")}},
		{"bad death date", PersonEdit{Note: Optional("x"), DeathDate: Optional("soon-ish 2")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Person{ID: "a", DisplayName: "Anna"}
			err := tt.edit.Apply(p)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("Apply() error = %v, want INVALID_INPUT", err)
			}
			if p.DisplayName != "Anna" || p.Note != nil {
				t.Errorf("person changed on error: %+v", p)
			}
		})
	}
}
