package tree

import (
	"strings"

	"github.com/geneatree/geneatree/pkg/errors"
)

// PersonEdit is a partial update of a [Person]. Nil fields are left alone;
// an empty string clears an optional field.
type PersonEdit struct {
	DisplayName *string
	FullName    *string
	Gender      *string
	BirthDate   *string
	DeathDate   *string
	Note        *string
	PhotoPath   *string
}

// Apply normalizes the dates in e and writes the set fields to p. When an
// error is returned p is unchanged.
func (e PersonEdit) Apply(p *Person) error {
	if e.DisplayName != nil && strings.TrimSpace(*e.DisplayName) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "display name can't be empty")
	}
	birth, err := normalizeOptionalDate(e.BirthDate)
	if err != nil {
		return err
	}
	death, err := normalizeOptionalDate(e.DeathDate)
	if err != nil {
		return err
	}

	if e.DisplayName != nil {
		p.DisplayName = *e.DisplayName
	}
	set := func(dst **string, v *string) {
		if v != nil {
			*dst = Optional(*v)
		}
	}
	set(&p.FullName, e.FullName)
	set(&p.Gender, e.Gender)
	set(&p.BirthDate, birth)
	set(&p.DeathDate, death)
	set(&p.Note, e.Note)
	set(&p.PhotoPath, e.PhotoPath)
	return nil
}

func normalizeOptionalDate(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	d, err := NormalizeDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
