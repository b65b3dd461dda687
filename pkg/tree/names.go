package tree

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/geneatree/geneatree/pkg/errors"
)

// DateLayout is the canonical layout for full calendar dates (dd.mm.yyyy).
const DateLayout = "02.01.2006"

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// dateLayouts are tried in order when parsing date text.
var dateLayouts = []string{DateLayout, "2006-01-02"}

// ShortName derives a card label from a full name: the first two words,
// treating commas as separators. It returns "" for a blank name.
//
//	ShortName("Иванов Иван Петрович") == "Иванов Иван"
func ShortName(fullName string) string {
	parts := strings.Fields(strings.ReplaceAll(fullName, ",", " "))
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " ")
}

// NormalizeDate cleans user-entered date text.
//
// Underscores (left over from input masks) and surrounding spaces are
// removed. Text without any digit normalizes to "". A bare four-digit year is
// returned as-is; dd.mm.yyyy and yyyy-mm-dd dates are returned as dd.mm.yyyy.
// Anything else is an INVALID_INPUT error.
func NormalizeDate(text string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(text, "_", ""))
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return "", nil
	}
	if yearPattern.MatchString(s) {
		return s, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "date %q must be dd.mm.yyyy, yyyy-mm-dd or yyyy", s)
}
