package tree

import "strings"

// Page sizes understood by export collaborators.
const (
	PageA4     = "A4"
	PageA3     = "A3"
	PageLetter = "LETTER"
)

// Page orientations.
const (
	Portrait  = "portrait"
	Landscape = "landscape"
)

// TreeSettings holds page and layout configuration for a project.
// Spacing and card sizes are in scene units; MarginMM is in millimetres.
type TreeSettings struct {
	PageSize          string  `json:"page_size" toml:"page_size"`
	Orientation       string  `json:"orientation" toml:"orientation"`
	MarginMM          float64 `json:"margin_mm" toml:"margin_mm"`
	CardWidth         float64 `json:"card_width" toml:"card_width"`
	CardHeight        float64 `json:"card_height" toml:"card_height"`
	GenerationSpacing float64 `json:"generation_spacing" toml:"generation_spacing"`
	SiblingSpacing    float64 `json:"sibling_spacing" toml:"sibling_spacing"`
}

// DefaultSettings returns A4 portrait, 10mm margins, 190x110 cards,
// 190 between generations and 230 between siblings.
func DefaultSettings() TreeSettings {
	return TreeSettings{
		PageSize:          PageA4,
		Orientation:       Portrait,
		MarginMM:          10,
		CardWidth:         190,
		CardHeight:        110,
		GenerationSpacing: 190,
		SiblingSpacing:    230,
	}
}

// NormalizePageSize maps a free-form page size to one of the supported
// sizes, falling back to A4 for anything unknown.
func NormalizePageSize(s string) string {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case PageA4, PageA3, PageLetter:
		return v
	}
	return PageA4
}

// NormalizeOrientation returns Landscape for any casing of "landscape" and
// Portrait otherwise.
func NormalizeOrientation(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), Landscape) {
		return Landscape
	}
	return Portrait
}

// pageSizesMM holds portrait width and height in millimetres.
var pageSizesMM = map[string][2]float64{
	PageA4:     {210, 297},
	PageA3:     {297, 420},
	PageLetter: {215.9, 279.4},
}

// PageDimensions returns the page width and height in millimetres for the
// normalized page size and orientation. Landscape swaps the two.
func (s TreeSettings) PageDimensions() (width, height float64) {
	dims := pageSizesMM[NormalizePageSize(s.PageSize)]
	if NormalizeOrientation(s.Orientation) == Landscape {
		return dims[1], dims[0]
	}
	return dims[0], dims[1]
}
