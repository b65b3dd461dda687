package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree"
)

// Page is the PDF page geometry in millimetres.
type Page struct {
	Width, Height float64
	Margin        float64
}

// PageFor returns the page described by a project's settings. Margins that
// would leave no printable area are clamped.
func PageFor(s tree.TreeSettings) Page {
	w, h := s.PageDimensions()
	margin := max(s.MarginMM, 0)
	if limit := min(w, h)/2 - 1; margin > limit {
		margin = limit
	}
	return Page{Width: w, Height: h, Margin: margin}
}

// pdfArgs builds the rsvg-convert arguments that place the diagram inside
// the page margins, scaled to fit with its aspect ratio kept.
func pdfArgs(page Page) []string {
	mm := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "mm" }
	return []string{
		"-f", "pdf",
		"--page-width", mm(page.Width),
		"--page-height", mm(page.Height),
		"--left", mm(page.Margin),
		"--top", mm(page.Margin),
		"--width", mm(page.Width - 2*page.Margin),
		"--height", mm(page.Height - 2*page.Margin),
		"--keep-aspect-ratio",
	}
}

// ToPDF converts SVG bytes to a one-page PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte, page Page) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"PDF export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	cmd := exec.CommandContext(ctx, "rsvg-convert", pdfArgs(page)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}

// PDF renders dot to SVG through the cache and converts it to PDF on page.
// The returned flag reports whether the SVG came from the cache.
func (r *Renderer) PDF(ctx context.Context, dot string, page Page) ([]byte, bool, error) {
	svg, hit, err := r.SVG(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	convert := r.convert
	if convert == nil {
		convert = ToPDF
	}
	pdf, err := convert(ctx, svg, page)
	if err != nil {
		return nil, hit, err
	}
	return pdf, hit, nil
}
