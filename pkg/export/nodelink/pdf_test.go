package nodelink

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/geneatree/geneatree/pkg/cache"
	"github.com/geneatree/geneatree/pkg/tree"
)

func TestPageFor(t *testing.T) {
	tests := []struct {
		name     string
		settings tree.TreeSettings
		want     Page
	}{
		{"defaults", tree.DefaultSettings(), Page{Width: 210, Height: 297, Margin: 10}},
		{"a3 landscape", tree.TreeSettings{PageSize: "a3", Orientation: "landscape", MarginMM: 15}, Page{Width: 420, Height: 297, Margin: 15}},
		{"negative margin", tree.TreeSettings{PageSize: "A4", MarginMM: -5}, Page{Width: 210, Height: 297}},
		{"margin too wide", tree.TreeSettings{PageSize: "A4", MarginMM: 500}, Page{Width: 210, Height: 297, Margin: 104}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageFor(tt.settings); got != tt.want {
				t.Errorf("PageFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPDFArgs(t *testing.T) {
	got := strings.Join(pdfArgs(Page{Width: 297, Height: 210, Margin: 10}), " ")
	want := "-f pdf --page-width 297mm --page-height 210mm --left 10mm --top 10mm --width 277mm --height 190mm --keep-aspect-ratio"
	if got != want {
		t.Errorf("pdfArgs() = %q, want %q", got, want)
	}
}

func TestRendererPDF(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(c)
	r.render = func(context.Context, string) ([]byte, error) { return []byte("<svg/>"), nil }

	var gotPage Page
	r.convert = func(_ context.Context, svg []byte, page Page) ([]byte, error) {
		gotPage = page
		return append([]byte("%PDF "), svg...), nil
	}

	page := PageFor(tree.DefaultSettings())
	ctx := context.Background()
	pdf, hit, err := r.PDF(ctx, "digraph {}", page)
	if err != nil || hit {
		t.Fatalf("first PDF() = hit %v, err %v", hit, err)
	}
	if string(pdf) != "%PDF <svg/>" {
		t.Errorf("PDF() = %q", pdf)
	}
	if gotPage != page {
		t.Errorf("converter got page %+v, want %+v", gotPage, page)
	}
	if _, hit, _ := r.PDF(ctx, "digraph {}", page); !hit {
		t.Error("second PDF() should reuse the cached SVG")
	}
}

func TestToPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	ctx := context.Background()
	svg, err := RenderSVG(ctx, ToDOT(familyProject(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	pdf, err := ToPDF(ctx, svg, PageFor(tree.DefaultSettings()))
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("ToPDF() output is not a PDF: %.20q", pdf)
	}
}
