package region

import (
	"strings"
	"testing"
)

func TestFigureLabels_WithCaption(t *testing.T) {
	pageText := strings.Join([]string{
		"body text above",
		"FIGURE 307.1 HAZARDOUS MATERIALS",
		"STORAGE DIAGRAM",
		"307.2 Next section begins here.",
	}, "\n")
	labels := FigureLabels(pageText)
	if len(labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(labels))
	}
	if labels[0].Number != "307.1" {
		t.Errorf("expected number 307.1, got %q", labels[0].Number)
	}
	if labels[0].Caption != "HAZARDOUS MATERIALS STORAGE DIAGRAM" {
		t.Errorf("unexpected caption %q", labels[0].Caption)
	}
}

func TestFigureLabels_CaptionStopsAtProse(t *testing.T) {
	pageText := strings.Join([]string{
		"FIGURE 502.1",
		"GRADE PLANE DETERMINATION",
		"The grade plane shall be established as follows.",
	}, "\n")
	labels := FigureLabels(pageText)
	if len(labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(labels))
	}
	if labels[0].Caption != "GRADE PLANE DETERMINATION" {
		t.Errorf("expected prose excluded from caption, got %q", labels[0].Caption)
	}
}

func TestFigureLabels_MultipleInOrder(t *testing.T) {
	pageText := "FIGURE 705.8(1)\ntext between\nFIGURE 705.8(2)"
	labels := FigureLabels(pageText)
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Number != "705.8(1)" || labels[1].Number != "705.8(2)" {
		t.Errorf("unexpected numbers %q %q", labels[0].Number, labels[1].Number)
	}
}

func TestResolveFigures_PairsNthImageWithNthLabel(t *testing.T) {
	r := NewResolver(nil)
	regions := PageRegions{Images: []ImageRef{
		{Ref: "img1", Width: 400, Height: 300},
		{Ref: "img2", Width: 200, Height: 150},
	}}
	figures := r.ResolveFigures(7, "FIGURE 705.8(1)\nFIGURE 705.8(2)", regions)
	if len(figures) != 2 {
		t.Fatalf("expected 2 figures, got %d", len(figures))
	}
	// Parentheses slug to underscores; trailing runs trim.
	if figures[0].ID != "figure_705.8_1" {
		t.Errorf("unexpected first ID %q", figures[0].ID)
	}
	if figures[0].Image.Ref != "img1" || figures[1].Image.Ref != "img2" {
		t.Errorf("expected positional pairing, got %+v", figures)
	}
}

func TestResolveFigures_DuplicateImageRefSkipped(t *testing.T) {
	r := NewResolver(nil)
	regions := PageRegions{Images: []ImageRef{{Ref: "logo"}}}

	first := r.ResolveFigures(1, "FIGURE 101.1", regions)
	if len(first) != 1 {
		t.Fatalf("expected 1 figure on first page, got %d", len(first))
	}
	second := r.ResolveFigures(2, "FIGURE 201.1", regions)
	if len(second) != 0 {
		t.Errorf("expected repeated bitmap skipped, got %+v", second)
	}
}

func TestResolveFigures_UnlabeledImageGetsSyntheticID(t *testing.T) {
	r := NewResolver(nil)
	figures := r.ResolveFigures(9, "no labels on this page", PageRegions{
		Images: []ImageRef{{Ref: "imgX"}},
	})
	if len(figures) != 1 {
		t.Fatalf("expected 1 figure, got %d", len(figures))
	}
	if figures[0].ID != "fig_p9_1" {
		t.Errorf("expected synthetic ID fig_p9_1, got %q", figures[0].ID)
	}
	if figures[0].Caption != "" {
		t.Errorf("expected empty caption, got %q", figures[0].Caption)
	}
}

func TestResolveFigures_IDCollisionSuffixed(t *testing.T) {
	r := NewResolver(nil)
	page1 := r.ResolveFigures(1, "FIGURE 101.1", PageRegions{Images: []ImageRef{{Ref: "a"}}})
	page2 := r.ResolveFigures(2, "FIGURE 101.1", PageRegions{Images: []ImageRef{{Ref: "b"}}})
	if page1[0].ID == page2[0].ID {
		t.Errorf("expected distinct IDs, got %q twice", page1[0].ID)
	}
	if page2[0].ID != page1[0].ID+"_1" {
		t.Errorf("expected suffixed ID, got %q", page2[0].ID)
	}
}
