package region

import (
	"testing"

	"github.com/dgallion1/structex/internal/model"
)

func newSection(number string) *model.Section {
	return &model.Section{
		SectionNumber: number,
		Metadata:      &model.Metadata{PageNumber: "1"},
	}
}

func TestAttachTables_DistributesAcrossPageSections(t *testing.T) {
	r := NewResolver(nil)
	doc := model.NewDocument("t", "v")
	s1, s2 := newSection("307.1"), newSection("307.2")
	tables := []ResolvedTable{
		{ID: "307.1(1)", Page: 3, Name: "TABLE 307.1(1)"},
		{ID: "307.1(2)", Page: 3, Name: "TABLE 307.1(2)"},
		{ID: "307.1(3)", Page: 3, Name: "TABLE 307.1(3)"},
	}

	n := r.AttachTables(doc, tables, []*model.Section{s1, s2}, nil)
	if n != 3 {
		t.Fatalf("expected 3 attached, got %d", n)
	}
	if len(s1.References.Tables) != 1 || s1.References.Tables[0] != "307.1(1)" {
		t.Errorf("unexpected first section tables %v", s1.References.Tables)
	}
	// The third table clamps onto the last section of the page.
	if len(s2.References.Tables) != 2 {
		t.Errorf("expected overflow clamped to last section, got %v", s2.References.Tables)
	}
	if len(doc.Tables) != 3 {
		t.Errorf("expected 3 root records, got %d", len(doc.Tables))
	}
	if doc.Tables["307.1(2)"] == nil || doc.Tables["307.1(2)"].TableName != "TABLE 307.1(2)" {
		t.Errorf("unexpected root record %+v", doc.Tables["307.1(2)"])
	}
}

func TestAttachTables_FallbackToLastSection(t *testing.T) {
	r := NewResolver(nil)
	doc := model.NewDocument("t", "v")
	last := newSection("306.9")

	n := r.AttachTables(doc, []ResolvedTable{{ID: "307.1(1)", Page: 4}}, nil, last)
	if n != 1 {
		t.Fatalf("expected 1 attached, got %d", n)
	}
	if len(last.References.Tables) != 1 {
		t.Errorf("expected fallback attachment, got %v", last.References.Tables)
	}
	if !last.Metadata.HasTable || last.Metadata.TableCount != 1 {
		t.Errorf("expected metadata updated, got %+v", last.Metadata)
	}
}

func TestAttachTables_NoTargetDrops(t *testing.T) {
	r := NewResolver(nil)
	doc := model.NewDocument("t", "v")

	n := r.AttachTables(doc, []ResolvedTable{{ID: "101.1", Page: 1}}, nil, nil)
	if n != 0 {
		t.Errorf("expected drop with no targets, got %d", n)
	}
	if len(doc.Tables) != 0 {
		t.Errorf("expected no root records, got %d", len(doc.Tables))
	}
}

func TestAttachTables_DuplicateIDGetsSuffix(t *testing.T) {
	r := NewResolver(nil)
	doc := model.NewDocument("t", "v")
	s := newSection("307.1")

	r.AttachTables(doc, []ResolvedTable{{ID: "307.1(1)", Page: 3}}, []*model.Section{s}, nil)
	r.AttachTables(doc, []ResolvedTable{{ID: "307.1(1)", Page: 4}}, []*model.Section{s}, nil)

	if len(doc.Tables) != 2 {
		t.Fatalf("expected 2 root records, got %d", len(doc.Tables))
	}
	if doc.Tables["307.1(1)_1"] == nil {
		t.Errorf("expected suffixed key, got %v", keys(doc.Tables))
	}
	if len(s.References.Tables) != 2 {
		t.Errorf("expected both IDs on section, got %v", s.References.Tables)
	}
}

func TestAttachFigures_RootRecordAndReference(t *testing.T) {
	r := NewResolver(nil)
	doc := model.NewDocument("t", "v")
	s := newSection("705.8")
	figures := []ResolvedFigure{{
		ID:      "figure_705.8",
		Page:    7,
		Image:   ImageRef{Path: "images/705.8.png", Width: 400, Height: 300, Format: "png"},
		Caption: "EXTERIOR WALL OPENINGS",
	}}

	n := r.AttachFigures(doc, figures, []*model.Section{s}, nil)
	if n != 1 {
		t.Fatalf("expected 1 attached, got %d", n)
	}
	rec := doc.Figures["figure_705.8"]
	if rec == nil {
		t.Fatalf("expected root record, got %v", keys(doc.Figures))
	}
	if rec.Width != 400 || rec.Caption != "EXTERIOR WALL OPENINGS" {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(s.References.Figures) != 1 || s.References.Figures[0] != "figure_705.8" {
		t.Errorf("unexpected section figures %v", s.References.Figures)
	}
	if !s.Metadata.HasFigure {
		t.Errorf("expected metadata updated, got %+v", s.Metadata)
	}
}

func keys[V any](m map[string]V) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
