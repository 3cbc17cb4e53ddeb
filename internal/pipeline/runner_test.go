package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/structex/internal/config"
	"github.com/dgallion1/structex/internal/region"
	"github.com/dgallion1/structex/internal/source"
)

func testConfig() config.Config {
	return config.Config{
		PrefetchDepth:    4,
		FilterSampleSize: 10,
	}
}

func codePages() []source.Page {
	page1 := strings.Join([]string{
		"CHAPTER 3",
		"OCCUPANCY CLASSIFICATION AND USE",
		"SECTION 307",
		"[F] 307.1 General. Fire code applies.",
		"Hazards shall comply with Section 414 and the International Fire Code.",
		"1. First requirement.",
	}, "\n")
	page2 := strings.Join([]string{
		"2. Second requirement.",
		"TABLE 307.1(1)",
		"MAXIMUM ALLOWABLE QUANTITY",
	}, "\n")
	return []source.Page{
		{Number: 1, Text: page1},
		{
			Number: 2,
			Text:   page2,
			Regions: region.PageRegions{
				TableBoxes: []region.BBox{{X0: 50, Y0: 120, X1: 500, Y1: 400}},
				Images:     []region.ImageRef{{Ref: "img1", Width: 300, Height: 200}},
			},
		},
	}
}

func TestRun_FullDocument(t *testing.T) {
	r := NewRunner(testConfig(), nil)
	doc, err := r.Run(context.Background(), codePages(), Options{
		Title:     "2021 International Building Code",
		Version:   "2021",
		StartPage: 1,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "2021 International Building Code" || doc.Version != "2021" {
		t.Errorf("unexpected document identity %q %q", doc.Title, doc.Version)
	}
	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(doc.Chapters))
	}
	ch := doc.Chapters[0]
	if ch.ChapterNumber != 3 || ch.Title != "OCCUPANCY CLASSIFICATION AND USE" {
		t.Errorf("unexpected chapter %d %q", ch.ChapterNumber, ch.Title)
	}
	if len(ch.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(ch.Sections))
	}

	s := ch.Sections[0]
	if s.SectionNumber != "307.1" || s.Prefix != "F" || s.Title != "General" {
		t.Errorf("unexpected section %+v", s)
	}
	if !strings.HasPrefix(s.Text, "Fire code applies.") {
		t.Errorf("expected inline body first, got %q", s.Text)
	}
	if len(s.NumberedItems) != 2 {
		t.Errorf("expected items across pages, got %+v", s.NumberedItems)
	}
	if len(s.References.InternalSections) != 1 || s.References.InternalSections[0].Reference != "414" {
		t.Errorf("unexpected internal refs %+v", s.References.InternalSections)
	}
	if len(s.References.ExternalDocuments) != 1 {
		t.Errorf("unexpected external refs %+v", s.References.ExternalDocuments)
	}

	if len(doc.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(doc.Tables))
	}
	if doc.Tables["307.1(1)"] == nil {
		t.Fatalf("expected canonical table ID, got %v", doc.Tables)
	}
	if len(s.References.Tables) != 1 || s.References.Tables[0] != "307.1(1)" {
		t.Errorf("expected table on carried section, got %v", s.References.Tables)
	}
	if !s.Metadata.HasTable || s.Metadata.TableCount != 1 {
		t.Errorf("unexpected metadata %+v", s.Metadata)
	}
	if len(doc.Figures) != 1 {
		t.Errorf("expected 1 figure, got %d", len(doc.Figures))
	}
}

func TestRun_NoDanglingReferences(t *testing.T) {
	r := NewRunner(testConfig(), nil)
	doc, err := r.Run(context.Background(), codePages(), Options{StartPage: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ch := range doc.Chapters {
		for _, s := range ch.Sections {
			for _, id := range s.References.Tables {
				if doc.Tables[id] == nil {
					t.Errorf("section %s references missing table %q", s.SectionNumber, id)
				}
			}
			for _, id := range s.References.Figures {
				if doc.Figures[id] == nil {
					t.Errorf("section %s references missing figure %q", s.SectionNumber, id)
				}
			}
			if s.Depth != strings.Count(s.SectionNumber, ".") {
				t.Errorf("section %s depth %d inconsistent", s.SectionNumber, s.Depth)
			}
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	first, err := NewRunner(testConfig(), nil).Run(context.Background(), codePages(), Options{StartPage: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewRunner(testConfig(), nil).Run(context.Background(), codePages(), Options{StartPage: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("expected identical output across runs:\n%s\n%s", a, b)
	}
}

func TestRun_StartPageValidation(t *testing.T) {
	r := NewRunner(testConfig(), nil)
	if _, err := r.Run(context.Background(), codePages(), Options{StartPage: 0}, nil); !errors.Is(err, config.ErrInvalidStartPage) {
		t.Errorf("expected ErrInvalidStartPage, got %v", err)
	}
	if _, err := r.Run(context.Background(), codePages(), Options{StartPage: 5}, nil); !errors.Is(err, ErrStartPageBeyondEnd) {
		t.Errorf("expected ErrStartPageBeyondEnd, got %v", err)
	}
}

func TestRun_PageCountLimitsRange(t *testing.T) {
	r := NewRunner(testConfig(), nil)
	doc, err := r.Run(context.Background(), codePages(), Options{StartPage: 1, PageCount: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only page 1 runs, so the page-2 table never attaches.
	if len(doc.Tables) != 0 {
		t.Errorf("expected no tables from excluded page, got %v", doc.Tables)
	}
	if len(doc.Chapters) != 1 {
		t.Errorf("expected chapter from included page, got %d", len(doc.Chapters))
	}
}

func TestRun_BoilerplateRemoved(t *testing.T) {
	cfg := testConfig()
	cfg.RemoveHeadersFooters = true

	pages := []source.Page{{
		Number: 1,
		Text: strings.Join([]string{
			"2021 INTERNATIONAL BUILDING CODE®",
			"CHAPTER 3",
			"OCCUPANCY CLASSIFICATION AND USE",
			"301.1 Scope.",
			"The provisions apply.",
			"3-1",
		}, "\n"),
	}}

	doc, err := NewRunner(cfg, nil).Run(context.Background(), pages, Options{StartPage: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(doc.Chapters))
	}
	s := doc.Chapters[0].Sections[0]
	if strings.Contains(s.Text, "INTERNATIONAL BUILDING CODE") || strings.Contains(s.Text, "3-1") {
		t.Errorf("expected boilerplate stripped, got %q", s.Text)
	}
}

func TestRun_OrphanSectionsDropped(t *testing.T) {
	pages := []source.Page{{Number: 1, Text: "101.1 Title.\nBody before any chapter."}}
	doc, err := NewRunner(testConfig(), nil).Run(context.Background(), pages, Options{StartPage: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Chapters) != 0 {
		t.Errorf("expected no chapters, got %d", len(doc.Chapters))
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	var calls int
	var lastDone, lastTotal int
	_, err := NewRunner(testConfig(), nil).Run(context.Background(), codePages(), Options{StartPage: 1},
		func(done, total int) {
			calls++
			lastDone, lastTotal = done, total
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || lastDone != 2 || lastTotal != 2 {
		t.Errorf("unexpected progress calls=%d done=%d total=%d", calls, lastDone, lastTotal)
	}
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(testConfig(), nil).Run(ctx, codePages(), Options{StartPage: 1}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
