package source

import (
	"strings"
	"testing"
)

func TestMarkdownLoader_HeadingsAndParagraphs(t *testing.T) {
	md := "# CHAPTER 3\n\nOCCUPANCY CLASSIFICATION AND USE\n\n307.1 General. Requirements apply.\n"
	l := &MarkdownLoader{}
	pages, err := l.Load(strings.NewReader(md), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	text := pages[0].Text
	for _, want := range []string{"CHAPTER 3", "OCCUPANCY CLASSIFICATION AND USE", "307.1 General. Requirements apply."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in page text, got %q", want, text)
		}
	}
}

func TestMarkdownLoader_ThematicBreakSeparatesPages(t *testing.T) {
	md := "first page\n\n---\n\nsecond page\n"
	l := &MarkdownLoader{}
	pages, err := l.Load(strings.NewReader(md), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if !strings.Contains(pages[0].Text, "first page") || !strings.Contains(pages[1].Text, "second page") {
		t.Errorf("unexpected split: %q / %q", pages[0].Text, pages[1].Text)
	}
}

func TestMarkdownLoader_ListItemsBecomeLines(t *testing.T) {
	md := "307.1 Uses.\n\n1. Assembly uses.\n2. Business uses.\n"
	l := &MarkdownLoader{}
	pages, err := l.Load(strings.NewReader(md), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := pages[0].Text
	if !strings.Contains(text, "Assembly uses.") || !strings.Contains(text, "Business uses.") {
		t.Errorf("expected list items flattened, got %q", text)
	}
}

func TestMarkdownLoader_Empty(t *testing.T) {
	l := &MarkdownLoader{}
	pages, err := l.Load(strings.NewReader(""), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Errorf("expected a single empty page, got %d", len(pages))
	}
}
