package filter

import (
	"strings"
	"testing"
)

func TestFilter_DropsKnownLiterals(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)
	text := "307.1 General.\nCopyright © 2020 ICC. ALL RIGHTS RESERVED.\nHazard content here."
	got := f.Filter(text)
	if strings.Contains(got, "Copyright") {
		t.Errorf("expected copyright line removed, got %q", got)
	}
	if !strings.Contains(got, "307.1 General.") || !strings.Contains(got, "Hazard content here.") {
		t.Errorf("expected content preserved, got %q", got)
	}
}

func TestFilter_DropsPageNumbers(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)
	tests := []struct {
		line string
		drop bool
	}{
		{"431", true},
		{"4-1", true},
		{"3-12", true},
		{"Section 431 applies", false},
		{"12345", false}, // too long
	}
	for _, tt := range tests {
		got := f.Filter("keep this line\n" + tt.line)
		dropped := !strings.Contains(got, tt.line)
		if dropped != tt.drop {
			t.Errorf("line %q: dropped=%v, expected %v", tt.line, dropped, tt.drop)
		}
	}
}

func TestFilter_RunningHeaderKeptAfterChapterHeading(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)

	// Mid-page occurrence is a running header and goes away.
	got := f.Filter("some text\nFIRE PROTECTION SYSTEMS\nmore text")
	if strings.Contains(got, "FIRE PROTECTION SYSTEMS") {
		t.Errorf("expected running header removed, got %q", got)
	}

	// Directly after the chapter heading it is the chapter title.
	got = f.Filter("CHAPTER 9\nFIRE PROTECTION SYSTEMS\nmore text")
	if !strings.Contains(got, "FIRE PROTECTION SYSTEMS") {
		t.Errorf("expected chapter title preserved, got %q", got)
	}
}

func TestFilter_RepeatedChapterBanner(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)
	got := f.Filter("CHAPTER 3\nCHAPTER 3\nOCCUPANCY CLASSIFICATION AND USE")
	if strings.Count(got, "CHAPTER 3") != 1 {
		t.Errorf("expected single chapter heading, got %q", got)
	}
}

func TestFilter_SampledBoilerplate(t *testing.T) {
	sampler := func() []Band {
		bands := make([]Band, 10)
		for i := range bands {
			bands[i] = Band{Top: "2021 CUSTOM CODE EDITION", Bottom: ""}
		}
		// Below the 50% threshold: appears once.
		bands[0].Bottom = "rare footer"
		return bands
	}
	f := New(DefaultConfig(), sampler, nil)
	got := f.Filter("2021 CUSTOM CODE EDITION\nreal content\nrare footer")
	if strings.Contains(got, "2021 CUSTOM CODE EDITION") {
		t.Errorf("expected sampled header removed, got %q", got)
	}
	if !strings.Contains(got, "rare footer") {
		t.Errorf("expected rare line kept, got %q", got)
	}
	if !strings.Contains(got, "real content") {
		t.Errorf("expected content kept, got %q", got)
	}
}

func TestFilter_CopyrightBlockExcision(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)
	text := "307.1 General. Copyright © 2020 ICC some license text ending in THEREUNDER. 101167924 The provisions continue here."
	got := f.Filter(text)
	if strings.Contains(got, "license text") {
		t.Errorf("expected copyright block excised, got %q", got)
	}
	if !strings.Contains(got, "307.1 General.") {
		t.Errorf("expected leading text kept, got %q", got)
	}
	if !strings.Contains(got, "The provisions continue here.") {
		t.Errorf("expected trailing text kept, got %q", got)
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)
	if got := f.Filter(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestFilter_DropsBlankLines(t *testing.T) {
	f := New(DefaultConfig(), nil, nil)
	got := f.Filter("first\n\n\nsecond")
	if got != "first\nsecond" {
		t.Errorf("expected blank lines dropped, got %q", got)
	}
}
