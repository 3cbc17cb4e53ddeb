// Package filter removes repeated page boilerplate (running headers,
// copyright blocks, bare page numbers) before structural classification.
package filter

import (
	"log/slog"
	"strings"
	"sync"
)

// Band carries the text found in the top and bottom vertical bands of a
// sampled page. Sources without geometry return empty bands.
type Band struct {
	Top    string
	Bottom string
}

// Sampler produces band text for ~SampleSize evenly spaced pages.
// It runs once, lazily, on the first Filter call.
type Sampler func() []Band

// Config tunes boilerplate detection. Zero values fall back to the
// defaults used for the building-code corpus.
type Config struct {
	SampleSize int     // pages to sample, default 10
	Threshold  float64 // recurrence fraction, default 0.5

	// Literals always treated as boilerplate regardless of sampling.
	KnownLiterals []string
	// Chapter running headers, dropped unless directly after a genuine
	// CHAPTER heading.
	RunningHeaders []string
	// Copyright block boundaries for whole-block excision.
	CopyrightStarts []string
	CopyrightEnds   []string
}

// DefaultConfig returns the literals observed in the target corpus.
func DefaultConfig() Config {
	return Config{
		SampleSize: 10,
		Threshold:  0.5,
		KnownLiterals: []string{
			"Copyright © 2020 ICC. ALL RIGHTS RESERVED.",
			"INTERNATIONAL CODE COUNCIL",
			"2021 INTERNATIONAL BUILDING CODE®",
		},
		RunningHeaders: []string{
			"SCOPE AND ADMINISTRATION",
			"DEFINITIONS",
			"OCCUPANCY CLASSIFICATION AND USE",
			"SPECIAL DETAILED REQUIREMENTS BASED ON USE AND OCCUPANCY",
			"GENERAL BUILDING HEIGHTS AND AREAS",
			"TYPES OF CONSTRUCTION",
			"FIRE AND SMOKE PROTECTION FEATURES",
			"INTERIOR FINISHES",
			"FIRE PROTECTION SYSTEMS",
			"MEANS OF EGRESS",
		},
		CopyrightStarts: []string{"Copyright © 2020 ICC"},
		CopyrightEnds:   []string{"101167924", "THEREUNDER.", "PENALTIES THEREUNDER"},
	}
}

// Filter holds the detected boilerplate set. Safe for reuse across a
// whole run; detection happens once on first use.
type Filter struct {
	cfg     Config
	sampler Sampler
	log     *slog.Logger

	once        sync.Once
	boilerplate map[string]struct{}
	running     map[string]struct{}
}

// New creates a filter. sampler may be nil when no page geometry is
// available; detection then relies on the configured literals alone.
func New(cfg Config, sampler Sampler, log *slog.Logger) *Filter {
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 10
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Filter{cfg: cfg, sampler: sampler, log: log}
}

func (f *Filter) ensureDetected() {
	f.once.Do(func() {
		f.boilerplate = make(map[string]struct{})
		f.running = make(map[string]struct{})
		for _, lit := range f.cfg.KnownLiterals {
			f.boilerplate[lit] = struct{}{}
		}
		for _, h := range f.cfg.RunningHeaders {
			f.running[h] = struct{}{}
		}
		if f.sampler == nil {
			return
		}
		bands := f.sampler()
		if len(bands) == 0 {
			return
		}
		threshold := int(float64(len(bands)) * f.cfg.Threshold)
		if threshold < 1 {
			threshold = 1
		}
		counts := map[string]int{}
		for _, b := range bands {
			if t := strings.TrimSpace(b.Top); t != "" {
				counts[t]++
			}
			if bt := strings.TrimSpace(b.Bottom); bt != "" {
				counts[bt]++
			}
		}
		detected := 0
		for text, n := range counts {
			if n >= threshold {
				f.boilerplate[text] = struct{}{}
				detected++
			}
		}
		f.log.Info("detected boilerplate patterns", "sampled_pages", len(bands), "detected", detected)
	})
}

// Filter returns the page text with boilerplate removed. Blank lines
// are dropped; the structure parser never needs them.
func (f *Filter) Filter(text string) string {
	if text == "" {
		return text
	}
	f.ensureDetected()

	text = f.stripCopyrightBlocks(text)

	var kept []string
	prevWasChapter := false
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if f.isBoilerplate(stripped) {
			prevWasChapter = false
			continue
		}
		if _, ok := f.running[stripped]; ok && !prevWasChapter {
			prevWasChapter = false
			continue
		}
		// Repeated per-page "CHAPTER n" banner; the genuine heading is
		// the one not preceded by another chapter heading.
		if strings.HasPrefix(stripped, "CHAPTER ") && prevWasChapter {
			continue
		}
		if isPageNumber(stripped) {
			prevWasChapter = false
			continue
		}
		kept = append(kept, line)
		prevWasChapter = strings.HasPrefix(stripped, "CHAPTER ")
	}
	return strings.Join(kept, "\n")
}

func (f *Filter) isBoilerplate(line string) bool {
	for pattern := range f.boilerplate {
		if strings.Contains(line, pattern) || strings.Contains(pattern, line) {
			return true
		}
	}
	return false
}

// isPageNumber matches short numeric-only lines such as "431" or "4-1".
func isPageNumber(line string) bool {
	if len(line) >= 5 {
		return false
	}
	cleaned := strings.NewReplacer("-", "", "®", "").Replace(line)
	if cleaned == "" {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stripCopyrightBlocks excises text from a start literal through the
// nearest end literal (plus trailing digits/whitespace), falling back
// to the next paragraph break or end of text.
func (f *Filter) stripCopyrightBlocks(text string) string {
	for _, start := range f.cfg.CopyrightStarts {
		for {
			startIdx := strings.Index(text, start)
			if startIdx < 0 {
				break
			}
			endIdx := -1
			for _, end := range f.cfg.CopyrightEnds {
				if i := strings.Index(text[startIdx:], end); i >= 0 {
					endIdx = startIdx + i + len(end)
					for endIdx < len(text) && (text[endIdx] == ' ' || text[endIdx] == '\n' ||
						text[endIdx] == '\t' || (text[endIdx] >= '0' && text[endIdx] <= '9')) {
						endIdx++
					}
					break
				}
			}
			if endIdx > startIdx {
				text = text[:startIdx] + text[endIdx:]
				continue
			}
			if brk := strings.Index(text[startIdx:], "\n\n"); brk >= 0 {
				text = text[:startIdx] + text[startIdx+brk:]
			} else {
				text = text[:startIdx]
			}
			break
		}
	}
	return text
}
