// Package region disambiguates detected geometric regions as tables or
// figures, derives canonical IDs from their printed labels, and attaches
// the results to sections. Geometry arrives from the region collaborator;
// this package never touches raster content.
package region

import (
	"log/slog"
	"regexp"
)

// TextLine is a positioned line of page text, used to locate TABLE and
// FIGURE labels and harvest table footnotes near a region.
type TextLine struct {
	Text string  `json:"text"`
	Y    float64 `json:"y"`
}

// ImageRef describes a raster image placed on a page. Ref is the
// page-internal object reference: the same bitmap placed twice shares
// one Ref and is extracted once.
type ImageRef struct {
	Ref    string `json:"ref"`
	Path   string `json:"path,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
}

// PageRegions is everything the region collaborator detected on one
// page. All fields are optional; missing geometry degrades to the
// documented fallbacks rather than failing.
type PageRegions struct {
	TableBoxes []BBox     `json:"table_boxes,omitempty"`
	Images     []ImageRef `json:"images,omitempty"`
	TextLines  []TextLine `json:"text_lines,omitempty"`
}

// ResolvedTable is a region confirmed as a table with its canonical
// label-derived ID (pre collision suffixing).
type ResolvedTable struct {
	ID    string
	Box   BBox
	Page  int
	Name  string
	Notes []string
}

// ResolvedFigure is an extracted image paired with its caption label.
type ResolvedFigure struct {
	ID      string
	Page    int
	Image   ImageRef
	Caption string
}

// Resolver carries the process-wide figure dedup state. Tables are
// stateless per page; figures must not re-extract a bitmap seen on an
// earlier page under a different ID.
type Resolver struct {
	log *slog.Logger

	seenImageRefs map[string]bool
	usedFigureIDs map[string]bool
	figureCounter int
}

// NewResolver creates a resolver.
func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		log:           log,
		seenImageRefs: map[string]bool{},
		usedFigureIDs: map[string]bool{},
	}
}

var (
	tableLabelRe = regexp.MustCompile(`(?i)^(?:\[[A-Z]+\]\s+)?TABLE\s+([0-9A-Za-z][\w.()-]*)(?:\s+(.*))?$`)
	figureLineRe = regexp.MustCompile(`(?i)^\s*(FIGURE\s+([0-9A-Z][\w.()-]*))(?:\s+(.+))?$`)
)
