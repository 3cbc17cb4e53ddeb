package region

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Tunable distances for footnote and name harvesting, in page points.
const (
	noteBandBelow     = 100.0
	noteContinuation  = 80.0
	nameBandBelowLine = 30.0
)

var (
	tableNoteRe     = regexp.MustCompile(`^(?:For\s+[A-Z]+:|[a-z]\.|[0-9]+\.)`)
	noteStopRe      = regexp.MustCompile(`(?i)^(?:TABLE|FIGURE|SECTION|\d+\.\d+)`)
	labelIDStripRe  = regexp.MustCompile(`(?i)^(?:\[[A-Z]+\]\s+)?TABLE\s+`)
	dottedTrailerRe = regexp.MustCompile(`\s+\d+\.\d+.*$`)
)

// PageHasTableLabel guards table resolution: a page qualifies only if
// some line starts with an optional bracket prefix then a TABLE label.
// Prose mentions of tables mid-sentence do not qualify.
func PageHasTableLabel(pageText string) bool {
	for _, line := range strings.Split(pageText, "\n") {
		if tableLabelRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// TableLabels returns the ordered TABLE labels found in page text.
func TableLabels(pageText string) []string {
	var labels []string
	for _, line := range strings.Split(pageText, "\n") {
		line = strings.TrimSpace(line)
		if tableLabelRe.MatchString(line) {
			labels = append(labels, line)
		}
	}
	return labels
}

// ResolveTables keeps the table-region boxes that sit closer to a TABLE
// label line than to any FIGURE label line, derives each kept region's
// canonical ID from the corresponding label in order, and harvests
// footnotes and a display name from nearby positioned lines.
func (r *Resolver) ResolveTables(page int, pageText string, regions PageRegions) []ResolvedTable {
	if !PageHasTableLabel(pageText) {
		return nil
	}

	var boxes []BBox
	for _, raw := range regions.TableBoxes {
		box, ok := raw.Normalize()
		if !ok {
			r.log.Debug("dropping degenerate table box", "page", page)
			continue
		}
		boxes = append(boxes, box)
	}
	if len(boxes) == 0 {
		return nil
	}

	tableYs, figureYs := labelPositions(regions.TextLines)
	boxes = filterByLabelProximity(boxes, tableYs, figureYs, r.log, page)
	if len(boxes) == 0 {
		return nil
	}

	labels := TableLabels(pageText)
	tables := make([]ResolvedTable, 0, len(boxes))
	for idx, box := range boxes {
		var label string
		if idx < len(labels) {
			label = labels[idx]
		}
		id := canonicalTableID(label)
		if id == "" {
			// No label aligned with this region; synthesize from position.
			id = fmt.Sprintf("%d.%d", page, idx+1)
		}
		tables = append(tables, ResolvedTable{
			ID:    id,
			Box:   box,
			Page:  page,
			Name:  tableName(id, label, box, regions.TextLines),
			Notes: tableNotes(box, regions.TextLines),
		})
	}
	return tables
}

// labelPositions splits positioned lines into TABLE and FIGURE label Y
// coordinates.
func labelPositions(lines []TextLine) (tableYs, figureYs []float64) {
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if tableLabelRe.MatchString(text) {
			tableYs = append(tableYs, l.Y)
		} else if figureLineRe.MatchString(text) {
			figureYs = append(figureYs, l.Y)
		}
	}
	return tableYs, figureYs
}

// filterByLabelProximity keeps regions whose top edge is vertically
// closer to a TABLE label than to any FIGURE label. With no positioned
// labels at all the regions pass unfiltered; thresholds here are
// heuristics, not guarantees, near page breaks and multi-column layouts.
func filterByLabelProximity(boxes []BBox, tableYs, figureYs []float64, log *slog.Logger, page int) []BBox {
	if len(tableYs) == 0 || len(figureYs) == 0 {
		return boxes
	}
	var kept []BBox
	for _, box := range boxes {
		dTable := minDistance(box.Top(), tableYs)
		dFigure := minDistance(box.Top(), figureYs)
		if dTable < dFigure {
			kept = append(kept, box)
		} else {
			log.Debug("region closer to FIGURE label, skipping", "page", page, "top", box.Top())
		}
	}
	return kept
}

func minDistance(y float64, ys []float64) float64 {
	best := -1.0
	for _, v := range ys {
		d := y - v
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// canonicalTableID strips the bracket prefix and TABLE keyword from a
// label line, keeping only the printed identifier.
func canonicalTableID(label string) string {
	if label == "" {
		return ""
	}
	m := tableLabelRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return ""
	}
	return m[1]
}

// tableNotes harvests footnote lines below the region: SI-conversion
// notes and lettered or numbered notes, with close continuation lines
// appended to the previous note.
func tableNotes(box BBox, lines []TextLine) []string {
	var notes []string
	bottom := box.Bottom()
	for _, l := range lines {
		if l.Y < bottom || l.Y > bottom+noteBandBelow {
			continue
		}
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		switch {
		case tableNoteRe.MatchString(text):
			notes = append(notes, text)
		case len(notes) > 0 && len(text) > 10 && !noteStopRe.MatchString(text):
			if l.Y-bottom < noteContinuation {
				notes[len(notes)-1] += " " + text
			}
		}
	}
	return notes
}

// tableName builds the display name "TABLE <id> <TITLE>". The title is
// taken from the label line itself when it carries mostly-uppercase
// trailing text, otherwise from mostly-uppercase lines between the
// label and the region's top edge.
func tableName(id, label string, box BBox, lines []TextLine) string {
	if label != "" {
		if m := tableLabelRe.FindStringSubmatch(strings.TrimSpace(label)); m != nil && m[2] != "" {
			if title := strings.TrimSpace(m[2]); mostlyUpper(title) {
				return "TABLE " + id + " " + title
			}
		}
	}

	labelY, found := labelLineY(label, lines)
	if found {
		var parts []string
		limit := labelY + nameBandBelowLine
		if box.Top() < limit {
			limit = box.Top()
		}
		for _, l := range lines {
			if l.Y <= labelY || l.Y >= limit {
				continue
			}
			text := strings.TrimSpace(l.Text)
			if text == "" || noteStopRe.MatchString(text) {
				continue
			}
			if mostlyUpper(text) {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			title := dottedTrailerRe.ReplaceAllString(strings.Join(parts, " "), "")
			return "TABLE " + id + " " + strings.TrimSpace(title)
		}
	}
	return "TABLE " + id
}

func labelLineY(label string, lines []TextLine) (float64, bool) {
	if label == "" {
		return 0, false
	}
	for _, l := range lines {
		if strings.TrimSpace(l.Text) == strings.TrimSpace(label) {
			return l.Y, true
		}
	}
	// Fall back to any TABLE label line.
	for _, l := range lines {
		if tableLabelRe.MatchString(strings.TrimSpace(l.Text)) {
			return l.Y, true
		}
	}
	return 0, false
}

// mostlyUpper reports whether over half the non-space characters are
// uppercase, the signature of printed table titles.
func mostlyUpper(s string) bool {
	upper, total := 0, 0
	for _, r := range s {
		if r == ' ' {
			continue
		}
		total++
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	return total > 0 && upper*2 > total
}
