package region

import (
	"fmt"
	"regexp"
	"strings"
)

// FigureLabel is a FIGURE caption line detected in page text.
type FigureLabel struct {
	Number  string
	Raw     string
	Caption string
}

var (
	captionStopRe   = regexp.MustCompile(`(?i)^(?:FIGURE|TABLE|CHAPTER|SECTION)\b`)
	sectionStartRe  = regexp.MustCompile(`^\d+(?:\.\d+)*\s+[A-Za-z]`)
	figureSlugBadRe = regexp.MustCompile(`[^0-9A-Za-z_.-]+`)
	underscoreRunRe = regexp.MustCompile(`_+`)
)

const maxCaptionLines = 2

// FigureLabels detects FIGURE label lines in page text, in reading
// order, each with up to two caption continuation lines.
func FigureLabels(pageText string) []FigureLabel {
	if pageText == "" {
		return nil
	}
	lines := strings.Split(pageText, "\n")
	var labels []FigureLabel

	for idx := 0; idx < len(lines); {
		line := strings.TrimSpace(lines[idx])
		m := figureLineRe.FindStringSubmatch(line)
		if m == nil {
			idx++
			continue
		}

		var captionLines []string
		if rest := strings.TrimSpace(m[3]); rest != "" {
			captionLines = append(captionLines, rest)
		}
		cursor := idx + 1
		for cursor < len(lines) && len(captionLines) < maxCaptionLines {
			next := strings.TrimSpace(lines[cursor])
			if next == "" || figureLineRe.MatchString(next) ||
				captionStopRe.MatchString(next) || sectionStartRe.MatchString(next) ||
				!probablyCaption(next) {
				break
			}
			captionLines = append(captionLines, next)
			cursor++
		}

		labels = append(labels, FigureLabel{
			Number:  strings.TrimSpace(m[2]),
			Raw:     strings.TrimSpace(m[1]),
			Caption: strings.Join(captionLines, " "),
		})
		idx = cursor
	}
	return labels
}

// probablyCaption rejects prose lines: a sentence ending in a period
// that is not all-caps belongs to the body, not a caption.
func probablyCaption(line string) bool {
	if strings.HasSuffix(line, ".") && line != strings.ToUpper(line) {
		return false
	}
	return true
}

// ResolveFigures pairs the page's images, deduplicated by page-internal
// reference, with the Nth FIGURE label on the page positionally.
func (r *Resolver) ResolveFigures(page int, pageText string, regions PageRegions) []ResolvedFigure {
	if len(regions.Images) == 0 {
		return nil
	}
	labels := FigureLabels(pageText)

	var figures []ResolvedFigure
	for _, img := range regions.Images {
		if img.Ref != "" && r.seenImageRefs[img.Ref] {
			r.log.Debug("skipping duplicate image reference", "page", page, "ref", img.Ref)
			continue
		}
		r.figureCounter++

		var label *FigureLabel
		if len(figures) < len(labels) {
			label = &labels[len(figures)]
		}
		figures = append(figures, ResolvedFigure{
			ID:      r.buildFigureID(page, label),
			Page:    page,
			Image:   img,
			Caption: captionOf(label),
		})
		if img.Ref != "" {
			r.seenImageRefs[img.Ref] = true
		}
	}
	if len(figures) > 0 {
		r.log.Debug("resolved figures", "page", page, "count", len(figures))
	}
	return figures
}

func captionOf(label *FigureLabel) string {
	if label == nil {
		return ""
	}
	return label.Caption
}

// buildFigureID derives a readable figure ID from the label, falling
// back to a page/counter ID, with _1, _2 suffixes on collision.
func (r *Resolver) buildFigureID(page int, label *FigureLabel) string {
	base := ""
	if label != nil {
		if slug := slugifyLabel(label.Number); slug != "" {
			base = "figure_" + slug
		} else if slug := slugifyLabel(label.Raw); slug != "" {
			base = "figure_" + slug
		}
	}
	if base == "" {
		base = fmt.Sprintf("fig_p%d_%d", page, r.figureCounter)
	}

	candidate := base
	for suffix := 1; r.usedFigureIDs[candidate]; suffix++ {
		candidate = fmt.Sprintf("%s_%d", base, suffix)
	}
	r.usedFigureIDs[candidate] = true
	return candidate
}

func slugifyLabel(s string) string {
	slug := strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	slug = figureSlugBadRe.ReplaceAllString(slug, "_")
	slug = underscoreRunRe.ReplaceAllString(slug, "_")
	return strings.Trim(slug, "_")
}
