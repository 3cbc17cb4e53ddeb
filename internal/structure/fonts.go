package structure

import "github.com/dgallion1/structex/internal/pattern"

// LineFeature carries optional font metadata for one visual line, as
// reported by the extraction collaborator. Used only to vet part
// headings, which are typographically but not textually distinct.
type LineFeature struct {
	Text     string
	MaxSize  float64
	FontName string
	Bold     bool
}

// FontStats summarizes font sizes across a page.
type FontStats struct {
	Median  float64
	Average float64
	Max     float64
}

// ComputeFontStats derives page-level size statistics. Returns the zero
// value when no sizes are available.
func ComputeFontStats(features []LineFeature) FontStats {
	var sizes []float64
	for _, f := range features {
		if f.MaxSize > 0 {
			sizes = append(sizes, f.MaxSize)
		}
	}
	if len(sizes) == 0 {
		return FontStats{}
	}
	var sum float64
	for _, s := range sizes {
		sum += s
	}
	sorted := make([]float64, len(sizes))
	copy(sorted, sizes)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return FontStats{
		Median:  median,
		Average: sum / float64(len(sizes)),
		Max:     sorted[len(sorted)-1],
	}
}

// AlignLineFeatures maps page line indexes to their font features by
// walking both sequences forward and matching on normalized text.
// Extraction and styled-line ordering agree, so a single pass suffices.
func AlignLineFeatures(lines []string, features []LineFeature) map[int]LineFeature {
	lookup := make(map[int]LineFeature)
	fi := 0
	for li, line := range lines {
		normalized := pattern.NormalizeLine(line)
		if normalized == "" {
			continue
		}
		// Scan ahead without consuming, so a line missing from the
		// styled records leaves the cursor in place for later lines.
		for j := fi; j < len(features); j++ {
			if pattern.NormalizeLine(features[j].Text) == normalized {
				lookup[li] = features[j]
				fi = j + 1
				break
			}
		}
	}
	return lookup
}

// confidentPartHeading decides whether a PART-shaped line is a genuine
// part heading. Without font metadata every candidate is accepted; with
// it, the line must stand out typographically from the page.
func confidentPartHeading(lineIdx int, lookup map[int]LineFeature, stats FontStats) bool {
	if lookup == nil {
		return true
	}
	f, ok := lookup[lineIdx]
	if !ok || f.MaxSize == 0 {
		return true
	}
	floor := 12.0
	if stats.Median+1 > floor {
		floor = stats.Median + 1
	}
	if f.MaxSize >= floor {
		return true
	}
	if stats.Max > 0 && f.MaxSize >= stats.Max*0.9 {
		return true
	}
	if f.Bold && f.MaxSize >= stats.Median {
		return true
	}
	return false
}
