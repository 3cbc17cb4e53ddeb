package structure

import "github.com/dgallion1/structex/internal/model"

// MergeChapters folds a page's chapters into the running accumulator.
// Chapters match by number: sections append in reading order and an
// empty user_notes is backfilled. Unmatched chapters append.
func MergeChapters(existing, fromPage []*model.Chapter) []*model.Chapter {
	if len(existing) == 0 {
		return fromPage
	}
	merged := existing
	for _, candidate := range fromPage {
		match := FindChapter(merged, candidate.ChapterNumber)
		if match == nil {
			merged = append(merged, candidate)
			continue
		}
		if candidate.UserNotes != "" && match.UserNotes == "" {
			match.UserNotes = candidate.UserNotes
		}
		match.Sections = append(match.Sections, candidate.Sections...)
	}
	return merged
}

// FindChapter returns the chapter with the given number, or nil.
func FindChapter(chapters []*model.Chapter, number int) *model.Chapter {
	for _, c := range chapters {
		if c.ChapterNumber == number {
			return c
		}
	}
	return nil
}

// Finalize runs after the last page: content-less chapters (zero
// sections, empty user_notes) are dropped as table-of-contents echoes,
// surviving duplicates fold into the first content-bearing occurrence,
// and repeated section numbers get a duplicate index so their distinct
// bodies stay distinguishable.
func Finalize(chapters []*model.Chapter) []*model.Chapter {
	var kept []*model.Chapter
	seen := map[int]*model.Chapter{}
	for _, c := range chapters {
		if !c.HasContent() {
			continue
		}
		if existing, ok := seen[c.ChapterNumber]; ok {
			if c.UserNotes != "" && existing.UserNotes == "" {
				existing.UserNotes = c.UserNotes
			}
			existing.Sections = append(existing.Sections, c.Sections...)
			continue
		}
		seen[c.ChapterNumber] = c
		kept = append(kept, c)
	}

	counts := map[string]int{}
	for _, c := range kept {
		for _, s := range c.Sections {
			s.DuplicateIndex = counts[s.SectionNumber]
			counts[s.SectionNumber]++
		}
	}
	return kept
}
