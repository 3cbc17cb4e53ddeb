// Package refs classifies in-body mentions of other parts of the code:
// internal sections and external documents. Table and figure IDs are
// resolved geometrically elsewhere and are never overwritten here.
package refs

import (
	"regexp"

	"github.com/dgallion1/structex/internal/model"
)

var (
	internalSectionRe = regexp.MustCompile(
		`(?i)Sections?\s+\d+(?:\.\d+)*(?:\s+(?:and|through|to)\s+\d+(?:\.\d+)*)*`)
	sectionPrefixRe = regexp.MustCompile(`(?i)^Sections?\s+`)

	// Specific code names first, then the general family pattern.
	externalDocRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)International\s+Fire\s+Code`),
		regexp.MustCompile(`(?i)International\s+Fuel\s+Gas\s+Code`),
		regexp.MustCompile(`(?i)International\s+Mechanical\s+Code`),
		regexp.MustCompile(`(?i)International\s+Plumbing\s+Code`),
		regexp.MustCompile(`(?i)International\s+\w+\s+Code`),
	}
)

// Extract scans text for internal-section and external-document
// mentions. Internal mentions are normalized to bare numbers with
// compound forms preserved ("308.4.1 through 308.4.5"); overlapping
// matches within a category deduplicate by span.
func Extract(text string) model.References {
	var out model.References
	if text == "" {
		return out
	}

	for _, loc := range internalSectionRe.FindAllStringIndex(text, -1) {
		matched := text[loc[0]:loc[1]]
		out.InternalSections = append(out.InternalSections, model.Mention{
			Reference: sectionPrefixRe.ReplaceAllString(matched, ""),
			Start:     loc[0],
			End:       loc[1],
		})
	}

	seen := map[[2]int]bool{}
	for _, re := range externalDocRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			span := [2]int{loc[0], loc[1]}
			if seen[span] {
				continue
			}
			seen[span] = true
			out.ExternalDocuments = append(out.ExternalDocuments, model.Mention{
				Reference: text[loc[0]:loc[1]],
				Start:     loc[0],
				End:       loc[1],
			})
		}
	}
	return out
}

// ExtractAndAttach runs extraction over the section body and every
// numbered item, unioning the results into the section's references.
// Table and figure IDs attached by the region resolver stay untouched.
func ExtractAndAttach(s *model.Section) {
	s.References.Merge(Extract(s.Text))
	for _, item := range s.NumberedItems {
		s.References.Merge(Extract(item.Text))
	}
}
