package pattern

import (
	"regexp"
	"strings"
)

var (
	tocLeaderRe  = regexp.MustCompile(`\s+\.(?:\s+\.)+\s+[\d-]+\s*$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	// First ". " followed by an uppercase letter or "[" separates a
	// section title from its inline body.
	titleSplitRe = regexp.MustCompile(`\.\s+[A-Z\[]`)
)

// CleanText collapses whitespace and strips table-of-contents leader
// dots with their trailing page numbers (" . . . . 1-1").
func CleanText(text string) string {
	text = tocLeaderRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitTitleInline separates a section header remainder into its title
// and any inline body that follows on the same line.
//
//	"General. Fire code applies." -> ("General", "Fire code applies.")
//	"Definitions."                -> ("Definitions", "")
func SplitTitleInline(rest string) (title, inline string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", ""
	}
	if loc := titleSplitRe.FindStringIndex(rest); loc != nil {
		// The match consumes the first letter of the body; back up one.
		title = strings.TrimSpace(rest[:loc[0]])
		inline = strings.TrimSpace(rest[loc[1]-1:])
		return CleanText(strings.TrimSuffix(title, ".")), inline
	}
	return CleanText(strings.TrimSuffix(rest, ".")), ""
}

// Depth derives section nesting depth from a dotted section number:
// 0 for "307", 1 for "307.1", 2 for "307.1.1".
func Depth(sectionNumber string) int {
	return strings.Count(sectionNumber, ".")
}

// NormalizeLine collapses internal whitespace for font-feature
// alignment between extracted lines and styled line records.
func NormalizeLine(text string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}
