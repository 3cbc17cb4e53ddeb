// Package pattern holds the stateless line recognizers used by the
// structure parser. Each page line is classified exactly once into a
// tagged Line; precedence between competing matches is fixed here so the
// parser's dispatch stays a single switch.
package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind tags a classified line.
type Kind int

const (
	KindText Kind = iota
	KindBlank
	KindChapter
	KindUserNotes
	KindPart
	KindSectionBanner
	KindPrefixedSection
	KindSection
	KindNumberedItem
)

// String returns a short name for logging.
func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindChapter:
		return "chapter"
	case KindUserNotes:
		return "user_notes"
	case KindPart:
		return "part"
	case KindSectionBanner:
		return "section_banner"
	case KindPrefixedSection:
		return "prefixed_section"
	case KindSection:
		return "section"
	case KindNumberedItem:
		return "numbered_item"
	default:
		return "text"
	}
}

// Line is the result of classifying a single page line.
type Line struct {
	Kind Kind
	Raw  string

	// Chapter / part / numbered item ordinal.
	Number int
	// Prefixed/unprefixed section dotted number.
	SectionNumber string
	// Bracketed prefix tag without brackets (prefixed sections only).
	Prefix string
	// Part title, numbered-item text, or the raw title+inline remainder
	// of a section line (split later via SplitTitleInline).
	Rest string
}

var (
	// Standalone "CHAPTER 3"; prose like "Chapter 3 covers..." must not match.
	chapterRe = regexp.MustCompile(`(?i)^CHAPTER\s+(\d+)\s*$`)
	partRe    = regexp.MustCompile(`(?i)^PART\s+(\d+)[—-]\s*(.+)$`)
	// Bare informational banner, e.g. "SECTION 101".
	sectionBannerRe = regexp.MustCompile(`(?i)^SECTION\s+(\d+)\s*$`)
	userNotesRe     = regexp.MustCompile(`(?i)^User notes?:`)
	prefixSectionRe = regexp.MustCompile(`^\[([A-Z]+)\]\s+(\d+(?:\.\d+)*)\s+(.+)$`)
	sectionRe       = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.+)$`)
	numberedItemRe  = regexp.MustCompile(`^\s*(\d+)\.\s+([A-Z].*)$`)
	dottedNumberRe  = regexp.MustCompile(`^\d+(?:\.\d+)*$`)
)

// Classify tags a line with the first matching rule. Font-based
// demotion of part headings is the parser's concern, not ours.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Line{Kind: KindBlank, Raw: raw}
	}
	if m := chapterRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Line{Kind: KindChapter, Raw: line, Number: n}
	}
	if userNotesRe.MatchString(line) {
		return Line{Kind: KindUserNotes, Raw: line}
	}
	if m := partRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Line{Kind: KindPart, Raw: line, Number: n, Rest: strings.TrimSpace(m[2])}
	}
	if sectionBannerRe.MatchString(line) {
		return Line{Kind: KindSectionBanner, Raw: line}
	}
	if m := prefixSectionRe.FindStringSubmatch(line); m != nil {
		return Line{
			Kind:          KindPrefixedSection,
			Raw:           line,
			Prefix:        m[1],
			SectionNumber: m[2],
			Rest:          strings.TrimSpace(m[3]),
		}
	}
	if m := sectionRe.FindStringSubmatch(line); m != nil && LooksLikeSection(line) {
		return Line{
			Kind:          KindSection,
			Raw:           line,
			SectionNumber: m[1],
			Rest:          strings.TrimSpace(m[2]),
		}
	}
	if m := numberedItemRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Line{Kind: KindNumberedItem, Raw: line, Number: n, Rest: strings.TrimSpace(m[2])}
	}
	return Line{Kind: KindText, Raw: line}
}

// StartsStructure reports whether a line would open a new structural
// element. Used to terminate user-notes buffering and title scans.
func StartsStructure(line string) bool {
	switch Classify(line).Kind {
	case KindChapter, KindPart, KindSectionBanner, KindPrefixedSection, KindSection:
		return true
	}
	return false
}

// LooksLikeSection filters dotted-number lines that are prose rather
// than headers: the title must start with a capitalized word, stay under
// 200 characters, and have at least 30% capitalized words.
func LooksLikeSection(line string) bool {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) < 2 {
		return false
	}
	number, title := parts[0], strings.TrimSpace(parts[1])
	if !dottedNumberRe.MatchString(number) {
		return false
	}
	if title == "" || len(title) > 200 {
		return false
	}
	words := strings.Fields(title)
	first := strings.TrimLeft(words[0], `(["`)
	if first == "" || !isUpperByte(first[0]) {
		return false
	}
	capitalized := 0
	for _, w := range words {
		if w == strings.ToUpper(w) || isUpperByte(w[0]) {
			capitalized++
		}
	}
	return capitalized*10 >= len(words)*3
}

func isUpperByte(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
