// Package structure turns filtered page lines into chapters and
// sections. Parsing is strictly page-ordered: an explicit State value
// carries the open chapter, open section, and user-notes buffer across
// page boundaries.
package structure

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/structex/internal/model"
	"github.com/dgallion1/structex/internal/pattern"
)

// State is the mutable carry-over between consecutive pages. The zero
// value is a valid initial state.
type State struct {
	CurrentChapter *model.Chapter
	// CurrentSection still accepts body text and numbered items; a
	// section stays open across page boundaries until the next
	// structural element.
	CurrentSection *model.Section
	// LastSection is the fallback attachment target for tables and
	// figures found on pages that open no sections.
	LastSection *model.Section

	inUserNotes bool
	notesBuf    []string
	textBuf     []string
	// first page the open section appeared on, for page-range metadata
	sectionPage int
}

// PageResult is what one page contributed: chapters opened on the page,
// every section opened on the page regardless of which chapter received
// it, and sections found before any chapter existed.
type PageResult struct {
	Chapters []*model.Chapter
	Sections []*model.Section
	Orphans  []*model.Section
}

// Parser recovers document structure from page text.
type Parser struct {
	log *slog.Logger
}

// New creates a parser.
func New(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{log: log}
}

// ParsePage consumes one page of filtered text. features is optional
// font metadata; when absent, part headings are accepted on shape alone.
// First matching rule wins per line.
func (p *Parser) ParsePage(st *State, pageText string, pageNum int, features []LineFeature) PageResult {
	lines := strings.Split(pageText, "\n")
	var lookup map[int]LineFeature
	var stats FontStats
	if len(features) > 0 {
		lookup = AlignLineFeatures(lines, features)
		stats = ComputeFontStats(features)
	}

	var res PageResult
	consumed := map[int]bool{}

	for idx, raw := range lines {
		if consumed[idx] {
			continue
		}
		line := pattern.Classify(raw)
		if line.Kind == pattern.KindBlank {
			continue
		}

		if line.Kind == pattern.KindChapter {
			p.openChapter(st, &res, line.Number, lines, idx, consumed, pageNum)
			continue
		}

		if line.Kind == pattern.KindUserNotes {
			st.inUserNotes = true
			st.notesBuf = st.notesBuf[:0]
			continue
		}
		if st.inUserNotes {
			if !pattern.StartsStructure(line.Raw) {
				st.notesBuf = append(st.notesBuf, line.Raw)
				continue
			}
			p.finalizeUserNotes(st)
			// The triggering line falls through to normal handling.
		}

		switch line.Kind {
		case pattern.KindPart:
			if !confidentPartHeading(idx, lookup, stats) {
				p.appendText(st, line.Raw, pageNum)
				continue
			}
			st.flushSection()
			st.CurrentSection = nil
			title := p.extendPartTitle(pattern.CleanText(line.Rest), lines, idx, consumed)
			p.log.Debug("part heading", "part", line.Number, "title", title, "page", pageNum)

		case pattern.KindSectionBanner:
			// Informational only.

		case pattern.KindPrefixedSection:
			p.openSection(st, &res, line.SectionNumber, line.Prefix, line.Rest, pageNum)

		case pattern.KindSection:
			p.openSection(st, &res, line.SectionNumber, "", line.Rest, pageNum)

		case pattern.KindNumberedItem:
			if st.CurrentSection == nil {
				continue
			}
			st.flushSection()
			st.CurrentSection.AppendItem(line.Number, line.Rest)
			p.extendPageRange(st, pageNum)

		default:
			p.appendText(st, line.Raw, pageNum)
		}
	}

	// End-of-page flush; the section itself stays open.
	st.flushSection()
	return res
}

// Finish flushes any buffered state after the last page.
func (p *Parser) Finish(st *State) {
	st.flushSection()
	p.finalizeUserNotes(st)
}

func (p *Parser) openChapter(st *State, res *PageResult, number int, lines []string, idx int, consumed map[int]bool, pageNum int) {
	st.flushSection()
	st.CurrentSection = nil
	p.finalizeUserNotes(st)

	title := scanChapterTitle(lines, idx, consumed)
	chapter := &model.Chapter{ChapterNumber: number, Title: title}
	res.Chapters = append(res.Chapters, chapter)
	st.CurrentChapter = chapter
	st.LastSection = nil
	p.log.Info("found chapter", "chapter", number, "title", title, "page", pageNum)
}

func (p *Parser) openSection(st *State, res *PageResult, number, prefix, rest string, pageNum int) {
	st.flushSection()

	title, inline := pattern.SplitTitleInline(rest)
	section := &model.Section{
		SectionNumber: number,
		Prefix:        prefix,
		Title:         title,
		Depth:         pattern.Depth(number),
		Metadata:      &model.Metadata{PageNumber: strconv.Itoa(pageNum)},
	}

	res.Sections = append(res.Sections, section)
	if st.CurrentChapter != nil {
		st.CurrentChapter.Sections = append(st.CurrentChapter.Sections, section)
	} else {
		res.Orphans = append(res.Orphans, section)
	}
	st.CurrentSection = section
	st.LastSection = section
	st.sectionPage = pageNum
	if inline != "" {
		st.textBuf = append(st.textBuf, inline)
	}
	p.log.Debug("found section", "section", number, "prefix", prefix, "title", title, "page", pageNum)
}

func (p *Parser) appendText(st *State, line string, pageNum int) {
	if st.CurrentSection == nil {
		return
	}
	st.textBuf = append(st.textBuf, line)
	p.extendPageRange(st, pageNum)
}

// extendPageRange widens the open section's page metadata when content
// arrives on a later page.
func (p *Parser) extendPageRange(st *State, pageNum int) {
	s := st.CurrentSection
	if s == nil || s.Metadata == nil || pageNum <= st.sectionPage {
		return
	}
	start := s.Metadata.PageNumber
	if i := strings.IndexByte(start, '-'); i >= 0 {
		start = start[:i]
	}
	s.Metadata.PageNumber = fmt.Sprintf("%s-%d", start, pageNum)
}

func (p *Parser) finalizeUserNotes(st *State) {
	if st.inUserNotes && len(st.notesBuf) > 0 && st.CurrentChapter != nil && st.CurrentChapter.UserNotes == "" {
		st.CurrentChapter.UserNotes = strings.Join(st.notesBuf, " ")
	}
	st.inUserNotes = false
	st.notesBuf = nil
}

// extendPartTitle absorbs one all-caps continuation line into a part
// title. Parts reset buffering state but are not retained structurally.
func (p *Parser) extendPartTitle(title string, lines []string, idx int, consumed map[int]bool) string {
	if idx+1 >= len(lines) {
		return title
	}
	next := strings.TrimSpace(lines[idx+1])
	if next != "" && isAllUpper(next) && !pattern.StartsStructure(next) {
		consumed[idx+1] = true
		return title + " " + pattern.CleanText(next)
	}
	return title
}

// flushSection moves buffered body text onto the open section,
// space-joined. Called on every new structural element and at page end.
func (st *State) flushSection() {
	if st.CurrentSection == nil || len(st.textBuf) == 0 {
		st.textBuf = st.textBuf[:0]
		return
	}
	joined := strings.Join(st.textBuf, " ")
	if st.CurrentSection.Text == "" {
		st.CurrentSection.Text = joined
	} else {
		st.CurrentSection.Text += " " + joined
	}
	st.textBuf = st.textBuf[:0]
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
