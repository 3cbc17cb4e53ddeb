package structure

import (
	"regexp"
	"strings"

	"github.com/dgallion1/structex/internal/pattern"
)

var tocDotsRe = regexp.MustCompile(`\.\s+\.\s+\.`)

// scanChapterTitle looks ahead up to ten lines after a CHAPTER heading
// for the chapter title: the first all-caps line, or a short line that
// does not read as a sentence. Multi-line titles continue while the
// following line is also all-caps or a TOC leader-dot continuation.
// Consumed lines are recorded so the caller skips them.
func scanChapterTitle(lines []string, chapterIdx int, consumed map[int]bool) string {
	var parts []string
	foundStart := false

	limit := chapterIdx + 10
	if limit > len(lines) {
		limit = len(lines)
	}
	for i := chapterIdx + 1; i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			if foundStart {
				break
			}
			continue
		}

		kind := pattern.Classify(line).Kind
		if kind == pattern.KindChapter || kind == pattern.KindUserNotes ||
			kind == pattern.KindPart || kind == pattern.KindSectionBanner {
			break
		}

		titleLike := isAllUpper(line) ||
			(len(strings.Fields(line)) <= 6 && !strings.HasSuffix(line, "."))
		if !titleLike {
			if foundStart {
				break
			}
			continue
		}

		parts = append(parts, line)
		consumed[i] = true
		foundStart = true

		// TOC entries carry leader dots; the title continues past them.
		if strings.Contains(line, ". . .") || tocDotsRe.MatchString(line) {
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			nextKind := pattern.Classify(next).Kind
			if nextKind == pattern.KindPart || nextKind == pattern.KindSectionBanner {
				break
			}
			if next != "" && (isAllUpper(next) || strings.Contains(next, ". . .")) {
				continue
			}
		}
		break
	}

	if len(parts) == 0 {
		return "Untitled Chapter"
	}
	return pattern.CleanText(strings.Join(parts, " "))
}
