package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/structex/internal/filter"
	"github.com/dgallion1/structex/internal/region"
	"github.com/dgallion1/structex/internal/structure"
)

// PDFLoader extracts per-page text and per-line font features from a
// PDF. Geometric table regions and images come from the region
// collaborator via a sidecar (see LoadRegionsFile), not from here.
type PDFLoader struct{}

const (
	defaultPageHeight = 792.0 // US Letter, used when MediaBox is absent
	bandHeight        = 100.0
)

func (l *PDFLoader) Load(r io.Reader, filename string) ([]Page, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "structex-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		pages = append(pages, buildPage(p, i))
	}
	return pages, nil
}

// pdfLine is one visual line reassembled from positioned text runs.
type pdfLine struct {
	y     float64 // Y in PDF coordinates (origin bottom-left)
	texts []pdflib.Text
}

func buildPage(p pdflib.Page, number int) Page {
	height := pageHeight(p)
	lines := groupLines(p.Content().Text)

	var (
		sb        strings.Builder
		features  []structure.LineFeature
		textLines []region.TextLine
		topBand   []string
		botBand   []string
	)
	for _, line := range lines {
		var lineText strings.Builder
		maxSize := 0.0
		fontName := ""
		bold := false
		for _, t := range line.texts {
			lineText.WriteString(t.S)
			if t.FontSize > maxSize {
				maxSize = t.FontSize
				fontName = t.Font
			}
			if strings.Contains(t.Font, "Bold") {
				bold = true
			}
		}
		text := strings.TrimSpace(lineText.String())
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)

		features = append(features, structure.LineFeature{
			Text:     text,
			MaxSize:  maxSize,
			FontName: fontName,
			Bold:     bold,
		})

		// Convert to Y-down page coordinates for the region resolver.
		yDown := height - line.y
		textLines = append(textLines, region.TextLine{Text: text, Y: yDown})
		if yDown < bandHeight {
			topBand = append(topBand, text)
		}
		if yDown > height-bandHeight {
			botBand = append(botBand, text)
		}
	}

	return Page{
		Number:   number,
		Text:     sb.String(),
		Features: features,
		Regions:  region.PageRegions{TextLines: textLines},
		Band: filter.Band{
			Top:    strings.Join(topBand, " "),
			Bottom: strings.Join(botBand, " "),
		},
	}
}

// groupLines clusters text runs by baseline and orders them top-down,
// left-right. Baselines within half a point count as the same line.
func groupLines(texts []pdflib.Text) []pdfLine {
	var lines []pdfLine
	for _, t := range texts {
		placed := false
		for i := range lines {
			if math.Abs(lines[i].y-t.Y) < 0.5 {
				lines[i].texts = append(lines[i].texts, t)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, pdfLine{y: t.Y, texts: []pdflib.Text{t}})
		}
	}
	// PDF Y grows upward; larger Y renders higher on the page.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	for i := range lines {
		sort.SliceStable(lines[i].texts, func(a, b int) bool {
			return lines[i].texts[a].X < lines[i].texts[b].X
		})
	}
	return lines
}

func pageHeight(p pdflib.Page) float64 {
	box := p.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return defaultPageHeight
	}
	y0 := box.Index(1).Float64()
	y1 := box.Index(3).Float64()
	if h := y1 - y0; h > 0 {
		return h
	}
	return defaultPageHeight
}
