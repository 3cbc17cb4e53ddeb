// Package source adapts input documents into the per-page stream the
// engine consumes: plain text, optional per-line font features, optional
// detected geometry. Raw decoding lives here so the parsing pipeline
// only ever sees pages.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/structex/internal/filter"
	"github.com/dgallion1/structex/internal/region"
	"github.com/dgallion1/structex/internal/structure"
)

// Page is one page of extracted input. Only Number and Text are
// guaranteed; font features and geometry depend on the source format.
type Page struct {
	Number   int // 1-indexed
	Text     string
	Features []structure.LineFeature
	Regions  region.PageRegions
	// Band holds top/bottom band text for boilerplate sampling;
	// empty for sources without geometry.
	Band filter.Band
}

// Loader turns raw document bytes into a page stream.
type Loader interface {
	Load(r io.Reader, filename string) ([]Page, error)
}

// SupportedExtensions lists the input formats this engine accepts.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// ForFile returns the loader for a filename.
func ForFile(filename string) (Loader, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return &PDFLoader{}, nil
	case ".txt":
		return &TextLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// BandSampler builds a boilerplate sampler over ~sampleSize evenly
// spaced pages of a loaded document.
func BandSampler(pages []Page, sampleSize int) filter.Sampler {
	return func() []filter.Band {
		if sampleSize <= 0 {
			sampleSize = 10
		}
		step := len(pages) / sampleSize
		if step < 1 {
			step = 1
		}
		var bands []filter.Band
		for i := 0; i < len(pages) && len(bands) < sampleSize; i += step {
			bands = append(bands, pages[i].Band)
		}
		return bands
	}
}
