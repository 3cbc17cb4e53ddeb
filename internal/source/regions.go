package source

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgallion1/structex/internal/region"
)

// LoadRegionsFile reads externally detected geometry, keyed by page
// number, and merges it into the loaded pages. Invalid page keys and
// degenerate boxes are skipped with a log line; the sidecar is advisory.
func LoadRegionsFile(path string, pages []Page, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open regions file: %w", err)
	}
	defer f.Close()
	return MergeRegions(f, pages, log)
}

// MergeRegions decodes a regions document and merges each page's
// detected geometry into the matching loaded page. Boxes are normalized
// on the way in.
func MergeRegions(r io.Reader, pages []Page, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	var raw map[string]region.PageRegions
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("decode regions: %w", err)
	}

	byNumber := make(map[int]*Page, len(pages))
	for i := range pages {
		byNumber[pages[i].Number] = &pages[i]
	}

	merged := 0
	for key, regs := range raw {
		pageNum, err := strconv.Atoi(key)
		if err != nil {
			log.Warn("ignoring invalid page key in regions file", "key", key)
			continue
		}
		page, ok := byNumber[pageNum]
		if !ok {
			log.Debug("regions for page outside loaded range", "page", pageNum)
			continue
		}

		var boxes []region.BBox
		for _, b := range regs.TableBoxes {
			normalized, ok := b.Normalize()
			if !ok {
				log.Warn("skipping degenerate table box", "page", pageNum)
				continue
			}
			boxes = append(boxes, normalized)
		}
		page.Regions.TableBoxes = append(page.Regions.TableBoxes, boxes...)
		page.Regions.Images = append(page.Regions.Images, regs.Images...)
		if len(regs.TextLines) > 0 {
			page.Regions.TextLines = append(page.Regions.TextLines, regs.TextLines...)
		}
		merged++
	}
	if merged > 0 {
		log.Info("merged detected regions", "pages", merged)
	}
	return nil
}
