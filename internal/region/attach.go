package region

import (
	"fmt"

	"github.com/dgallion1/structex/internal/model"
)

// attachTargets implements the shared policy: artifacts distribute onto
// the page's newly-opened sections in order, clamped at the last one;
// a page that opened no sections falls back to the running last
// section; with no section anywhere yet, the artifact is dropped.
func attachTargets(pageSections []*model.Section, fallback *model.Section) []*model.Section {
	if len(pageSections) > 0 {
		return pageSections
	}
	if fallback != nil {
		return []*model.Section{fallback}
	}
	return nil
}

// AttachTables stores resolved tables at the document root and links
// each to its owning section. Returns the number attached.
func (r *Resolver) AttachTables(doc *model.Document, tables []ResolvedTable, pageSections []*model.Section, fallback *model.Section) int {
	if len(tables) == 0 {
		return 0
	}
	targets := attachTargets(pageSections, fallback)
	if targets == nil {
		r.log.Warn("tables found but no section to attach to", "page", tables[0].Page, "count", len(tables))
		return 0
	}

	for idx, t := range tables {
		target := targets[min(idx, len(targets)-1)]
		id := dedupeKey(t.ID, func(k string) bool { _, ok := doc.Tables[k]; return ok })
		doc.Tables[id] = &model.TableRecord{
			Page:      t.Page,
			TableInfo: t.Notes,
			TableName: t.Name,
		}
		target.AttachTable(id)
		r.log.Info("attached table", "table", id, "page", t.Page, "section", target.SectionNumber)
	}
	return len(tables)
}

// AttachFigures stores resolved figures at the document root and links
// each to its owning section. Returns the number attached.
func (r *Resolver) AttachFigures(doc *model.Document, figures []ResolvedFigure, pageSections []*model.Section, fallback *model.Section) int {
	if len(figures) == 0 {
		return 0
	}
	targets := attachTargets(pageSections, fallback)
	if targets == nil {
		r.log.Warn("figures found but no section to attach to", "page", figures[0].Page, "count", len(figures))
		return 0
	}

	for idx, f := range figures {
		target := targets[min(idx, len(targets)-1)]
		id := dedupeKey(f.ID, func(k string) bool { _, ok := doc.Figures[k]; return ok })
		doc.Figures[id] = &model.FigureRecord{
			Page:      f.Page,
			ImagePath: f.Image.Path,
			Width:     f.Image.Width,
			Height:    f.Image.Height,
			Format:    f.Image.Format,
			Caption:   f.Caption,
		}
		target.AttachFigure(id)
		r.log.Info("attached figure", "figure", id, "page", f.Page, "section", target.SectionNumber)
	}
	return len(figures)
}

// dedupeKey appends _1, _2, ... until the key is free.
func dedupeKey(base string, taken func(string) bool) string {
	key := base
	for suffix := 1; taken(key); suffix++ {
		key = fmt.Sprintf("%s_%d", base, suffix)
	}
	return key
}
