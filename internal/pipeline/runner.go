// Package pipeline drives a parse run: pure per-page preprocessing is
// prefetched ahead of the strictly page-ordered structural merge, and
// jobs wrap runs for the async API.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/structex/internal/config"
	"github.com/dgallion1/structex/internal/filter"
	"github.com/dgallion1/structex/internal/model"
	"github.com/dgallion1/structex/internal/refs"
	"github.com/dgallion1/structex/internal/region"
	"github.com/dgallion1/structex/internal/source"
	"github.com/dgallion1/structex/internal/structure"
)

// ErrStartPageBeyondEnd aborts a run before any page is processed.
var ErrStartPageBeyondEnd = errors.New("start page is beyond the last page")

// Options select what a single run parses.
type Options struct {
	Title     string
	Version   string
	StartPage int // 1-indexed
	PageCount int // 0 means all remaining
}

// Runner assembles Documents from page streams. A Runner is reusable;
// all per-run state (parser carry-over, figure dedup, boilerplate set)
// is created inside Run.
type Runner struct {
	cfg config.Config
	log *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(cfg config.Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, log: log}
}

// filteredPage is the output of the pure per-page preprocessing stage.
type filteredPage struct {
	page source.Page
	text string // boilerplate-filtered text
	err  error
}

// Run parses the selected pages into a Document. Per-page failures are
// logged and contribute empty results; only pre-run configuration
// problems return an error. progress may be nil.
func (r *Runner) Run(ctx context.Context, pages []source.Page, opts Options, progress func(done, total int)) (*model.Document, error) {
	if opts.StartPage < 1 {
		return nil, fmt.Errorf("%w: got %d", config.ErrInvalidStartPage, opts.StartPage)
	}
	if opts.StartPage > len(pages) {
		return nil, fmt.Errorf("%w: start page %d, total pages %d",
			ErrStartPageBeyondEnd, opts.StartPage, len(pages))
	}
	selected := pages[opts.StartPage-1:]
	if opts.PageCount > 0 && opts.PageCount < len(selected) {
		selected = selected[:opts.PageCount]
	}

	var pageFilter *filter.Filter
	if r.cfg.RemoveHeadersFooters {
		pageFilter = filter.New(filter.DefaultConfig(), source.BandSampler(pages, r.cfg.FilterSampleSize), r.log)
	}

	// Filtering is pure per page, so a producer goroutine runs it ahead
	// of consumption. The channel is bounded and ordered: the merge
	// below must see pages in strictly increasing order.
	filtered := make(chan filteredPage, r.cfg.PrefetchDepth)
	go func() {
		defer close(filtered)
		for _, page := range selected {
			fp := filteredPage{page: page, text: page.Text}
			if pageFilter != nil {
				fp.text, fp.err = r.filterPage(pageFilter, page)
			}
			select {
			case filtered <- fp:
			case <-ctx.Done():
				return
			}
		}
	}()

	parser := structure.New(r.log)
	resolver := region.NewResolver(r.log)
	st := &structure.State{}
	doc := model.NewDocument(opts.Title, opts.Version)

	var chapters []*model.Chapter
	var orphanCount int
	done := 0
	for fp := range filtered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fp.err != nil {
			r.log.Error("page preprocessing failed, substituting empty page",
				"page", fp.page.Number, "error", fp.err)
			done++
			continue
		}

		res := r.processPage(parser, resolver, st, doc, fp)
		orphanCount += len(res.Orphans)

		chapters = structure.MergeChapters(chapters, res.Chapters)
		if st.CurrentChapter != nil {
			if merged := structure.FindChapter(chapters, st.CurrentChapter.ChapterNumber); merged != nil {
				st.CurrentChapter = merged
			}
		}

		done++
		if progress != nil {
			progress(done, len(selected))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser.Finish(st)
	doc.Chapters = structure.Finalize(chapters)
	if orphanCount > 0 {
		r.log.Warn("sections found before any chapter were dropped", "count", orphanCount)
	}

	for _, chapter := range doc.Chapters {
		for _, section := range chapter.Sections {
			refs.ExtractAndAttach(section)
			structure.CollectMetadata(section)
		}
	}

	r.log.Info("parse complete",
		"pages", len(selected),
		"chapters", len(doc.Chapters),
		"tables", len(doc.Tables),
		"figures", len(doc.Figures))
	return doc, nil
}

// processPage runs the stateful per-page steps. A panic from malformed
// detection data is contained here: the page contributes nothing and
// the run continues.
func (r *Runner) processPage(parser *structure.Parser, resolver *region.Resolver, st *structure.State, doc *model.Document, fp filteredPage) (res structure.PageResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("page processing panicked, substituting empty page",
				"page", fp.page.Number, "panic", rec)
			res = structure.PageResult{}
		}
	}()

	res = parser.ParsePage(st, fp.text, fp.page.Number, fp.page.Features)

	if tables := resolver.ResolveTables(fp.page.Number, fp.text, fp.page.Regions); len(tables) > 0 {
		resolver.AttachTables(doc, tables, res.Sections, st.LastSection)
	}
	if figures := resolver.ResolveFigures(fp.page.Number, fp.text, fp.page.Regions); len(figures) > 0 {
		resolver.AttachFigures(doc, figures, res.Sections, st.LastSection)
	}
	return res
}

// filterPage guards the pure filtering step the same way.
func (r *Runner) filterPage(f *filter.Filter, page source.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("filter page %d: %v", page.Number, rec)
		}
	}()
	return f.Filter(page.Text), nil
}
