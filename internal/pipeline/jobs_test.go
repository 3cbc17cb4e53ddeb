package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/structex/internal/model"
)

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("code.pdf", "2021 International Building Code")
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "loading"},
		{StatusParsing, "parsing_pages"},
		{StatusAssembling, "assembling"},
		{StatusCompleted, "done"},
	}
	for _, tr := range transitions {
		job.SetStatus(tr.status, tr.phase)
		snap := job.Snapshot()
		if snap.Status != tr.status || snap.Phase != tr.phase {
			t.Errorf("expected %s/%s, got %s/%s", tr.status, tr.phase, snap.Status, snap.Phase)
		}
	}
}

func TestJob_ProgressAndResult(t *testing.T) {
	job := NewJob("code.pdf", "title")
	job.SetPageProgress(3, 10)

	doc := model.NewDocument("title", "2021")
	doc.Chapters = []*model.Chapter{{ChapterNumber: 3}}
	doc.Tables["307.1(1)"] = &model.TableRecord{Page: 3}
	job.SetResult(doc)

	snap := job.Snapshot()
	if snap.Progress.PagesProcessed != 3 || snap.Progress.TotalPages != 10 {
		t.Errorf("unexpected page progress %+v", snap.Progress)
	}
	if snap.Progress.Chapters != 1 || snap.Progress.Tables != 1 {
		t.Errorf("unexpected counts %+v", snap.Progress)
	}
	if job.Document() != doc {
		t.Error("expected stored document returned")
	}
}

func TestJob_Errors(t *testing.T) {
	job := NewJob("code.pdf", "")
	job.AddError("load failed")
	job.AddError("second problem")
	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", snap.Progress.Errors)
	}
}

func TestJob_SnapshotErrorsNeverNil(t *testing.T) {
	snap := NewJob("a.txt", "").Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestJob_InputRoundTrip(t *testing.T) {
	job := NewJob("code.pdf", "")
	opts := Options{Title: "t", StartPage: 3, PageCount: 10}
	job.SetInput([]byte("file"), []byte("regions"), opts)

	file, regions, got := job.Input()
	if string(file) != "file" || string(regions) != "regions" {
		t.Errorf("unexpected inputs %q %q", file, regions)
	}
	if got != opts {
		t.Errorf("unexpected options %+v", got)
	}

	job.clearInput()
	file, regions, _ = job.Input()
	if file != nil || regions != nil {
		t.Error("expected inputs dropped after clear")
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	job := NewJob("code.pdf", "")
	store.Put(job)
	if store.Get(job.ID) != job {
		t.Fatal("expected stored job returned")
	}
	if store.Get("missing") != nil {
		t.Error("expected nil for unknown ID")
	}

	job.UpdatedAt = time.Now().Add(-time.Minute)
	store.Cleanup()
	if store.Get(job.ID) != nil {
		t.Error("expected expired job evicted")
	}
}

func TestGenerateULID_UniqueAndSortable(t *testing.T) {
	a := generateULID()
	b := generateULID()
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26-character IDs, got %q %q", a, b)
	}
	if a == b {
		t.Error("expected distinct IDs")
	}
}
