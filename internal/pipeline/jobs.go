package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/structex/internal/model"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusAssembling JobStatus = "assembling"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single document parse.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	opts        Options
	fileData    []byte
	regionsData []byte
	document    *model.Document
	errors      []string
}

// Progress tracks parse progress.
type Progress struct {
	TotalPages     int      `json:"total_pages"`
	PagesProcessed int      `json:"pages_processed"`
	Chapters       int      `json:"chapters"`
	Tables         int      `json:"tables"`
	Figures        int      `json:"figures"`
	Errors         []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetPageProgress records page counts.
func (j *Job) SetPageProgress(done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesProcessed = done
	j.Progress.TotalPages = total
	j.UpdatedAt = time.Now()
}

// SetResult stores the finished document and its summary counts.
func (j *Job) SetResult(doc *model.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.document = doc
	j.Progress.Chapters = len(doc.Chapters)
	j.Progress.Tables = len(doc.Tables)
	j.Progress.Figures = len(doc.Figures)
	j.UpdatedAt = time.Now()
}

// Document returns the finished document, or nil before completion.
func (j *Job) Document() *model.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.document
}

// SetInput sets the raw file bytes, optional regions sidecar bytes, and
// run options for processing.
func (j *Job) SetInput(file, regions []byte, opts Options) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = file
	j.regionsData = regions
	j.opts = opts
}

// Input returns the raw inputs set by SetInput.
func (j *Job) Input() (file, regions []byte, opts Options) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData, j.regionsData, j.opts
}

// clearInput drops the raw bytes once processing is done.
func (j *Job) clearInput() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
	j.regionsData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			TotalPages:     j.Progress.TotalPages,
			PagesProcessed: j.Progress.PagesProcessed,
			Chapters:       j.Progress.Chapters,
			Tables:         j.Progress.Tables,
			Figures:        j.Progress.Figures,
			Errors:         errs,
		},
	}
}

// NewJob creates a queued job with a fresh ID.
func NewJob(filename, title string) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
