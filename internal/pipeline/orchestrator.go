package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/structex/internal/config"
	"github.com/dgallion1/structex/internal/source"
)

// Orchestrator manages async parse jobs over a bounded queue of
// worker goroutines.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	runner *Runner
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start before Submit.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		runner: NewRunner(cfg, log),
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Runner returns the underlying runner for synchronous parses.
func (o *Orchestrator) Runner() *Runner {
	return o.runner
}

// process runs one job to completion or failure.
func (o *Orchestrator) process(ctx context.Context, job *Job) {
	defer job.clearInput()

	file, regionsData, opts := job.Input()
	log := o.log.With("job_id", job.ID, "filename", job.Filename)
	log.Info("job started", "bytes", len(file))

	job.SetStatus(StatusParsing, "loading")
	loader, err := source.ForFile(job.Filename)
	if err != nil {
		o.fail(job, log, err)
		return
	}
	pages, err := loader.Load(bytes.NewReader(file), job.Filename)
	if err != nil {
		o.fail(job, log, fmt.Errorf("load %s: %w", job.Filename, err))
		return
	}
	if len(regionsData) > 0 {
		if err := source.MergeRegions(bytes.NewReader(regionsData), pages, o.log); err != nil {
			o.fail(job, log, fmt.Errorf("merge regions: %w", err))
			return
		}
	}

	job.SetStatus(StatusParsing, "parsing_pages")
	doc, err := o.runner.Run(ctx, pages, opts, job.SetPageProgress)
	if err != nil {
		o.fail(job, log, err)
		return
	}

	job.SetStatus(StatusAssembling, "assembling")
	job.SetResult(doc)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed",
		"chapters", len(doc.Chapters),
		"tables", len(doc.Tables),
		"figures", len(doc.Figures))
}

func (o *Orchestrator) fail(job *Job, log *slog.Logger, err error) {
	log.Error("job failed", "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, "error")
}
