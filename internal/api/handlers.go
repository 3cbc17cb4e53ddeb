package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/structex/internal/pipeline"
	"github.com/dgallion1/structex/internal/source"
	"github.com/go-chi/chi/v5"
)

// upload is the decoded multipart payload shared by the sync and async
// parse endpoints.
type upload struct {
	filename string
	file     []byte
	regions  []byte
	opts     pipeline.Options
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	loader, err := source.ForFile(up.filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	pages, err := loader.Load(bytes.NewReader(up.file), up.filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("load %s: %v", up.filename, err), http.StatusUnprocessableEntity)
		return
	}
	if len(up.regions) > 0 {
		if err := source.MergeRegions(bytes.NewReader(up.regions), pages, s.log); err != nil {
			jsonError(w, fmt.Sprintf("merge regions: %v", err), http.StatusBadRequest)
			return
		}
	}

	doc, err := s.orchestrator.Runner().Run(r.Context(), pages, up.opts, nil)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !source.IsSupportedExtension(up.filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(up.filename)), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(up.filename, up.opts.Title)
	job.SetInput(up.file, up.regions, up.opts)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"filename": snap.Filename,
		"progress": snap.Progress,
	})
}

func (s *Server) handleJobDocument(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	doc := job.Document()
	if doc == nil {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("document not ready (status: %s)", snap.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// readUpload decodes the multipart form: "file" (required), "regions"
// (optional JSON sidecar), and the run options. Writes the error
// response itself and returns ok=false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	// Limit total request size, with extra headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return upload{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}

	up := upload{filename: filename, file: data}

	if rf, _, err := r.FormFile("regions"); err == nil {
		up.regions, err = io.ReadAll(io.LimitReader(rf, s.cfg.MaxUploadBytes))
		rf.Close()
		if err != nil {
			jsonError(w, "failed to read regions", http.StatusInternalServerError)
			return upload{}, false
		}
	}

	up.opts = pipeline.Options{
		Title:     s.cfg.DocumentTitle,
		Version:   s.cfg.DocumentVersion,
		StartPage: s.cfg.StartPage,
		PageCount: s.cfg.PageCount,
	}
	if up.opts.StartPage < 1 {
		up.opts.StartPage = 1
	}
	if v := r.FormValue("title"); v != "" {
		up.opts.Title = v
	}
	if v := r.FormValue("version"); v != "" {
		up.opts.Version = v
	}
	if v := r.FormValue("start_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "start_page must be a positive integer", http.StatusBadRequest)
			return upload{}, false
		}
		up.opts.StartPage = n
	}
	if v := r.FormValue("page_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "page_count must be a non-negative integer", http.StatusBadRequest)
			return upload{}, false
		}
		up.opts.PageCount = n
	}
	return up, true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
