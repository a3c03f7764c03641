package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/normalize"
	"github.com/altin/brunoview/internal/search"
	"github.com/altin/brunoview/internal/summary"
)

type Handler struct {
	store     *Store
	file      string
	publicDir string
	log       *zap.Logger
}

type queryResponse struct {
	Total   int             `json:"total"`
	Matched int             `json:"matched"`
	Filters string          `json:"filters"`
	Summary summary.Summary `json:"summary"`
	Results []model.Result  `json:"results"`
}

type summaryResponse struct {
	File     string          `json:"file"`
	Runs     int             `json:"runs"`
	Skipped  int             `json:"skipped"`
	Summary  summary.Summary `json:"summary"`
	Facets   summary.Facets  `json:"facets"`
	Duration string          `json:"avgDuration"`
}

// HandleResults streams the configured results file as-is.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	if h.file == "" {
		http.Error(w, "No results file configured", http.StatusNotFound)
		return
	}
	f, err := os.Open(h.file)
	if err != nil {
		h.log.Warn("open results file", zap.Error(err))
		http.Error(w, "Results file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(api.ResultsFileHeader, filepath.Base(h.file))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	if _, err := io.Copy(w, f); err != nil {
		h.log.Debug("stream results", zap.Error(err))
	}
}

func (h *Handler) HandleNormalized(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w)
	if !ok {
		return
	}
	res, found := ds.ByID(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleQuery filters and sorts the dataset. limit and offset page the
// matched results; the summary always covers every match.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.store.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "No results loaded")
		return
	}
	ds := snap.Dataset
	params := r.URL.Query()
	f, err := search.ParseQuery(params).Filters()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(params.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := intParam(params.Get("limit"), -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	matched := snap.Engine.Filter(ds.Results, f)
	page := matched[min(offset, len(matched)):]
	if limit >= 0 && limit < len(page) {
		page = page[:limit]
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Total:   len(ds.Results),
		Matched: len(matched),
		Filters: f.Summary(),
		Summary: summary.Summarize(matched),
		Results: page,
	})
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w)
	if !ok {
		return
	}
	doc, _, _ := h.store.Document()
	s := summary.Summarize(ds.Results)
	writeJSON(w, http.StatusOK, summaryResponse{
		File:     doc.Name,
		Runs:     len(ds.Runs),
		Skipped:  ds.Skipped,
		Summary:  s,
		Facets:   summary.BuildFacets(ds.Results),
		Duration: summary.FormatDuration(s.AvgDuration),
	})
}

func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if h.file == "" {
		writeError(w, http.StatusNotFound, "No results file configured")
		return
	}
	if err := h.store.Reload(r.Context()); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, api.ErrCouldNotLoad):
			status = http.StatusBadGateway
		case errors.Is(err, normalize.ErrNotObjectOrArray),
			errors.Is(err, normalize.ErrNoRuns),
			errors.Is(err, normalize.ErrMissingResults):
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	ds, _ := h.store.Dataset()
	writeJSON(w, http.StatusOK, map[string]int{
		"runs":    len(ds.Runs),
		"results": len(ds.Results),
		"skipped": ds.Skipped,
	})
}

// HandleStatic serves the public directory. Leading parent segments are
// stripped so requests cannot leave it.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if h.publicDir == "" {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, "brunoview\n\nGET /api/results\nGET /api/normalized\nGET /api/query\nGET /api/summary\nPOST /api/reload\n")
			return
		}
		http.NotFound(w, r)
		return
	}

	requested := r.URL.Path
	if requested == "/" {
		requested = "/index.html"
	}
	clean := strings.TrimLeft(path.Clean("/"+requested), "/")
	for strings.HasPrefix(clean, "../") {
		clean = strings.TrimPrefix(clean, "../")
	}
	full := filepath.Join(h.publicDir, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, full)
}

func (h *Handler) dataset(w http.ResponseWriter) (model.Dataset, bool) {
	ds, ok := h.store.Dataset()
	if !ok {
		writeError(w, http.StatusNotFound, "No results loaded")
		return ds, false
	}
	return ds, true
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
