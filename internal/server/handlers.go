package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/report"
	"github.com/dotcommander/evalpanel/internal/snapshot"
	"github.com/dotcommander/evalpanel/internal/template"
	"github.com/dotcommander/evalpanel/internal/types"
)

// errNoTemplate is returned when a snapshot is opened before any template
// was uploaded.
var errNoTemplate = errors.New("no template loaded")

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	body, name, err := uploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer body.Close()

	format, err := uploadFormat(r, name)
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	groups, err := template.Parse(body, format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.groups = groups
	s.key = ""
	e := s.store.LoadTemplate(groups)

	v := newEvaluationView(e, s.key)
	v.Warnings = template.Warnings(groups)
	writeJSON(w, http.StatusOK, v)
}

// uploadedFile returns the "file" part of a multipart form, or the raw body.
func uploadedFile(r *http.Request) (io.ReadCloser, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing form file: %w", err)
		}
		return f, hdr.Filename, nil
	}
	return r.Body, "", nil
}

// uploadFormat picks the template format from the query, the file name, or
// the content type, in that order.
func uploadFormat(r *http.Request, name string) (template.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return template.DetectFormat("template." + q)
	}
	if name != "" {
		return template.DetectFormat(filepath.Base(name))
	}
	switch ct := r.Header.Get("Content-Type"); {
	case strings.Contains(ct, "yaml"):
		return template.FormatYAML, nil
	case strings.Contains(ct, "spreadsheetml"), strings.Contains(ct, "octet-stream"), ct == "":
		return template.FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", template.ErrMalformed, ct)
	}
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Active()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, newEvaluationView(e, s.key))
}

func (s *Server) handleSetHeader(w http.ResponseWriter, r *http.Request) {
	var p headerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid header payload: %w", err))
		return
	}
	at, err := evaluation.ParseDate(strings.TrimSpace(p.EvaluatedAt))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h := evaluation.Header{
		Project:     strings.TrimSpace(p.Project),
		Client:      strings.TrimSpace(p.Client),
		Responsible: strings.TrimSpace(p.Responsible),
		EvaluatedAt: at,
	}
	if err := s.store.SetHeader(h); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, newHeaderView(h))
}

func (s *Server) handleSetResponse(w http.ResponseWriter, r *http.Request) {
	groupID := pathParam(r, "group")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid item index %q", chi.URLParam(r, "index")))
		return
	}

	var p responsePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid response payload: %w", err))
		return
	}
	resp, err := types.ParseResponse(p.Response)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", evaluation.ErrInvalidResponse, err))
		return
	}

	if err := s.store.SetResponse(groupID, index, resp, p.Justification); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	e, _ := s.store.Active()
	g, _ := e.Group(groupID)
	writeJSON(w, http.StatusOK, evaluation.GroupDisplay(g))
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Active()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	overall, status := evaluation.Overall(e)
	writeJSON(w, http.StatusOK, displayView{
		Groups:        evaluation.ComputeDisplay(e),
		Overall:       overall,
		OverallStatus: status,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Active()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	rep := report.Build(e, s.key)

	switch format := r.URL.Query().Get("format"); format {
	case "", types.FormatJSON:
		writeJSON(w, http.StatusOK, rep)
	case types.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_ = report.NewMarkdownFormatter(true, "", w).Format(rep)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported report format: %s", format))
	}
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	keys, err := s.snapshots.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var p savePayload
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid snapshot payload: %w", err))
			return
		}
	}

	rec, err := s.store.Snapshot()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	key := p.Key
	if key == "" {
		key = snapshot.NewKey(s.now(), s.keyLayout)
	}
	if err := s.snapshots.Save(r.Context(), key, rec, p.Overwrite); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.key = key
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (s *Server) handleOpenSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.groups == nil {
		writeError(w, http.StatusConflict, errNoTemplate)
		return
	}

	key := pathParam(r, "key")
	rec, err := s.snapshots.Load(r.Context(), key)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	e, dropped := s.store.Hydrate(s.groups, rec)
	s.key = key

	v := newEvaluationView(e, key)
	v.Dropped = dropped
	writeJSON(w, http.StatusOK, v)
}

// pathParam returns a decoded chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, evaluation.ErrNoActive), errors.Is(err, snapshot.ErrExists):
		return http.StatusConflict
	case errors.Is(err, evaluation.ErrGroupNotFound), errors.Is(err, evaluation.ErrItemOutOfRange),
		errors.Is(err, snapshot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, evaluation.ErrInvalidResponse), errors.Is(err, snapshot.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, template.ErrMalformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
