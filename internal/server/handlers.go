package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/uxlens/journeyflow/pkg/buildinfo"
	"github.com/uxlens/journeyflow/pkg/cache"
	"github.com/uxlens/journeyflow/pkg/errors"
	"github.com/uxlens/journeyflow/pkg/flow"
	"github.com/uxlens/journeyflow/pkg/journey"
	"github.com/uxlens/journeyflow/pkg/pipeline"
	"github.com/uxlens/journeyflow/pkg/store"
)

// maxBodyBytes bounds journey payloads. Large UX tests stay well under this.
const maxBodyBytes = 32 << 20

// =============================================================================
// Request / Response Types
// =============================================================================

// computeRequest is the body of POST /v1/flow.
type computeRequest struct {
	// Project labels the stored report. Optional; without it the layout is
	// computed but not persisted.
	Project string `json:"project,omitempty"`

	// Journeys is the input set. Required.
	Journeys []journey.Journey `json:"journeys"`

	// Flow overrides the server's default layout tuning.
	Flow flow.Options `json:"flow,omitempty"`
}

// flowResponse is the body of the flow endpoints.
type flowResponse struct {
	ReportID     string      `json:"reportId,omitempty"`
	Project      string      `json:"project,omitempty"`
	Journeys     int         `json:"journeys"`
	JourneysHash string      `json:"journeysHash,omitempty"`
	Cached       bool        `json:"cached"`
	Flow         flow.Result `json:"flow"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

// handleComputeFlow computes a layout from journeys in the request body and,
// when a project is named and a store is configured, persists the report.
func (s *Server) handleComputeFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req computeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if req.Journeys == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "journeys is required"))
		return
	}
	if req.Project != "" {
		if err := errors.ValidateProjectName(req.Project); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	for i, j := range req.Journeys {
		if err := j.Validate(); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidJourney, err, "journey %d", i))
			return
		}
	}

	opts := pipeline.Options{
		Project:  req.Project,
		Journeys: req.Journeys,
		Flow:     s.tuning(req.Flow),
		Logger:   s.logger,
	}
	result, hit, err := s.runner.ComputeWithCacheInfo(ctx, req.Journeys, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := flowResponse{
		Project:  req.Project,
		Journeys: len(req.Journeys),
		Cached:   hit,
		Flow:     result,
	}
	if data, err := journey.MarshalJourneys(req.Journeys); err == nil {
		resp.JourneysHash = cache.Hash(data)
	}

	if req.Project != "" && s.store != nil {
		report := store.NewReport(req.Project, len(req.Journeys), result)
		if err := s.store.Save(ctx, report); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save report"))
			return
		}
		resp.ReportID = report.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleProjectFlow serves the latest stored layout for a project. With
// ?refresh=true (or when nothing is stored yet) journeys are fetched from
// the analytics backend and a fresh report is computed and saved.
func (s *Server) handleProjectFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := chi.URLParam(r, "project")
	if err := errors.ValidateProjectName(project); err != nil {
		s.writeError(w, r, err)
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	if !refresh && s.store != nil {
		report, err := s.store.Latest(ctx, project)
		if err == nil {
			s.writeJSON(w, http.StatusOK, flowResponse{
				ReportID: report.ID,
				Project:  report.Project,
				Journeys: report.Journeys,
				Cached:   true,
				Flow:     report.Flow,
			})
			return
		}
		if err != store.ErrNoReports {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load report"))
			return
		}
		// Nothing stored yet: fall through to a fresh fetch.
	}

	if s.fetcher == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeProjectNotFound,
			"no stored report for %q and no analytics backend configured", project))
		return
	}

	journeys, err := s.fetcher.FetchJourneys(ctx, project, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Project:  project,
		Journeys: journeys,
		Refresh:  refresh,
		Flow:     s.tuning(flow.Options{}),
		Logger:   s.logger,
	}
	result, hit, err := s.runner.ComputeWithCacheInfo(ctx, journeys, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := flowResponse{
		Project:  project,
		Journeys: len(journeys),
		Cached:   hit,
		Flow:     result,
	}
	if data, err := journey.MarshalJourneys(journeys); err == nil {
		resp.JourneysHash = cache.Hash(data)
	}

	if s.store != nil {
		report := store.NewReport(project, len(journeys), result)
		if err := s.store.Save(ctx, report); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save report"))
			return
		}
		resp.ReportID = report.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateReportID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeReportNotFound, "report storage is not configured"))
		return
	}

	report, err := s.store.Get(r.Context(), id)
	if err == store.ErrNotFound {
		s.writeError(w, r, errors.New(errors.ErrCodeReportNotFound, "report %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load report"))
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	project := chi.URLParam(r, "project")
	if err := errors.ValidateProjectName(project); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, []*store.Report{})
		return
	}

	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", q))
			return
		}
		limit = n
	}

	reports, err := s.store.List(r.Context(), project, limit)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "list reports"))
		return
	}
	if reports == nil {
		reports = []*store.Report{}
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateReportID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeReportNotFound, "report storage is not configured"))
		return
	}

	err := s.store.Delete(r.Context(), id)
	if err == store.ErrNotFound {
		s.writeError(w, r, errors.New(errors.ErrCodeReportNotFound, "report %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "delete report"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// tuning merges per-request layout tuning with the server defaults.
func (s *Server) tuning(override flow.Options) flow.Options {
	if override == (flow.Options{}) {
		return s.flow
	}
	return override
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", requestIDFromContext(r.Context()))
	}
	s.writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: requestIDFromContext(r.Context()),
	})
}
