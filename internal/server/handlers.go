package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arcsys-ai/arcsys/graph/store"
)

type analyzeRequest struct {
	Query string `json:"query"`
}

type analyzeResponse struct {
	RunID          string   `json:"run_id"`
	FinalOutput    string   `json:"final_output"`
	Score          float64  `json:"score"`
	RiskScore      float64  `json:"risk_score"`
	IterationCount int      `json:"iteration_count"`
	ProcessingTime float64  `json:"processing_time"`
	ErrorLog       []string `json:"error_log,omitempty"`
}

type runResponse struct {
	RunID          string   `json:"run_id"`
	Step           int      `json:"step"`
	FinalOutput    string   `json:"final_output"`
	Score          float64  `json:"score"`
	RiskScore      float64  `json:"risk_score"`
	IterationCount int      `json:"iteration_count"`
	ErrorLog       []string `json:"error_log,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with a query field")
		return
	}

	query, err := validateQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	runID := uuid.NewString()
	started := time.Now()

	s.logger.Info("analysis started", "run_id", runID, "query_length", len(query))

	final, err := s.runner.Run(r.Context(), runID, query)
	if err != nil {
		s.logger.Error("analysis failed", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "PIPELINE_ERROR", "analysis did not complete")
		return
	}

	elapsed := time.Since(started).Seconds()
	s.logger.Info("analysis completed",
		"run_id", runID,
		"score", final.Score,
		"iterations", final.Iterations,
		"processing_time", elapsed,
	)

	writeJSON(w, http.StatusOK, analyzeResponse{
		RunID:          runID,
		FinalOutput:    final.FinalOutput,
		Score:          final.Score,
		RiskScore:      final.RiskScore,
		IterationCount: final.Iterations,
		ProcessingTime: elapsed,
		ErrorLog:       final.ErrorLog,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	state, step, err := s.store.LoadLatest(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "RUN_NOT_FOUND", "no run with id "+runID)
			return
		}
		s.logger.Error("run lookup failed", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to load run")
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		RunID:          runID,
		Step:           step,
		FinalOutput:    state.FinalOutput,
		Score:          state.Score,
		RiskScore:      state.RiskScore,
		IterationCount: state.Iterations,
		ErrorLog:       state.ErrorLog,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListRuns(r.Context(), 100)
	if err != nil {
		s.logger.Error("run listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to list runs")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, ErrorCode: code})
}
