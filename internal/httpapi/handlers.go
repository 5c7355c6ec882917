package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"opsim/internal/history"
	"opsim/internal/queue"
	"opsim/internal/service"
	"opsim/internal/session"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps input validation failures to 400, unknown sessions to 404
// and session apply conflicts to 409.
func writeError(w http.ResponseWriter, err error) {
	kind := service.ErrorKind(err)
	status := http.StatusInternalServerError
	switch {
	case kind != "":
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNoSimulationRuns),
		errors.Is(err, session.ErrNoSuggestion),
		errors.Is(err, session.ErrAdvisoryOnly):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

// maxBodyBytes bounds request bodies; a snapshot of a few hundred queues
// stays well below it.
const maxBodyBytes = 1 << 20

// decode reads a JSON body of at most maxBodyBytes. An empty body leaves v at
// its zero value.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GET /api/current-state
func (s *Server) currentState(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.CurrentState()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// POST /api/simulate
func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req service.SimulateRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	resp, err := s.svc.Simulate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type optimizeRequest struct {
	CurrentState *queue.OperationalState `json:"currentState,omitempty"`
	Seed         *int64                  `json:"seed,omitempty"`
}

// POST /api/optimize
func (s *Server) optimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	res, err := s.svc.Optimize(req.CurrentState, req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/benchmark
func (s *Server) benchmark(w http.ResponseWriter, r *http.Request) {
	var req service.SimulateRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	res, err := s.svc.Benchmark(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type historyRequest struct {
	Hours  int    `json:"hours"`
	Seed   *int64 `json:"seed,omitempty"`
	Bucket string `json:"bucket,omitempty"`
}

// POST /api/historical-data
func (s *Server) historicalData(w http.ResponseWriter, r *http.Request) {
	req := historyRequest{Hours: 24}
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	points, summary, err := s.svc.History(req.Hours, req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	res := map[string]any{
		"summary": summary,
		"points":  points,
	}
	if req.Bucket != "" {
		buckets, err := history.Rollup(points, req.Bucket)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		res["buckets"] = buckets
	}
	writeJSON(w, http.StatusOK, res)
}

type sessionView struct {
	ID                     string                 `json:"id"`
	State                  queue.OperationalState `json:"state"`
	ResourceChangesApplied int                    `json:"resourceChangesApplied"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:                     sess.ID,
		State:                  sess.State(),
		ResourceChangesApplied: sess.ChangesApplied(),
	}
}

// POST /api/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.NewSession()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

// GET /api/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

type sessionSimulateRequest struct {
	ForecastHours *int   `json:"forecastHours,omitempty"`
	Seed          *int64 `json:"seed,omitempty"`
}

// POST /api/sessions/{id}/simulate
func (s *Server) simulateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req sessionSimulateRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	resp, err := s.svc.SimulateSession(sess, req.ForecastHours, req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type applyRequest struct {
	QueueID string `json:"queueId"`
}

// POST /api/sessions/{id}/apply
func (s *Server) applySuggestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req applyRequest
	if err := decode(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	sug, err := s.svc.ApplySuggestion(sess, req.QueueID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": sug,
		"session": viewOf(sess),
	})
}
