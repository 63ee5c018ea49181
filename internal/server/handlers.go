package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"blochview/internal/catalog"
	"blochview/internal/circuit"
	"blochview/internal/processor"
)

// maxBodyBytes caps a circuit description.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type healthBody struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error","kind":"internal"}`)
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Endpoint not found"})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, healthBody{
		Message: "Quantum State Visualizer API",
		Status:  "running",
		Version: Version,
	})
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Examples())
}

func (s *Server) handleGates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.SupportedGates())
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err), Kind: "bad_request"})
		return
	}

	// An empty body, null or {} carries no circuit at all.
	var fields map[string]json.RawMessage
	if len(bytes.TrimSpace(raw)) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No circuit data provided", Kind: "bad_request"})
		return
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err), Kind: "bad_request"})
		return
	}
	if len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No circuit data provided", Kind: "bad_request"})
		return
	}

	var spec circuit.Spec
	if err := json.Unmarshal(raw, &spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err), Kind: "bad_request"})
		return
	}

	key, cacheable := s.cache.key(spec)
	if cacheable {
		if body, ok := s.cache.get(key); ok {
			s.metrics.cache.WithLabelValues("hit").Inc()
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, http.StatusOK, body)
			return
		}
		s.metrics.cache.WithLabelValues("miss").Inc()
	}

	res, err := s.sim.Simulate(r.Context(), spec)
	if err != nil {
		status, body := s.classify(r.Context(), err)
		s.metrics.simulations.WithLabelValues(body.Kind).Inc()
		writeJSON(w, status, body)
		return
	}
	s.metrics.simulations.WithLabelValues("ok").Inc()
	s.metrics.qubits.Observe(float64(res.NumQubits))

	body, err := json.Marshal(res)
	if err != nil {
		s.logger.Error("encode result", "err", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Kind: "internal"})
		return
	}
	if cacheable {
		s.cache.set(key, body)
		w.Header().Set("X-Cache", "MISS")
	}
	writeRaw(w, http.StatusOK, body)
}

// classify maps a processing error to an HTTP status and body. Validation
// problems are the client's fault; everything else is ours.
func (s *Server) classify(ctx context.Context, err error) (int, errorBody) {
	var verr *circuit.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Kind: verr.Code()}
	case circuit.IsValidation(err):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Kind: circuit.Code(err)}
	case errors.Is(err, processor.ErrTooManyQubits):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "too_many_qubits"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, errorBody{Error: "Request cancelled", Kind: "canceled"}
	case errors.Is(err, processor.ErrInternalComputation):
		s.logger.Error("internal computation error", "err", err, "request_id", RequestID(ctx))
		return http.StatusInternalServerError, errorBody{Error: "Internal server error", Kind: "internal_computation"}
	default:
		s.logger.Error("unexpected processing error", "err", err, "request_id", RequestID(ctx))
		return http.StatusInternalServerError, errorBody{Error: "Internal server error", Kind: "internal"}
	}
}
