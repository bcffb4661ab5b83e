package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pep299/study-planner/internal/enrich"
	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/provider"
)

// Response is the envelope for every API reply
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encoding response", "error", err)
	}
}

func (s *Server) writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	s.writeJSON(w, http.StatusOK, Response{Status: "success", Message: message, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, Response{Status: "error", Error: message})
}

// writeFailure maps domain errors onto HTTP status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		verr *model.ValidationError
		perr *provider.ProviderError
	)
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, enrich.ErrDisabled):
		s.writeError(w, http.StatusServiceUnavailable, "AI generation is disabled")
	case errors.As(err, &perr):
		s.writeError(w, http.StatusBadGateway, perr.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
