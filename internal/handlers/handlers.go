package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/model"
)

const maxBodyBytes = 1 << 20

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// createStudyPlanHandler generates a study plan
func (s *Server) createStudyPlanHandler(w http.ResponseWriter, r *http.Request) {
	opts := model.DefaultOptions()
	if err := decodeBody(r, &opts); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	result, err := s.planner.Generate(r.Context(), opts)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeSuccess(w, "Study plan generated", result)
}

type researchRequest struct {
	Topic string `json:"topic"`
	Depth int    `json:"depth"`
}

// researchHandler returns the research bundle for a topic
func (s *Server) researchHandler(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	bundle, err := s.planner.Research(r.Context(), req.Topic, req.Depth)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeSuccess(w, "Research complete", bundle)
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

// translateHandler translates free text
func (s *Server) translateHandler(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	translated, err := s.planner.Translate(r.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeSuccess(w, "", map[string]string{"translated_text": translated})
}

// trendingTopicsHandler lists suggested topics
func (s *Server) trendingTopicsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeSuccess(w, "", s.planner.TrendingTopics())
}

// cacheStatsHandler returns page cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.planner.PageCacheStats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Error getting cache stats: "+err.Error())
		return
	}
	s.writeSuccess(w, "", stats)
}

// configHandler returns current configuration (without sensitive data)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	desc, enabled := s.planner.Describe()

	data := map[string]interface{}{
		"config":        s.config,
		"provider":      desc,
		"ai_generation": enabled,
	}
	if s.config != nil {
		data["openrouter_api_key"] = logger.MaskSecret(s.config.OpenRouterAPIKey)
		data["gemini_api_key"] = logger.MaskSecret(s.config.GeminiAPIKey)
	}

	s.writeSuccess(w, "", data)
}
