package cloudfunctions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	// Set up test environment variables
	os.Setenv("AI_PROVIDER", "ollama")
	os.Setenv("USE_AI_GENERATION", "false")
	os.Setenv("CACHE_TYPE", "memory")
	os.Setenv("CACHE_DURATION_HOURS", "1")
	os.Setenv("LOG_MODE", "production")

	// Run tests
	code := m.Run()

	// Clean up
	os.Unsetenv("AI_PROVIDER")
	os.Unsetenv("USE_AI_GENERATION")
	os.Unsetenv("CACHE_TYPE")
	os.Unsetenv("CACHE_DURATION_HOURS")
	os.Unsetenv("LOG_MODE")

	os.Exit(code)
}

func decodeBody(t testing.TB, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return response
}

func TestGenerateStudyPlanHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	GenerateStudyPlan(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeBody(t, w)
	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", response["status"])
	}

	if response["version"] != "v1.0.0" {
		t.Errorf("Expected version 'v1.0.0', got '%v'", response["version"])
	}
}

func TestGenerateStudyPlanInvalidRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/invalid/route", nil)
	w := httptest.NewRecorder()

	GenerateStudyPlan(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGenerateStudyPlanCacheStats(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/cache/stats", nil)
	w := httptest.NewRecorder()

	GenerateStudyPlan(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	data, ok := decodeBody(t, w)["data"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected 'data' object in response")
	}

	if data["backend"] != "memory" {
		t.Errorf("Expected backend 'memory', got '%v'", data["backend"])
	}

	if _, ok := data["total_entries"]; !ok {
		t.Error("Expected 'total_entries' field in cache stats")
	}
}

func TestGenerateStudyPlanTemplatePlan(t *testing.T) {
	body := `{"topic":"Python Programming","duration_weeks":4}`
	req := httptest.NewRequest("POST", "/api/v1/study-plans", strings.NewReader(body))
	w := httptest.NewRecorder()

	GenerateStudyPlan(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["is_fallback"] != true {
		t.Error("Expected a template plan with AI generation disabled")
	}

	plan := data["plan"].(map[string]interface{})
	milestones := plan["milestones"].([]interface{})
	if len(milestones) != 4 {
		t.Errorf("Expected 4 milestones, got %d", len(milestones))
	}
	if !strings.Contains(plan["summary"].(string), "[FALLBACK TEMPLATE]") {
		t.Errorf("Expected fallback marker in summary, got %q", plan["summary"])
	}
}

func TestGenerateStudyPlanMissingTopic(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/study-plans", strings.NewReader(`{"duration_weeks":4}`))
	w := httptest.NewRecorder()

	GenerateStudyPlan(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGenerateStudyPlanConfigEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	w := httptest.NewRecorder()

	GenerateStudyPlan(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	data := decodeBody(t, w)["data"].(map[string]interface{})
	cfg, ok := data["config"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected 'config' object in response")
	}

	if cfg["cache_type"] != "memory" {
		t.Errorf("Expected cache_type 'memory', got '%v'", cfg["cache_type"])
	}

	// Should not contain raw credentials
	if _, ok := cfg["gemini_api_key"]; ok {
		t.Error("Config should not expose 'gemini_api_key'")
	}
}

// Benchmark tests

func BenchmarkGenerateStudyPlanHealthCheck(b *testing.B) {
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		w := httptest.NewRecorder()
		GenerateStudyPlan(w, req)

		if w.Code != http.StatusOK {
			b.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
	}
}
