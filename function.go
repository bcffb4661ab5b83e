// Package cloudfunctions exposes the study planner API as a Cloud Function.
package cloudfunctions

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/pep299/study-planner/internal/config"
	"github.com/pep299/study-planner/internal/handlers"
	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/pipeline"
)

func init() {
	functions.HTTP("GenerateStudyPlan", GenerateStudyPlan)
}

var (
	routerOnce sync.Once
	router     http.Handler
	routerErr  error
)

// newRouter builds the pipeline once per instance so the page cache and
// provider clients are reused across invocations.
func newRouter() (http.Handler, error) {
	routerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			routerErr = err
			return
		}
		logr, err := logger.New(cfg.LogMode)
		if err != nil {
			routerErr = err
			return
		}
		svc, err := pipeline.NewFromConfig(context.Background(), cfg, logr)
		if err != nil {
			routerErr = err
			return
		}
		router = handlers.NewServer(cfg, svc, logr).SetupRoutes()
	})
	return router, routerErr
}

// GenerateStudyPlan serves the /api/v1 routes
func GenerateStudyPlan(w http.ResponseWriter, r *http.Request) {
	h, err := newRouter()
	if err != nil {
		log.Printf("Failed to initialize: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.ServeHTTP(w, r)
}
