// Package mockserver implements a local stand-in for the analysis
// service: the same HTTP and websocket surface, backed by the
// deterministic scorer. Demo deployments and integration tests run
// against it instead of the real service.
package mockserver

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/backend"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/storage"
)

type App struct {
	Storage       storage.Storage
	UploadDir     string
	MaxUploadSize int64
	AuthToken     string

	analyzer *backend.MockAnalyzer

	mu         sync.RWMutex
	detections map[string]*detection.AnalysisPayload
	files      map[string]string // detection id -> stored filename
}

func NewApp(store storage.Storage, uploadDir string, maxUploadSize int64, authToken string) *App {
	return &App{
		Storage:       store,
		UploadDir:     uploadDir,
		MaxUploadSize: maxUploadSize,
		AuthToken:     authToken,
		analyzer:      backend.NewMockAnalyzer(),
		detections:    make(map[string]*detection.AnalysisPayload),
		files:         make(map[string]string),
	}
}

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Post("/api/detect/image", app.DetectHandler(detection.MediaImage))
	r.Post("/api/detect/video", app.DetectHandler(detection.MediaVideo))
	r.Post("/api/detect/audio", app.DetectHandler(detection.MediaAudio))
	r.Get("/api/detect/{id}", app.GetDetectionHandler)
	r.Get("/api/detect/{id}/file", app.GetDetectionFileHandler)
	r.Post("/api/report/{id}", app.ReportHandler)

	r.Get("/api/live", app.LiveHandler)

	return r
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) storeDetection(p *detection.AnalysisPayload, filename string) {
	app.mu.Lock()
	app.detections[p.ID] = p
	app.files[p.ID] = filename
	app.mu.Unlock()
}

func (app *App) detection(id string) (*detection.AnalysisPayload, string, bool) {
	app.mu.RLock()
	defer app.mu.RUnlock()
	p, ok := app.detections[id]
	return p, app.files[id], ok
}
