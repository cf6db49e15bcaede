package server

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"FolioScraper/internal/backend"
	"FolioScraper/internal/broker"
	"FolioScraper/internal/extract"
	"FolioScraper/internal/model"
	"FolioScraper/internal/recorder"
)

// Pipeline runs one full extraction invocation.
type Pipeline interface {
	Extract(ctx context.Context) (*extract.Result, error)
}

// Server exposes the extraction pipeline over HTTP.
type Server struct {
	pipeline Pipeline
	detector *broker.Detector
	recorder recorder.Recorder
	backend  *backend.Client
	router   chi.Router
}

// New wires the HTTP surface. The backend client may be nil when no backend
// is configured; forwarding is then skipped.
func New(p Pipeline, d *broker.Detector, rec recorder.Recorder, bk *backend.Client) *Server {
	s := &Server{
		pipeline: p,
		detector: d,
		recorder: rec,
		backend:  bk,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/api/extract", s.handleExtract)
	r.Get("/api/broker", s.handleBroker)
	r.Get("/health", s.handleHealth)
	s.router = r
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

// extractResponse is the caller-facing contract: empty data with no error
// means "ran to completion, found nothing".
type extractResponse struct {
	Data  []model.Holding `json:"data"`
	Error string          `json:"error,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	res, err := s.pipeline.Extract(r.Context())
	if err != nil {
		log.Printf("[ERROR] extraction failed: %v", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, extractResponse{Data: []model.Holding{}, Error: err.Error()})
		return
	}

	if len(res.Holdings) > 0 {
		s.sideEffects(r.Context(), res)
	}

	data := res.Holdings
	if data == nil {
		data = []model.Holding{}
	}
	render.JSON(w, r, extractResponse{Data: data})
}

// sideEffects records the snapshot and forwards holdings downstream. Both are
// best-effort; a failure here never changes the extraction response.
func (s *Server) sideEffects(ctx context.Context, res *extract.Result) {
	if s.recorder != nil {
		err := s.recorder.RecordExtraction(&recorder.Snapshot{
			ID:       res.ID,
			Broker:   res.Broker,
			Attempts: res.Attempts,
			Duration: res.Duration,
			Holdings: res.Holdings,
		})
		if err != nil {
			log.Printf("[ERROR] record extraction: %v", err)
		}
	}
	if s.backend != nil {
		if err := s.backend.SaveHoldings(ctx, res.Holdings); err != nil {
			log.Printf("[WARN] save holdings downstream: %v", err)
		}
	}
}

func (s *Server) handleBroker(w http.ResponseWriter, r *http.Request) {
	hostname := r.URL.Query().Get("hostname")
	if hostname == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "hostname query parameter is required"})
		return
	}
	render.JSON(w, r, map[string]string{
		"hostname": hostname,
		"broker":   string(s.detector.Detect(hostname)),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]bool{"ok": true})
}
