package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/docproc-labs/docproc/internal/api/handler"
	apimw "github.com/docproc-labs/docproc/internal/api/middleware"
	"github.com/docproc-labs/docproc/internal/pipeline"
	"github.com/docproc-labs/docproc/internal/store"
	minioclient "github.com/docproc-labs/docproc/internal/store/minio"
)

// RouterDeps holds optional dependencies for the router. Uploads require
// object storage; without a producer, uploaded documents sit until a worker
// trigger arrives some other way.
type RouterDeps struct {
	MinIO          *minioclient.Client
	Producer       *pipeline.Producer
	UploadMaxBytes int64
}

func NewRouter(logger *slog.Logger, s *store.Store, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps == nil {
		deps = &RouterDeps{}
	}

	reader := pipeline.NewStatusReader(s)
	docs := apihandler.NewDocumentHandler(logger, s, reader, deps.MinIO, deps.Producer, deps.UploadMaxBytes)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", docs.List)
			if deps.MinIO != nil {
				r.Post("/", docs.Upload)
			}
			r.Get("/{documentID}", docs.Get)
		})
	})

	return r
}
