package admin

import (
	"context"
	"log"
	"sync"

	"github.com/go-chi/chi/v5"
	adminapp "github.com/stayscope/guest-feedback-services/api/internal/admin/application"
)

// MirrorControl はハンドラーから見たミラーの操作面。強制再取得と状態参照のみを許す。
type MirrorControl interface {
	Refresh(ctx context.Context)
	IsLoading() bool
	LastError() string
	Count() int
}

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger          *log.Logger
	feedbackService adminapp.FeedbackService
	exportService   adminapp.ExportService
	mirror          MirrorControl

	jobsMu sync.Mutex
	jobs   map[string]*exportJob
}

// Config provides dependencies for Handler.
type Config struct {
	Logger          *log.Logger
	FeedbackService adminapp.FeedbackService
	ExportService   adminapp.ExportService
	Mirror          MirrorControl
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:          cfg.Logger,
		feedbackService: cfg.FeedbackService,
		exportService:   cfg.ExportService,
		mirror:          cfg.Mirror,
		jobs:            make(map[string]*exportJob),
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/feedback", h.feedbackListHandler())
	r.Get("/feedback/metrics", h.feedbackMetricsHandler())
	r.Post("/feedback/refresh", h.feedbackRefreshHandler())
	r.Get("/feedback/{id}", h.feedbackDetailHandler())
	r.Patch("/feedback/{id}/status", h.feedbackStatusUpdateHandler())
	r.Get("/feedback/{id}/export", h.feedbackExportOneHandler())
	r.Post("/feedback/export", h.exportCreateHandler())
	r.Get("/feedback/export/{jobId}", h.exportStatusHandler())
	r.Get("/feedback/export/{jobId}/download", h.exportDownloadHandler())
	r.Post("/feedback/backup", h.backupCreateHandler())
	r.Get("/feedback/backup/last", h.backupLastHandler())
}
