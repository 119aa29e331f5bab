package public

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	publicapp "github.com/stayscope/guest-feedback-services/api/internal/public/application"
)

// Notifier は受付完了などの利用者向け通知面。
type Notifier interface {
	Info(ctx context.Context, title, message string)
	Error(ctx context.Context, title, message string)
}

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger           *log.Logger
	hotelQueries     publicapp.HotelQueryService
	feedbackCommands publicapp.FeedbackCommandService
	notifier         Notifier
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger           *log.Logger
	HotelQueries     publicapp.HotelQueryService
	FeedbackCommands publicapp.FeedbackCommandService
	Notifier         Notifier
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:           cfg.Logger,
		hotelQueries:     cfg.HotelQueries,
		feedbackCommands: cfg.FeedbackCommands,
		notifier:         cfg.Notifier,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/hotels", h.hotelListHandler())
	r.Get("/hotels/{id}", h.hotelDetailHandler())
	r.Post("/feedback", h.feedbackCreateHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())
}
