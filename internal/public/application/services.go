package application

import (
	"context"

	"github.com/stayscope/guest-feedback-services/api/internal/public/domain"
)

// HotelRepository は Public コンテキストでホテルを読み取るためのポート。
type HotelRepository interface {
	Find(ctx context.Context, filter HotelFilter) ([]domain.Hotel, error)
	FindByID(ctx context.Context, id string) (*domain.Hotel, error)
}

// FeedbackRepository handles guest submission writes.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
}

// HotelFilter expresses search criteria for hotels.
type HotelFilter struct {
	Keyword string
	Limit   int
}

// HotelQueryService はホテル参照ユースケースを提供するリーダーモデル。
type HotelQueryService interface {
	List(ctx context.Context, filter HotelFilter) ([]domain.Hotel, error)
	Detail(ctx context.Context, id string) (*domain.Hotel, error)
}

// FeedbackCommandService handles the guest submission use-case.
type FeedbackCommandService interface {
	Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*domain.Feedback, error)
}

// SubmitFeedbackCommand captures validated form input.
type SubmitFeedbackCommand struct {
	Name       string
	Email      string
	HotelID    string
	RoomNumber string
	StayDate   string
	Ratings    map[string]int
	Comments   string
	UserID     string
}
