package application

import (
	"context"

	"github.com/stayscope/guest-feedback-services/api/internal/public/domain"
)

type hotelQueryService struct {
	repo HotelRepository
}

func NewHotelQueryService(repo HotelRepository) HotelQueryService {
	return &hotelQueryService{repo: repo}
}

func (s *hotelQueryService) List(ctx context.Context, filter HotelFilter) ([]domain.Hotel, error) {
	return s.repo.Find(ctx, filter)
}

func (s *hotelQueryService) Detail(ctx context.Context, id string) (*domain.Hotel, error) {
	return s.repo.FindByID(ctx, id)
}
