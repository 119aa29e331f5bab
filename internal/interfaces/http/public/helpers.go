package public

import (
	"github.com/stayscope/guest-feedback-services/api/internal/public/domain"
)

// buildHotelSummaryResponse はドメイン Hotel を一覧カード表現へ変換する。
func buildHotelSummaryResponse(hotel domain.Hotel) hotelSummaryResponse {
	return hotelSummaryResponse{
		ID:             hotel.ID,
		Name:           hotel.Name,
		Location:       hotel.Location,
		PhotoURLs:      append([]string{}, hotel.PhotoURLs...),
		FeedbackCount:  hotel.Stats.FeedbackCount,
		AvgRating:      hotel.Stats.AvgRating,
		LastFeedbackAt: hotel.Stats.LastFeedbackAt,
	}
}

// hotelDomainToDetailResponse は詳細画面向けの表現へ変換する。
func hotelDomainToDetailResponse(hotel domain.Hotel) hotelDetailResponse {
	return hotelDetailResponse{
		hotelSummaryResponse: buildHotelSummaryResponse(hotel),
		Description:          hotel.Description,
		CreatedAt:            hotel.CreatedAt,
		UpdatedAt:            hotel.UpdatedAt,
	}
}
