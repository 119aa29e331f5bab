package admin

import (
	"math"
	"net/url"
	"strings"
	"time"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
)

// adminFeedbackDomainToResponse はドメインの Feedback を Admin UI 用レスポンスへ変換する。
func adminFeedbackDomainToResponse(record admindomain.Feedback) adminFeedbackResponse {
	avg := math.Round(record.AverageRating()*10) / 10
	return adminFeedbackResponse{
		ID:            record.ID,
		Name:          record.Name,
		Email:         record.Email.String(),
		HotelID:       record.HotelID,
		HotelName:     record.HotelName,
		RoomNumber:    record.RoomNumber,
		StayDate:      record.StayDate,
		Ratings:       map[string]int(record.Ratings.Clone()),
		AverageRating: avg,
		Comments:      record.Comments,
		Status:        record.Status.String(),
		UserID:        record.UserID,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

// parseFilterCriteria はクエリ文字列を絞り込み条件へ写像する。
// 解釈できない値は既定値（絞り込みなし）へ落とし、リクエスト全体は失敗させない。
func parseFilterCriteria(query url.Values) admindomain.FilterCriteria {
	criteria := admindomain.DefaultCriteria()

	criteria.Search = strings.TrimSpace(query.Get("search"))

	if from, ok := parseDateParam(query.Get("dateFrom")); ok {
		criteria.DateFrom = &from
	}
	if to, ok := parseDateParam(query.Get("dateTo")); ok {
		criteria.DateTo = &to
	}

	if status := strings.TrimSpace(query.Get("status")); status != "" {
		if status == admindomain.StatusFilterAll {
			criteria.Status = status
		} else if parsed, err := admindomain.NewStatus(status); err == nil {
			criteria.Status = parsed.String()
		}
	}

	criteria.MinRating, _ = common.ParseRatingBound(query.Get("minRating"), criteria.MinRating)
	criteria.MaxRating, _ = common.ParseRatingBound(query.Get("maxRating"), criteria.MaxRating)

	return criteria
}

// parseDateParam は日付のみ・RFC 3339 の双方を受け付ける。
func parseDateParam(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
