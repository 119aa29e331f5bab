package public

import "time"

// hotelSummaryResponse は一覧カード向けのホテル表現。
type hotelSummaryResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Location       string     `json:"location,omitempty"`
	PhotoURLs      []string   `json:"photoURLs,omitempty"`
	FeedbackCount  int        `json:"feedbackCount"`
	AvgRating      *float64   `json:"avgRating,omitempty"`
	LastFeedbackAt *time.Time `json:"lastFeedbackAt,omitempty"`
}

type hotelDetailResponse struct {
	hotelSummaryResponse
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type hotelListResponse struct {
	Items []hotelSummaryResponse `json:"items"`
	Total int                    `json:"total"`
}

// createFeedbackRequest はゲスト投稿フォームのリクエスト形。
type createFeedbackRequest struct {
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	HotelID    string         `json:"hotelId"`
	RoomNumber string         `json:"roomNumber"`
	StayDate   string         `json:"stayDate"`
	Ratings    map[string]int `json:"ratings"`
	Comments   string         `json:"comments"`
	UserID     string         `json:"userId"`
}

type createFeedbackResponse struct {
	ID            string    `json:"id"`
	HotelName     string    `json:"hotelName"`
	AverageRating float64   `json:"averageRating"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
