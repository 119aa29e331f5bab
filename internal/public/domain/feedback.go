package domain

import "time"

// Hotel represents a publicly listed hotel with embedded feedback stats.
type Hotel struct {
	ID          string
	Name        string
	Location    string
	Description string
	PhotoURLs   []string
	Stats       HotelStats
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HotelStats keeps denormalized aggregates refreshed on every submission.
type HotelStats struct {
	FeedbackCount  int
	AvgRating      *float64
	LastFeedbackAt *time.Time
}

// Feedback represents a guest submission in the public context.
type Feedback struct {
	ID         string
	Name       string
	Email      string
	HotelID    string
	HotelName  string
	RoomNumber string
	StayDate   string
	Ratings    map[string]int
	Comments   string
	Status     string
	UserID     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AverageRating は在中カテゴリの算術平均。受付通知の表示に使う。
func (f Feedback) AverageRating() float64 {
	if len(f.Ratings) == 0 {
		return 0
	}
	total := 0
	for _, rating := range f.Ratings {
		total += rating
	}
	return float64(total) / float64(len(f.Ratings))
}
