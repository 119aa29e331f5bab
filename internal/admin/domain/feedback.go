package domain

import "time"

// Feedback represents one guest submission managed by the admin pipeline.
type Feedback struct {
	ID         string
	Name       string
	Email      Email
	HotelID    string
	HotelName  string
	RoomNumber string
	StayDate   string
	Ratings    RatingSet
	Comments   string
	Status     Status
	UserID     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AverageRating returns the unrounded mean of all present category ratings.
func (f Feedback) AverageRating() float64 {
	return f.Ratings.Average()
}

// Clone returns a deep copy so snapshot consumers cannot mutate the mirror.
func (f Feedback) Clone() Feedback {
	clone := f
	clone.Ratings = f.Ratings.Clone()
	return clone
}

// CloneAll copies a whole collection, preserving order.
func CloneAll(records []Feedback) []Feedback {
	result := make([]Feedback, 0, len(records))
	for _, record := range records {
		result = append(result, record.Clone())
	}
	return result
}
