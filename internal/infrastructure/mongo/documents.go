package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedbackDocument は MongoDB 上のフィードバックスキーマを Go 構造体として表現したもの。
// hotelName は $lookup の射影結果でのみ埋まり、コレクション自体には持たない。
type FeedbackDocument struct {
	ID         primitive.ObjectID  `bson:"_id"`
	Name       string              `bson:"name"`
	Email      string              `bson:"email,omitempty"`
	HotelID    *primitive.ObjectID `bson:"hotelId,omitempty"`
	HotelName  string              `bson:"hotelName,omitempty"`
	RoomNumber string              `bson:"roomNumber,omitempty"`
	StayDate   string              `bson:"stayDate,omitempty"`
	Ratings    map[string]int      `bson:"ratings"`
	Comments   string              `bson:"comments"`
	Status     string              `bson:"status,omitempty"`
	UserID     string              `bson:"userId,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt"`
}

// HotelStatsDocument はホテルドキュメント内の stats 埋め込み構造を表す。
type HotelStatsDocument struct {
	FeedbackCount  int        `bson:"feedbackCount"`
	AvgRating      *float64   `bson:"avgRating,omitempty"`
	LastFeedbackAt *time.Time `bson:"lastFeedbackAt,omitempty"`
}

// HotelDocument は MongoDB 上でのホテルスキーマを Go 構造体として表現したもの。
type HotelDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Location    string             `bson:"location,omitempty"`
	Description string             `bson:"description,omitempty"`
	PhotoURLs   []string           `bson:"photoURLs,omitempty"`
	Stats       HotelStatsDocument `bson:"stats"`
	CreatedAt   *time.Time         `bson:"createdAt,omitempty"`
	UpdatedAt   *time.Time         `bson:"updatedAt,omitempty"`
}
