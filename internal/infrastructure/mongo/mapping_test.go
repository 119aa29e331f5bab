package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
	"github.com/stayscope/guest-feedback-services/api/internal/mirror"
)

func TestMapAdminFeedbackDocumentFillsDefaults(t *testing.T) {
	doc := FeedbackDocument{
		ID:        primitive.NewObjectID(),
		Name:      "  ",
		Email:     "not-an-email",
		Ratings:   map[string]int{"cleanliness": 4},
		Comments:  "とても快適でした",
		CreatedAt: time.Now().UTC(),
	}

	record := mapAdminFeedbackDocument(doc)

	assert.Equal(t, doc.ID.Hex(), record.ID)
	assert.Equal(t, admindomain.AnonymousGuestName, record.Name)
	assert.Equal(t, admindomain.UnknownHotelName, record.HotelName)
	assert.Equal(t, admindomain.StatusNew, record.Status)
	// 過去データの不正メールは投棄せず空で取り込む
	assert.Empty(t, record.Email.String())
	assert.Empty(t, record.HotelID)
}

func TestMapAdminFeedbackDocumentPreservesValues(t *testing.T) {
	hotelID := primitive.NewObjectID()
	doc := FeedbackDocument{
		ID:        primitive.NewObjectID(),
		Name:      "Tanaka Yuki",
		Email:     "yuki@example.com",
		HotelID:   &hotelID,
		HotelName: "Grand Sakura Hotel",
		Ratings:   map[string]int{"service": 5, "value": 3},
		Comments:  "Wonderful stay, will come back.",
		Status:    "resolved",
	}

	record := mapAdminFeedbackDocument(doc)

	assert.Equal(t, "Tanaka Yuki", record.Name)
	assert.Equal(t, "yuki@example.com", record.Email.String())
	assert.Equal(t, hotelID.Hex(), record.HotelID)
	assert.Equal(t, "Grand Sakura Hotel", record.HotelName)
	assert.Equal(t, admindomain.StatusResolved, record.Status)
}

func TestMapEventFeedbackDocumentLeavesHotelNameUnresolved(t *testing.T) {
	hotelID := primitive.NewObjectID()
	doc := FeedbackDocument{
		ID:       primitive.NewObjectID(),
		Name:     "Guest",
		HotelID:  &hotelID,
		Ratings:  map[string]int{"location": 4},
		Comments: "near the station",
	}

	record := mapEventFeedbackDocument(doc)

	// $lookup を経ない文書はホテル名を空のままミラーへ渡す
	assert.Empty(t, record.HotelName)
	assert.Equal(t, hotelID.Hex(), record.HotelID)
}

func TestSanitizeRatingsClampsAndDropsEmptyCategories(t *testing.T) {
	result := sanitizeRatings(map[string]int{
		"cleanliness": 7,
		"service":     0,
		"value":       3,
		"  ":          5,
	})

	assert.Equal(t, admindomain.RatingSet{
		"cleanliness": 5,
		"service":     1,
		"value":       3,
	}, result)
}

func TestTranslateChangeEvents(t *testing.T) {
	stream := &FeedbackChangeStream{}
	id := primitive.NewObjectID()

	doc := &FeedbackDocument{
		ID:       id,
		Name:     "Guest",
		Ratings:  map[string]int{"service": 5},
		Comments: "great service",
	}

	event, ok := stream.translate(changeEventDocument{OperationType: "insert", FullDocument: doc})
	require.True(t, ok)
	assert.Equal(t, mirror.OpInsert, event.Op)
	assert.Equal(t, id.Hex(), event.Feedback.ID)

	event, ok = stream.translate(changeEventDocument{OperationType: "replace", FullDocument: doc})
	require.True(t, ok)
	assert.Equal(t, mirror.OpUpdate, event.Op)

	envelope := changeEventDocument{OperationType: "delete"}
	envelope.DocumentKey.ID = id
	event, ok = stream.translate(envelope)
	require.True(t, ok)
	assert.Equal(t, mirror.OpDelete, event.Op)
	assert.Equal(t, id.Hex(), event.ID)

	_, ok = stream.translate(changeEventDocument{OperationType: "update"})
	assert.False(t, ok, "fullDocument 欠落の update は捨てる")

	_, ok = stream.translate(changeEventDocument{OperationType: "invalidate"})
	assert.False(t, ok)
}
