package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	publicapp "github.com/stayscope/guest-feedback-services/api/internal/public/application"
	"github.com/stayscope/guest-feedback-services/api/internal/public/domain"
)

type fakeHotelQueries struct {
	hotels []domain.Hotel
}

func (f *fakeHotelQueries) List(ctx context.Context, filter publicapp.HotelFilter) ([]domain.Hotel, error) {
	return f.hotels, nil
}

func (f *fakeHotelQueries) Detail(ctx context.Context, id string) (*domain.Hotel, error) {
	for _, hotel := range f.hotels {
		if hotel.ID == id {
			return &hotel, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type fakeFeedbackCommands struct {
	submitted []publicapp.SubmitFeedbackCommand
	err       error
}

func (f *fakeFeedbackCommands) Submit(ctx context.Context, cmd publicapp.SubmitFeedbackCommand) (*domain.Feedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, cmd)
	return &domain.Feedback{
		ID:        "fb-created",
		Name:      cmd.Name,
		HotelID:   cmd.HotelID,
		HotelName: "Grand Bay Hotel",
		Ratings:   cmd.Ratings,
		Comments:  cmd.Comments,
		Status:    "new",
		CreatedAt: time.Now().UTC(),
	}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(ctx context.Context, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, title+": "+message)
}

func (n *recordingNotifier) Error(ctx context.Context, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, title+": "+message)
}

func (n *recordingNotifier) infoCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.infos)
}

func newPublicTestServer(t *testing.T, hotels *fakeHotelQueries, commands *fakeFeedbackCommands, notifier Notifier) *httptest.Server {
	t.Helper()
	handler := NewHandler(Config{
		Logger:           log.New(bytes.NewBuffer(nil), "", 0),
		HotelQueries:     hotels,
		FeedbackCommands: commands,
		Notifier:         notifier,
	})
	router := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	handler.Register(router, passthrough)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestFeedbackCreateSubmitsAndNotifies(t *testing.T) {
	commands := &fakeFeedbackCommands{}
	notifier := &recordingNotifier{}
	server := newPublicTestServer(t, &fakeHotelQueries{}, commands, notifier)

	payload := `{
		"name": "Taro Yamada",
		"email": "taro@example.com",
		"hotelId": "507f1f77bcf86cd799439011",
		"ratings": {"Service": 5, "clean": 4},
		"comments": "The stay was wonderful and relaxing."
	}`
	res, err := http.Post(server.URL+"/feedback", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var body createFeedbackResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "fb-created", body.ID)
	assert.Equal(t, "new", body.Status)

	// カテゴリ別名は正規化キーへ写される
	require.Len(t, commands.submitted, 1)
	assert.Equal(t, map[string]int{"service": 5, "cleanliness": 4}, commands.submitted[0].Ratings)

	require.Eventually(t, func() bool { return notifier.infoCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestFeedbackCreateValidationError(t *testing.T) {
	commands := &fakeFeedbackCommands{err: errors.New("お名前は2文字以上で入力してください")}
	server := newPublicTestServer(t, &fakeHotelQueries{}, commands, nil)

	res, err := http.Post(server.URL+"/feedback", "application/json", bytes.NewBufferString(`{"name":"a"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "お名前は2文字以上で入力してください", body["error"])
}

func TestFeedbackCreateUnknownHotel(t *testing.T) {
	commands := &fakeFeedbackCommands{err: mongo.ErrNoDocuments}
	server := newPublicTestServer(t, &fakeHotelQueries{}, commands, nil)

	res, err := http.Post(server.URL+"/feedback", "application/json", bytes.NewBufferString(`{"name":"Taro"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHotelListAndDetail(t *testing.T) {
	avg := 4.2
	hotels := &fakeHotelQueries{hotels: []domain.Hotel{{
		ID:    "507f1f77bcf86cd799439011",
		Name:  "Grand Bay Hotel",
		Stats: domain.HotelStats{FeedbackCount: 12, AvgRating: &avg},
	}}}
	server := newPublicTestServer(t, hotels, &fakeFeedbackCommands{}, nil)

	res, err := http.Get(server.URL + "/hotels")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var list hotelListResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Grand Bay Hotel", list.Items[0].Name)
	assert.Equal(t, 12, list.Items[0].FeedbackCount)

	detail, err := http.Get(server.URL + "/hotels/507f1f77bcf86cd799439011")
	require.NoError(t, err)
	detail.Body.Close()
	assert.Equal(t, http.StatusOK, detail.StatusCode)

	badID, err := http.Get(server.URL + "/hotels/not-an-object-id")
	require.NoError(t, err)
	badID.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badID.StatusCode)
}
