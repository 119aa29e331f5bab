package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	adminapp "github.com/stayscope/guest-feedback-services/api/internal/admin/application"
	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

type fakeFeedbackService struct {
	records      []admindomain.Feedback
	lastCriteria admindomain.FilterCriteria
	detailErr    error
	updateErr    error
}

func (f *fakeFeedbackService) List(criteria admindomain.FilterCriteria) []admindomain.Feedback {
	f.lastCriteria = criteria
	return criteria.Apply(f.records)
}

func (f *fakeFeedbackService) Detail(ctx context.Context, id string) (*admindomain.Feedback, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	for _, record := range f.records {
		if record.ID == id {
			clone := record.Clone()
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeFeedbackService) UpdateStatus(ctx context.Context, id, status string) (*admindomain.Feedback, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	parsed, err := admindomain.NewStatus(status)
	if err != nil {
		return nil, err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Status = parsed
			clone := f.records[i].Clone()
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeFeedbackService) Metrics() adminapp.MetricsSummary {
	return adminapp.MetricsSummary{
		Total:            len(f.records),
		AverageRating:    admindomain.AverageRating(f.records),
		StatusCounts:     map[string]int{"new": len(f.records)},
		CategoryAverages: map[string]float64{},
	}
}

type fakeExportService struct {
	artifact  *adminapp.Artifact
	exportErr error
	backupAt  time.Time
	hasBackup bool
}

func (f *fakeExportService) ExportOne(ctx context.Context, id string) (*adminapp.Artifact, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.artifact, nil
}

func (f *fakeExportService) ExportSelected(ctx context.Context, selection *admindomain.SelectionSet) (*adminapp.Artifact, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.artifact, nil
}

func (f *fakeExportService) BackupAll(ctx context.Context) (*adminapp.Artifact, time.Time, error) {
	if f.exportErr != nil {
		return nil, time.Time{}, f.exportErr
	}
	return f.artifact, f.backupAt, nil
}

func (f *fakeExportService) LastBackup() (time.Time, bool) {
	return f.backupAt, f.hasBackup
}

type fakeMirrorControl struct {
	refreshed int
	loading   bool
	lastError string
	count     int
}

func (f *fakeMirrorControl) Refresh(ctx context.Context) { f.refreshed++ }
func (f *fakeMirrorControl) IsLoading() bool             { return f.loading }
func (f *fakeMirrorControl) LastError() string           { return f.lastError }
func (f *fakeMirrorControl) Count() int                  { return f.count }

func testRecord(id, name string, rating int, createdAt time.Time) admindomain.Feedback {
	return admindomain.Feedback{
		ID:        id,
		Name:      name,
		HotelName: "Grand Bay Hotel",
		Ratings:   admindomain.RatingSet{"service": rating},
		Comments:  "comment body",
		Status:    admindomain.StatusNew,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func newTestServer(t *testing.T, feedback *fakeFeedbackService, export *fakeExportService, mirror *fakeMirrorControl) *httptest.Server {
	t.Helper()
	handler := NewHandler(Config{
		Logger:          log.New(bytes.NewBuffer(nil), "", 0),
		FeedbackService: feedback,
		ExportService:   export,
		Mirror:          mirror,
	})
	router := chi.NewRouter()
	handler.Register(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestFeedbackListAppliesQueryFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	feedback := &fakeFeedbackService{records: []admindomain.Feedback{
		testRecord("fb-1", "Alice", 5, now),
		testRecord("fb-2", "Bob", 2, now.Add(-time.Hour)),
	}}
	server := newTestServer(t, feedback, &fakeExportService{}, &fakeMirrorControl{})

	res, err := http.Get(server.URL + "/feedback?search=alice&minRating=3")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body adminFeedbackListResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "fb-1", body.Items[0].ID)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "alice", feedback.lastCriteria.Search)
	assert.Equal(t, 3.0, feedback.lastCriteria.MinRating)
}

func TestFeedbackListInvalidBoundsFallBack(t *testing.T) {
	feedback := &fakeFeedbackService{}
	server := newTestServer(t, feedback, &fakeExportService{}, &fakeMirrorControl{})

	res, err := http.Get(server.URL + "/feedback?minRating=abc&maxRating=9&status=bogus")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, admindomain.DefaultCriteria().MinRating, feedback.lastCriteria.MinRating)
	assert.Equal(t, admindomain.DefaultCriteria().MaxRating, feedback.lastCriteria.MaxRating)
	assert.Equal(t, admindomain.StatusFilterAll, feedback.lastCriteria.Status)
}

func TestFeedbackDetailNotFound(t *testing.T) {
	server := newTestServer(t, &fakeFeedbackService{}, &fakeExportService{}, &fakeMirrorControl{})

	res, err := http.Get(server.URL + "/feedback/missing")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestFeedbackStatusUpdate(t *testing.T) {
	now := time.Now().UTC()
	feedback := &fakeFeedbackService{records: []admindomain.Feedback{testRecord("fb-1", "Alice", 4, now)}}
	server := newTestServer(t, feedback, &fakeExportService{}, &fakeMirrorControl{})

	req, err := http.NewRequest(http.MethodPatch, server.URL+"/feedback/fb-1/status", bytes.NewBufferString(`{"status":"resolved"}`))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body adminFeedbackResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "resolved", body.Status)
}

func TestFeedbackStatusUpdateRejectsUnknownValue(t *testing.T) {
	now := time.Now().UTC()
	feedback := &fakeFeedbackService{records: []admindomain.Feedback{testRecord("fb-1", "Alice", 4, now)}}
	server := newTestServer(t, feedback, &fakeExportService{}, &fakeMirrorControl{})

	req, err := http.NewRequest(http.MethodPatch, server.URL+"/feedback/fb-1/status", bytes.NewBufferString(`{"status":"archived"}`))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestExportJobLifecycle(t *testing.T) {
	export := &fakeExportService{artifact: &adminapp.Artifact{
		Filename:    "Feedback_Bulk_Export_2026-03-01.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-stub"),
	}}
	server := newTestServer(t, &fakeFeedbackService{}, export, &fakeMirrorControl{})

	res, err := http.Post(server.URL+"/feedback/export", "application/json", bytes.NewBufferString(`{"ids":["fb-1","fb-2"]}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	var created exportJobResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	require.Eventually(t, func() bool {
		statusRes, err := http.Get(server.URL + "/feedback/export/" + created.ID)
		if err != nil {
			return false
		}
		defer statusRes.Body.Close()
		var status exportJobResponse
		if err := json.NewDecoder(statusRes.Body).Decode(&status); err != nil {
			return false
		}
		return status.Status == exportJobCompleted
	}, 2*time.Second, 10*time.Millisecond)

	download, err := http.Get(server.URL + "/feedback/export/" + created.ID + "/download")
	require.NoError(t, err)
	defer download.Body.Close()
	require.Equal(t, http.StatusOK, download.StatusCode)
	assert.Equal(t, "application/pdf", download.Header.Get("Content-Type"))
	assert.Contains(t, download.Header.Get("Content-Disposition"), "Feedback_Bulk_Export_2026-03-01.pdf")
}

func TestExportRejectsEmptySelection(t *testing.T) {
	server := newTestServer(t, &fakeFeedbackService{}, &fakeExportService{}, &fakeMirrorControl{})

	res, err := http.Post(server.URL+"/feedback/export", "application/json", bytes.NewBufferString(`{"ids":[]}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestExportStatusUnknownJob(t *testing.T) {
	server := newTestServer(t, &fakeFeedbackService{}, &fakeExportService{}, &fakeMirrorControl{})

	res, err := http.Get(server.URL + "/feedback/export/00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestBackupEndpoints(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	export := &fakeExportService{
		artifact: &adminapp.Artifact{
			Filename:    "Feedback_Backup_2026-03-01.json",
			ContentType: "application/json",
			Data:        []byte("[]"),
		},
		backupAt:  at,
		hasBackup: true,
	}
	server := newTestServer(t, &fakeFeedbackService{}, export, &fakeMirrorControl{count: 7})

	res, err := http.Post(server.URL+"/feedback/backup", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body backupResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "Feedback_Backup_2026-03-01.json", body.Filename)
	assert.Equal(t, 7, body.RecordCount)
	assert.True(t, body.LastBackupAt.Equal(at))

	lastRes, err := http.Get(server.URL + "/feedback/backup/last")
	require.NoError(t, err)
	defer lastRes.Body.Close()
	var last lastBackupResponse
	require.NoError(t, json.NewDecoder(lastRes.Body).Decode(&last))
	require.NotNil(t, last.LastBackupAt)
	assert.True(t, last.LastBackupAt.Equal(at))
}

func TestRefreshForcesMirrorFetch(t *testing.T) {
	mirror := &fakeMirrorControl{count: 3}
	server := newTestServer(t, &fakeFeedbackService{}, &fakeExportService{}, mirror)

	res, err := http.Post(server.URL+"/feedback/refresh", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body refreshResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 1, mirror.refreshed)
}
