package application

import (
	"context"
	"fmt"
	"log"
	"math"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

type feedbackService struct {
	collection Collection
	store      FeedbackStore
	logger     *log.Logger
}

func NewFeedbackService(collection Collection, store FeedbackStore, logger *log.Logger) FeedbackService {
	return &feedbackService{collection: collection, store: store, logger: logger}
}

// List は正準コレクションのスナップショットへフィルタを適用した派生ビューを返す。
// ビューは毎回計算し直し、古い複製は保持しない。
func (s *feedbackService) List(criteria admindomain.FilterCriteria) []admindomain.Feedback {
	return criteria.Apply(s.collection.Snapshot())
}

// Detail はミラー上のレコードを優先し、未到達ならストアへフォールバックする。
func (s *feedbackService) Detail(ctx context.Context, id string) (*admindomain.Feedback, error) {
	if record, ok := s.collection.Get(id); ok {
		return &record, nil
	}
	return s.store.FindByID(ctx, id)
}

// UpdateStatus はリモート永続化が成功した場合にのみローカルコレクションを
// 更新する（confirmed-only。楽観更新はしない）。
func (s *feedbackService) UpdateStatus(ctx context.Context, id, statusValue string) (*admindomain.Feedback, error) {
	status, err := admindomain.NewStatus(statusValue)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("status の保存に失敗: %w", err)
	}
	s.collection.SetStatus(id, status)

	if record, ok := s.collection.Get(id); ok {
		return &record, nil
	}
	return s.store.FindByID(ctx, id)
}

// Metrics はダッシュボードのサマリカード用の集計をスナップショットから計算する。
func (s *feedbackService) Metrics() MetricsSummary {
	records := s.collection.Snapshot()

	statusCounts := make(map[string]int, len(admindomain.AllStatuses()))
	for _, status := range admindomain.AllStatuses() {
		statusCounts[status.String()] = 0
	}

	categoryTotals := make(map[string]int)
	categoryCounts := make(map[string]int)
	for _, record := range records {
		statusCounts[record.Status.String()]++
		for category, rating := range record.Ratings {
			categoryTotals[category] += rating
			categoryCounts[category]++
		}
	}

	categoryAverages := make(map[string]float64, len(categoryTotals))
	for category, total := range categoryTotals {
		categoryAverages[category] = math.Round(float64(total)/float64(categoryCounts[category])*10) / 10
	}

	return MetricsSummary{
		Total:            len(records),
		AverageRating:    admindomain.AverageRating(records),
		StatusCounts:     statusCounts,
		CategoryAverages: categoryAverages,
	}
}
