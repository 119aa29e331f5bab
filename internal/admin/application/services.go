package application

import (
	"context"
	"time"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

// Collection は Mirror が公開する正準コレクションへの読み取りと、
// 永続化確定後の status 反映のみを許すアクセス契約。
type Collection interface {
	Snapshot() []admindomain.Feedback
	Get(id string) (admindomain.Feedback, bool)
	SetStatus(id string, status admindomain.Status)
}

// FeedbackStore persists admin mutations against the remote collection.
type FeedbackStore interface {
	FindByID(ctx context.Context, id string) (*admindomain.Feedback, error)
	UpdateStatus(ctx context.Context, id string, status admindomain.Status) error
}

// BackupStore keeps the last-backup timestamp in durable local storage.
type BackupStore interface {
	SaveLastBackup(at time.Time) error
	LastBackup() (time.Time, bool, error)
}

// ReportRenderer turns feedback records into downloadable report documents.
type ReportRenderer interface {
	RenderSingle(record admindomain.Feedback) ([]byte, error)
	RenderBulk(records []admindomain.Feedback) ([]byte, error)
}

// Notifier は利用者向け通知面。失敗経路は握りつぶさず必ずここへ流す。
type Notifier interface {
	Info(ctx context.Context, title, message string)
	Error(ctx context.Context, title, message string)
}

// FeedbackService describes admin feedback use-cases.
type FeedbackService interface {
	List(criteria admindomain.FilterCriteria) []admindomain.Feedback
	Detail(ctx context.Context, id string) (*admindomain.Feedback, error)
	UpdateStatus(ctx context.Context, id, status string) (*admindomain.Feedback, error)
	Metrics() MetricsSummary
}

// ExportService describes report/backup use-cases.
type ExportService interface {
	ExportOne(ctx context.Context, id string) (*Artifact, error)
	ExportSelected(ctx context.Context, selection *admindomain.SelectionSet) (*Artifact, error)
	BackupAll(ctx context.Context) (*Artifact, time.Time, error)
	LastBackup() (time.Time, bool)
}

// Artifact はダウンロード配信される生成済みドキュメント。
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MetricsSummary はダッシュボード集計カード用のサマリ。
type MetricsSummary struct {
	Total            int
	AverageRating    float64
	StatusCounts     map[string]int
	CategoryAverages map[string]float64
}
