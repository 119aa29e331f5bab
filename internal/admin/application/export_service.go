package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

// ErrNothingSelected はエクスポート対象が空のときに返す。空ドキュメントは生成しない。
var ErrNothingSelected = errors.New("エクスポート対象が選択されていません")

// ErrFeedbackNotFound は単票エクスポート対象がコレクションに存在しないときに返す。
var ErrFeedbackNotFound = errors.New("フィードバックが見つかりません")

type exportService struct {
	collection Collection
	renderer   ReportRenderer
	backups    BackupStore
	notifier   Notifier
	logger     *log.Logger
	now        func() time.Time
}

func NewExportService(collection Collection, renderer ReportRenderer, backups BackupStore, notifier Notifier, logger *log.Logger) ExportService {
	return &exportService{
		collection: collection,
		renderer:   renderer,
		backups:    backups,
		notifier:   notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ExportOne は 1 レコードの詳細帳票 PDF を生成する。ファイル名はレコード ID から決定する。
func (s *exportService) ExportOne(ctx context.Context, id string) (*Artifact, error) {
	record, ok := s.collection.Get(id)
	if !ok {
		return nil, ErrFeedbackNotFound
	}
	return s.renderSingle(ctx, record)
}

// ExportSelected は選択 1 件なら詳細帳票、複数件ならサマリ帳票を生成する。
// 0 件はエラー通知のみでダウンロードを発生させない。
func (s *exportService) ExportSelected(ctx context.Context, selection *admindomain.SelectionSet) (*Artifact, error) {
	if selection == nil || selection.Len() == 0 {
		s.notifyError(ctx, "エクスポート不可", "エクスポートするフィードバックを 1 件以上選択してください。")
		return nil, ErrNothingSelected
	}

	records := selection.Resolve(s.collection.Snapshot())
	if len(records) == 0 {
		s.notifyError(ctx, "エクスポート不可", "選択されたフィードバックは現在のコレクションに存在しません。")
		return nil, ErrNothingSelected
	}
	if len(records) == 1 {
		return s.renderSingle(ctx, records[0])
	}

	data, err := s.renderer.RenderBulk(records)
	if err != nil {
		s.notifyError(ctx, "エクスポート失敗", "PDF の生成に失敗しました。もう一度お試しください。")
		return nil, fmt.Errorf("一括帳票の生成に失敗: %w", err)
	}

	artifact := &Artifact{
		Filename:    fmt.Sprintf("Feedback_Bulk_Export_%s.pdf", s.now().Format("2006-01-02")),
		ContentType: "application/pdf",
		Data:        data,
	}
	s.notifyInfo(ctx, "エクスポート完了", fmt.Sprintf("%d 件のフィードバックを PDF へ出力しました。", len(records)))
	return artifact, nil
}

func (s *exportService) renderSingle(ctx context.Context, record admindomain.Feedback) (*Artifact, error) {
	data, err := s.renderer.RenderSingle(record)
	if err != nil {
		s.notifyError(ctx, "エクスポート失敗", "PDF の生成に失敗しました。もう一度お試しください。")
		return nil, fmt.Errorf("帳票の生成に失敗 id=%s: %w", record.ID, err)
	}
	s.notifyInfo(ctx, "エクスポート完了", "フィードバック帳票を PDF へ出力しました。")
	return &Artifact{
		Filename:    fmt.Sprintf("Feedback_%s.pdf", record.ID),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// BackupRecord はバックアップ JSON の 1 レコード分の形。
type BackupRecord struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	HotelID    string         `json:"hotelId,omitempty"`
	HotelName  string         `json:"hotelName"`
	RoomNumber string         `json:"roomNumber,omitempty"`
	StayDate   string         `json:"stayDate,omitempty"`
	Ratings    map[string]int `json:"ratings"`
	Comments   string         `json:"comments"`
	Status     string         `json:"status"`
	UserID     string         `json:"userId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// NewBackupRecord はドメインレコードをバックアップ形式へ射影する。
func NewBackupRecord(record admindomain.Feedback) BackupRecord {
	return BackupRecord{
		ID:         record.ID,
		Name:       record.Name,
		Email:      record.Email.String(),
		HotelID:    record.HotelID,
		HotelName:  record.HotelName,
		RoomNumber: record.RoomNumber,
		StayDate:   record.StayDate,
		Ratings:    map[string]int(record.Ratings.Clone()),
		Comments:   record.Comments,
		Status:     record.Status.String(),
		UserID:     record.UserID,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

// BackupAll は正準コレクション全体をインデント付き JSON として直列化し、
// 成功時のみ最終バックアップ時刻を保存して返す。
func (s *exportService) BackupAll(ctx context.Context) (*Artifact, time.Time, error) {
	records := s.collection.Snapshot()
	payload := make([]BackupRecord, 0, len(records))
	for _, record := range records {
		payload = append(payload, NewBackupRecord(record))
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.notifyError(ctx, "バックアップ失敗", "バックアップの作成に失敗しました。もう一度お試しください。")
		return nil, time.Time{}, fmt.Errorf("バックアップの直列化に失敗: %w", err)
	}

	backedUpAt := s.now()
	if err := s.backups.SaveLastBackup(backedUpAt); err != nil && s.logger != nil {
		// バックアップ自体は成功しているため時刻の保存失敗は警告に留める
		s.logger.Printf("最終バックアップ時刻の保存に失敗: %v", err)
	}

	artifact := &Artifact{
		Filename:    fmt.Sprintf("Feedback_Backup_%s.json", backedUpAt.Format("2006-01-02")),
		ContentType: "application/json",
		Data:        data,
	}
	s.notifyInfo(ctx, "バックアップ完了", fmt.Sprintf("%d 件のフィードバックをバックアップしました。", len(payload)))
	return artifact, backedUpAt, nil
}

func (s *exportService) LastBackup() (time.Time, bool) {
	at, ok, err := s.backups.LastBackup()
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("最終バックアップ時刻の読み込みに失敗: %v", err)
		}
		return time.Time{}, false
	}
	return at, ok
}

func (s *exportService) notifyInfo(ctx context.Context, title, message string) {
	if s.notifier != nil {
		s.notifier.Info(ctx, title, message)
	}
}

func (s *exportService) notifyError(ctx context.Context, title, message string) {
	if s.notifier != nil {
		s.notifier.Error(ctx, title, message)
	}
}
