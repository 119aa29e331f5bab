// Package mirror はリモートのフィードバックコレクションをメモリ上へ複製し、
// 定期ポーリングと変更イベントの適用で結果整合を保つ。コレクションの置換・
// 更新を行えるのはこのパッケージだけで、他コンポーネントはスナップショット
// 経由の読み取り専用アクセスとなる。
package mirror

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

// DefaultPollInterval はプッシュ通知の取りこぼしに備えた全件再取得の既定間隔。
const DefaultPollInterval = 10 * time.Second

// Source はリモートストアからの全件取得を抽象化する。
type Source interface {
	FetchAll(ctx context.Context) ([]admindomain.Feedback, error)
}

// Stream は変更イベントの購読を抽象化する。Run は ctx が打ち切られるまで
// ブロックし、受信イベントごとに apply を呼ぶ。
type Stream interface {
	Run(ctx context.Context, apply func(context.Context, Event)) error
}

// HotelNameResolver は insert イベント到着時の非正規化ホテル名の解決に使う。
type HotelNameResolver interface {
	HotelName(ctx context.Context, hotelID string) (string, error)
}

// Notifier は利用者向け通知面。失敗経路と新着通知はすべてここを通す。
type Notifier interface {
	Info(ctx context.Context, title, message string)
	Error(ctx context.Context, title, message string)
}

// Config provides dependencies for Mirror.
type Config struct {
	Source       Source
	Stream       Stream
	Hotels       HotelNameResolver
	Notifier     Notifier
	Logger       *log.Logger
	PollInterval time.Duration
}

// Mirror は正準コレクション（canonical collection）の唯一の所有者。
type Mirror struct {
	mu        sync.Mutex
	records   []admindomain.Feedback
	loading   bool
	lastError string
	// eventSeq は適用済み変更イベントの単調カウンタ。イベント適用後に解決した
	// 古いポーリング結果を破棄する判定に使う。
	eventSeq  uint64
	observers []func()

	source       Source
	stream       Stream
	hotels       HotelNameResolver
	notifier     Notifier
	logger       *log.Logger
	pollInterval time.Duration
}

// New constructs a Mirror. PollInterval が未指定なら既定の 10 秒を使う。
func New(cfg Config) *Mirror {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Mirror{
		loading:      true,
		source:       cfg.Source,
		stream:       cfg.Stream,
		hotels:       cfg.Hotels,
		notifier:     cfg.Notifier,
		logger:       cfg.Logger,
		pollInterval: interval,
	}
}

// Run は初回取得ののちポーリングとイベント購読を開始し、ctx の打ち切りで
// 両者をまとめて停止する。
func (m *Mirror) Run(ctx context.Context) error {
	m.Refresh(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.pollLoop(ctx)
	})
	if m.stream != nil {
		g.Go(func() error {
			return m.stream.Run(ctx, m.Apply)
		})
	}
	return g.Wait()
}

func (m *Mirror) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh はリモートの全件でコレクションを置き換える。失敗時は既存内容を
// 維持してエラー状態と通知を残す。成功・失敗いずれでも loading は必ず解除する。
func (m *Mirror) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	startSeq := m.eventSeq
	m.mu.Unlock()

	records, err := m.source.FetchAll(ctx)

	m.mu.Lock()
	m.loading = false
	if err != nil {
		m.lastError = err.Error()
		m.mu.Unlock()
		if m.logger != nil {
			m.logger.Printf("フィードバック全件取得に失敗: %v", err)
		}
		if m.notifier != nil {
			m.notifier.Error(ctx, "取得エラー", "フィードバック一覧を取得できませんでした。次回の自動更新で再試行します。")
		}
		m.notifyObservers()
		return
	}
	// 取得開始後に変更イベントを適用済みなら、この全件結果は古いので捨てる。
	// 削除済みレコードの復活を防ぐ（次のポーリングで追いつく）。
	if m.eventSeq != startSeq {
		m.mu.Unlock()
		if m.logger != nil {
			m.logger.Printf("変更イベント適用後に解決したポーリング結果を破棄 (seq=%d→%d)", startSeq, m.eventSeq)
		}
		return
	}
	m.records = records
	m.lastError = ""
	m.mu.Unlock()
	m.notifyObservers()
}

// Apply は変更イベント 1 件を正準コレクションへ反映する。ポーリングと
// 購読の 2 系統が最終的にここへ合流する。
func (m *Mirror) Apply(ctx context.Context, event Event) {
	switch event.Op {
	case OpInsert:
		m.applyInsert(ctx, event.Feedback)
	case OpUpdate:
		m.applyUpdate(event.Feedback)
	case OpDelete:
		m.applyDelete(event.ID)
	default:
		if m.logger != nil {
			m.logger.Printf("未知の変更イベント種別を無視: %q", event.Op)
		}
	}
}

func (m *Mirror) applyInsert(ctx context.Context, record admindomain.Feedback) {
	if record.HotelName == "" {
		record.HotelName = m.resolveHotelName(ctx, record.HotelID)
	}
	if record.Name == "" {
		record.Name = admindomain.AnonymousGuestName
	}
	if record.Status == "" {
		record.Status = admindomain.StatusNew
	}

	m.mu.Lock()
	m.records = append([]admindomain.Feedback{record}, m.records...)
	m.eventSeq++
	m.mu.Unlock()

	if m.notifier != nil {
		m.notifier.Info(ctx, "新規フィードバック", record.Name+" さんから新しいフィードバックが届きました。")
	}
	m.notifyObservers()
}

func (m *Mirror) applyUpdate(record admindomain.Feedback) {
	m.mu.Lock()
	for i := range m.records {
		if m.records[i].ID == record.ID {
			// 部分更新イベントでホテル名が欠けていても既存の解決済み表示名を保つ
			if record.HotelName == "" {
				record.HotelName = m.records[i].HotelName
			}
			m.records[i] = record
			break
		}
	}
	m.eventSeq++
	m.mu.Unlock()
	m.notifyObservers()
}

func (m *Mirror) applyDelete(id string) {
	m.mu.Lock()
	// 既に存在しない ID の削除は冪等に無視する
	filtered := m.records[:0:0]
	for _, record := range m.records {
		if record.ID != id {
			filtered = append(filtered, record)
		}
	}
	m.records = filtered
	m.eventSeq++
	m.mu.Unlock()
	m.notifyObservers()
}

// resolveHotelName は参照解決に失敗してもレコードを落とさず、フォールバック
// 表示名で継続する。
func (m *Mirror) resolveHotelName(ctx context.Context, hotelID string) string {
	if hotelID == "" || m.hotels == nil {
		return admindomain.UnknownHotelName
	}
	name, err := m.hotels.HotelName(ctx, hotelID)
	if err != nil || name == "" {
		if err != nil && m.logger != nil {
			m.logger.Printf("ホテル名の解決に失敗 hotelId=%s err=%v", hotelID, err)
		}
		return admindomain.UnknownHotelName
	}
	return name
}

// SetStatus はストアへの永続化が確定した後にだけ呼ばれる前提のローカル反映。
func (m *Mirror) SetStatus(id string, status admindomain.Status) {
	m.mu.Lock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
			m.records[i].UpdatedAt = time.Now().UTC()
			break
		}
	}
	m.mu.Unlock()
	m.notifyObservers()
}

// Snapshot は正準コレクションの複製を作成順（createdAt 降順）のまま返す。
func (m *Mirror) Snapshot() []admindomain.Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	return admindomain.CloneAll(m.records)
}

// Get は ID 一致のレコード複製を返す。
func (m *Mirror) Get(id string) (admindomain.Feedback, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.ID == id {
			return record.Clone(), true
		}
	}
	return admindomain.Feedback{}, false
}

func (m *Mirror) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *Mirror) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// LastError は直近の取得失敗メッセージ。成功すると空へ戻る。
func (m *Mirror) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// Subscribe はコレクション変化のたびに呼ばれるコールバックを登録する。
// 派生ビュー（フィルタ結果など）のキャッシュ無効化に使う。
func (m *Mirror) Subscribe(observer func()) {
	if observer == nil {
		return
	}
	m.mu.Lock()
	m.observers = append(m.observers, observer)
	m.mu.Unlock()
}

func (m *Mirror) notifyObservers() {
	m.mu.Lock()
	observers := append([]func(){}, m.observers...)
	m.mu.Unlock()
	for _, observer := range observers {
		observer()
	}
}
