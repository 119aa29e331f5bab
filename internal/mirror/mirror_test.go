package mirror

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
)

type fakeSource struct {
	records []admindomain.Feedback
	err     error
	// beforeReturn があれば、取得結果を返す直前に呼ぶ。ポーリングと
	// 変更イベントの競合を決定的に再現するためのフック。
	beforeReturn func()
	calls        int
}

func (s *fakeSource) FetchAll(_ context.Context) ([]admindomain.Feedback, error) {
	s.calls++
	if s.beforeReturn != nil {
		s.beforeReturn()
	}
	if s.err != nil {
		return nil, s.err
	}
	return admindomain.CloneAll(s.records), nil
}

type fakeResolver struct {
	name string
	err  error
}

func (r *fakeResolver) HotelName(context.Context, string) (string, error) {
	return r.name, r.err
}

type recordingNotifier struct {
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(_ context.Context, title, _ string) {
	n.infos = append(n.infos, title)
}

func (n *recordingNotifier) Error(_ context.Context, title, _ string) {
	n.errors = append(n.errors, title)
}

type blockingStream struct {
	started chan struct{}
}

func (s *blockingStream) Run(ctx context.Context, _ func(context.Context, Event)) error {
	close(s.started)
	<-ctx.Done()
	return nil
}

func mirrorRecord(id string, created time.Time) admindomain.Feedback {
	ratings, _ := admindomain.NewRatingSet(map[string]int{"staff": 4})
	return admindomain.Feedback{
		ID:        id,
		Name:      "guest-" + id,
		HotelName: "汐見グランドホテル",
		Ratings:   ratings,
		Comments:  "朝食会場のスタッフの気配りが素晴らしかったです。",
		Status:    admindomain.StatusNew,
		CreatedAt: created,
	}
}

func TestRefreshReplacesCollection(t *testing.T) {
	base := time.Now().UTC()
	source := &fakeSource{records: []admindomain.Feedback{mirrorRecord("a", base), mirrorRecord("b", base.Add(-time.Hour))}}
	m := New(Config{Source: source})

	require.True(t, m.IsLoading())
	m.Refresh(context.Background())

	assert.False(t, m.IsLoading())
	assert.Empty(t, m.LastError())
	assert.Equal(t, 2, m.Count())

	snapshot := m.Snapshot()
	assert.Equal(t, "a", snapshot[0].ID)
	assert.Equal(t, "b", snapshot[1].ID)
}

func TestRefreshFailureKeepsPreviousCollection(t *testing.T) {
	base := time.Now().UTC()
	records := make([]admindomain.Feedback, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		records = append(records, mirrorRecord(id, base))
	}
	source := &fakeSource{records: records}
	notifier := &recordingNotifier{}
	m := New(Config{Source: source, Notifier: notifier})
	m.Refresh(context.Background())
	require.Equal(t, 5, m.Count())

	source.err = errors.New("network unreachable")
	m.Refresh(context.Background())

	assert.Equal(t, 5, m.Count(), "失敗時は直前のコレクションを維持する")
	assert.False(t, m.IsLoading(), "失敗時も loading は必ず解除される")
	assert.NotEmpty(t, m.LastError())
	assert.NotEmpty(t, notifier.errors, "取得失敗はエラー通知になる")
}

func TestApplyInsertPrependsAndNotifies(t *testing.T) {
	base := time.Now().UTC()
	source := &fakeSource{records: []admindomain.Feedback{mirrorRecord("old", base.Add(-time.Hour))}}
	notifier := &recordingNotifier{}
	m := New(Config{Source: source, Notifier: notifier, Hotels: &fakeResolver{name: "椿山レイクホテル"}})
	m.Refresh(context.Background())

	incoming := mirrorRecord("new", base)
	incoming.HotelName = ""
	incoming.HotelID = "hotel-1"
	m.Apply(context.Background(), Event{Op: OpInsert, Feedback: incoming})

	snapshot := m.Snapshot()
	require.Equal(t, 2, len(snapshot))
	assert.Equal(t, "new", snapshot[0].ID, "insert はコレクション先頭へ追加される")
	assert.Equal(t, "椿山レイクホテル", snapshot[0].HotelName)
	assert.Contains(t, notifier.infos, "新規フィードバック")
}

func TestApplyInsertFallsBackToUnknownHotel(t *testing.T) {
	notifier := &recordingNotifier{}
	m := New(Config{Source: &fakeSource{}, Notifier: notifier, Hotels: &fakeResolver{err: errors.New("network error")}})
	m.Refresh(context.Background())

	incoming := mirrorRecord("a", time.Now().UTC())
	incoming.HotelName = ""
	incoming.HotelID = "hotel-1"
	m.Apply(context.Background(), Event{Op: OpInsert, Feedback: incoming})

	snapshot := m.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, admindomain.UnknownHotelName, snapshot[0].HotelName, "参照解決に失敗してもレコードは落とさない")
	assert.Contains(t, notifier.infos, "新規フィードバック", "フォールバック時も新着通知は上がる")
}

func TestApplyUpdateReplacesMatchingRecordOnly(t *testing.T) {
	base := time.Now().UTC()
	source := &fakeSource{records: []admindomain.Feedback{mirrorRecord("a", base), mirrorRecord("b", base)}}
	m := New(Config{Source: source})
	m.Refresh(context.Background())

	updated := mirrorRecord("a", base)
	updated.Status = admindomain.StatusResolved
	m.Apply(context.Background(), Event{Op: OpUpdate, Feedback: updated})

	snapshot := m.Snapshot()
	assert.Equal(t, admindomain.StatusResolved, snapshot[0].Status)
	assert.Equal(t, admindomain.StatusNew, snapshot[1].Status)
}

func TestApplyDeleteIsIdempotent(t *testing.T) {
	base := time.Now().UTC()
	source := &fakeSource{records: []admindomain.Feedback{mirrorRecord("a", base)}}
	m := New(Config{Source: source})
	m.Refresh(context.Background())

	m.Apply(context.Background(), Event{Op: OpDelete, ID: "a"})
	assert.Equal(t, 0, m.Count())
	m.Apply(context.Background(), Event{Op: OpDelete, ID: "a"})
	assert.Equal(t, 0, m.Count())
}

func TestStalePollResultIsDiscarded(t *testing.T) {
	base := time.Now().UTC()
	stale := []admindomain.Feedback{mirrorRecord("a", base), mirrorRecord("b", base)}
	source := &fakeSource{records: stale}
	m := New(Config{Source: source})
	m.Refresh(context.Background())
	require.Equal(t, 2, m.Count())

	// 2 回目の取得が解決する前に削除イベントが適用されるケース。
	// 古い全件結果で削除済みレコードが復活してはならない。
	source.beforeReturn = func() {
		source.beforeReturn = nil
		m.Apply(context.Background(), Event{Op: OpDelete, ID: "b"})
	}
	m.Refresh(context.Background())

	assert.Equal(t, 1, m.Count(), "イベント適用後に解決した全件結果は破棄される")
	_, found := m.Get("b")
	assert.False(t, found)
	assert.False(t, m.IsLoading())
}

func TestRunStopsPollerAndStreamOnCancel(t *testing.T) {
	source := &fakeSource{}
	stream := &blockingStream{started: make(chan struct{})}
	m := New(Config{Source: source, Stream: stream, PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	<-stream.started
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run が停止しない")
	}
	assert.GreaterOrEqual(t, source.calls, 2, "初回取得に加えポーリングでも再取得される")
}

func TestObserversNotifiedOnChange(t *testing.T) {
	source := &fakeSource{}
	m := New(Config{Source: source})

	var fired atomic.Int32
	m.Subscribe(func() { fired.Add(1) })

	m.Refresh(context.Background())
	m.Apply(context.Background(), Event{Op: OpInsert, Feedback: mirrorRecord("a", time.Now().UTC())})

	assert.GreaterOrEqual(t, fired.Load(), int32(2))
}

func TestSnapshotIsACopy(t *testing.T) {
	source := &fakeSource{records: []admindomain.Feedback{mirrorRecord("a", time.Now().UTC())}}
	m := New(Config{Source: source})
	m.Refresh(context.Background())

	snapshot := m.Snapshot()
	snapshot[0].Ratings["staff"] = 1
	snapshot[0].Status = admindomain.StatusResolved

	fresh := m.Snapshot()
	assert.Equal(t, 4, fresh[0].Ratings["staff"])
	assert.Equal(t, admindomain.StatusNew, fresh[0].Status)
}
