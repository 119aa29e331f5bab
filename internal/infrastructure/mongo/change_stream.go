package mongo

import (
	"context"
	"log"
	"time"

	"github.com/stayscope/guest-feedback-services/api/internal/mirror"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// watchRetryDelay は Change Stream 切断後に再接続を試みるまでの待機時間。
const watchRetryDelay = 3 * time.Second

// FeedbackChangeStream は Mongo Change Stream を購読し、insert/update/delete を
// ミラー向けイベントへ変換するアダプタ。レプリカセット未構成などで購読自体が
// 張れない場合もポーリングが追従するため、致命エラーにはしない。
type FeedbackChangeStream struct {
	feedback *mongo.Collection
	logger   *log.Logger
}

// NewFeedbackChangeStream は対象コレクションを束縛した購読アダプタを生成する。
func NewFeedbackChangeStream(db *mongo.Database, feedbackCollection string, logger *log.Logger) *FeedbackChangeStream {
	return &FeedbackChangeStream{
		feedback: db.Collection(feedbackCollection),
		logger:   logger,
	}
}

// changeEventDocument は Change Stream が返すイベント封筒のうち必要な項目のみを写し取る。
type changeEventDocument struct {
	OperationType string            `bson:"operationType"`
	FullDocument  *FeedbackDocument `bson:"fullDocument"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// Run は ctx が打ち切られるまで購読を維持し、受信イベントごとに apply を呼ぶ。
// 切断時は一定間隔で再接続する。
func (s *FeedbackChangeStream) Run(ctx context.Context, apply func(context.Context, mirror.Event)) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	for {
		stream, err := s.feedback.Watch(ctx, mongo.Pipeline{}, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if s.logger != nil {
				s.logger.Printf("Change Stream の接続に失敗、%s 後に再試行: %v", watchRetryDelay, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(watchRetryDelay):
			}
			continue
		}

		s.consume(ctx, stream, apply)
		stream.Close(context.Background())
		if ctx.Err() != nil {
			return nil
		}
	}
}

// consume は単一の購読セッションを読み切る。復帰はエラーか ctx 打ち切り時のみ。
func (s *FeedbackChangeStream) consume(ctx context.Context, stream *mongo.ChangeStream, apply func(context.Context, mirror.Event)) {
	for stream.Next(ctx) {
		var envelope changeEventDocument
		if err := stream.Decode(&envelope); err != nil {
			if s.logger != nil {
				s.logger.Printf("変更イベントのデコードに失敗: %v", err)
			}
			continue
		}
		event, ok := s.translate(envelope)
		if !ok {
			continue
		}
		apply(ctx, event)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil && s.logger != nil {
		s.logger.Printf("Change Stream が切断されました: %v", err)
	}
}

// translate はイベント封筒をミラー向けイベントへ写像する。対象外の種別は捨てる。
func (s *FeedbackChangeStream) translate(envelope changeEventDocument) (mirror.Event, bool) {
	switch envelope.OperationType {
	case "insert":
		if envelope.FullDocument == nil {
			return mirror.Event{}, false
		}
		// fullDocument にはホテル名が乗らないため空のまま渡し、
		// 表示名の解決はミラー側の HotelNameResolver に委ねる。
		return mirror.Event{
			Op:       mirror.OpInsert,
			Feedback: mapEventFeedbackDocument(*envelope.FullDocument),
		}, true
	case "update", "replace":
		if envelope.FullDocument == nil {
			// updateLookup 指定でも取得競合で欠けることがある。次のポーリングで追いつく。
			return mirror.Event{}, false
		}
		return mirror.Event{
			Op:       mirror.OpUpdate,
			Feedback: mapEventFeedbackDocument(*envelope.FullDocument),
		}, true
	case "delete":
		return mirror.Event{
			Op: mirror.OpDelete,
			ID: envelope.DocumentKey.ID.Hex(),
		}, true
	}
	return mirror.Event{}, false
}
