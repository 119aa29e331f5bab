package mongo

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	admindomain "github.com/stayscope/guest-feedback-services/api/internal/admin/domain"
	publicdomain "github.com/stayscope/guest-feedback-services/api/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FeedbackRepository はフィードバックコレクションを MongoDB 経由で扱うリポジトリ。
// ミラーの全件取得、管理側の status 更新、公開側の新規投稿の 3 役を兼ねる。
type FeedbackRepository struct {
	feedback *mongo.Collection
	hotels   *mongo.Collection
	logger   *log.Logger
}

// NewFeedbackRepository はフィードバック・ホテルの 2 コレクションを束縛したリポジトリを生成する。
func NewFeedbackRepository(db *mongo.Database, feedbackCollection, hotelCollection string, logger *log.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		feedback: db.Collection(feedbackCollection),
		hotels:   db.Collection(hotelCollection),
		logger:   logger,
	}
}

// FetchAll は $lookup でホテル名を突き合わせた全件を createdAt 降順で返す。
// ミラーの初回取得とポーリングはすべてここを通る。
func (r *FeedbackRepository) FetchAll(ctx context.Context) ([]admindomain.Feedback, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         r.hotels.Name(),
			"localField":   "hotelId",
			"foreignField": "_id",
			"as":           "hotel",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"hotelName": bson.M{"$first": "$hotel.name"},
		}}},
		{{Key: "$project", Value: bson.M{"hotel": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}

	cursor, err := r.feedback.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]admindomain.Feedback, 0)
	for cursor.Next(ctx) {
		var doc FeedbackDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, mapAdminFeedbackDocument(doc))
	}
	return records, cursor.Err()
}

// FindByID はフィードバック ID を ObjectID 化して単一レコードを復元する。
func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*admindomain.Feedback, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	var doc FeedbackDocument
	if err := r.feedback.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.HotelName == "" && doc.HotelID != nil {
		doc.HotelName = r.lookupHotelName(ctx, *doc.HotelID)
	}
	record := mapAdminFeedbackDocument(doc)
	return &record, nil
}

// UpdateStatus は status と updatedAt のみを部分更新する。対象が存在しなければ
// mongo.ErrNoDocuments を返し、呼び出し側のローカル反映を抑止する。
func (r *FeedbackRepository) UpdateStatus(ctx context.Context, id string, status admindomain.Status) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{
		"status":    status.String(),
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.feedback.UpdateByID(ctx, objectID, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Create は公開側の投稿を新規登録し、続けてホテル統計を再計算する。
func (r *FeedbackRepository) Create(ctx context.Context, feedback *publicdomain.Feedback) error {
	if feedback == nil {
		return errors.New("feedback payload is nil")
	}
	hotelID, err := primitive.ObjectIDFromHex(strings.TrimSpace(feedback.HotelID))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := feedback.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := feedback.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	ratings := make(map[string]int, len(feedback.Ratings))
	for category, rating := range feedback.Ratings {
		ratings[category] = rating
	}

	doc := FeedbackDocument{
		ID:         primitive.NewObjectID(),
		Name:       feedback.Name,
		Email:      feedback.Email,
		HotelID:    &hotelID,
		RoomNumber: feedback.RoomNumber,
		StayDate:   feedback.StayDate,
		Ratings:    ratings,
		Comments:   feedback.Comments,
		Status:     feedback.Status,
		UserID:     feedback.UserID,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	if _, err := r.feedback.InsertOne(ctx, doc); err != nil {
		return err
	}

	feedback.ID = doc.ID.Hex()
	feedback.CreatedAt = doc.CreatedAt
	feedback.UpdatedAt = doc.UpdatedAt
	return r.recalculateHotelStats(ctx, hotelID)
}

// lookupHotelName は name のみの軽量射影でホテル名を引く。失敗は空文字で返し、
// 表示名の補完は取り込み側に任せる。
func (r *FeedbackRepository) lookupHotelName(ctx context.Context, hotelID primitive.ObjectID) string {
	var doc struct {
		Name string `bson:"name"`
	}
	if err := r.hotels.FindOne(ctx, bson.M{"_id": hotelID}).Decode(&doc); err != nil {
		if r.logger != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Printf("ホテル名の参照に失敗 hotelId=%s err=%v", hotelID.Hex(), err)
		}
		return ""
	}
	return doc.Name
}

// recalculateHotelStats は対象ホテルのフィードバックを集計し、件数・平均評価・
// 最終投稿日時を Hotel ドキュメントへ反映する。
func (r *FeedbackRepository) recalculateHotelStats(ctx context.Context, hotelID primitive.ObjectID) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"hotelId": hotelID}}},
		{{Key: "$addFields", Value: bson.M{
			"ratingValues": bson.M{"$map": bson.M{
				"input": bson.M{"$objectToArray": "$ratings"},
				"as":    "entry",
				"in":    "$$entry.v",
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"feedbackCount":  bson.M{"$sum": 1},
			"avgRating":      bson.M{"$avg": bson.M{"$avg": "$ratingValues"}},
			"lastFeedbackAt": bson.M{"$max": "$createdAt"},
		}}},
	}

	cursor, err := r.feedback.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	update := bson.M{
		"stats.feedbackCount":  0,
		"stats.avgRating":      nil,
		"stats.lastFeedbackAt": nil,
		"updatedAt":            time.Now().UTC(),
	}

	if cursor.Next(ctx) {
		var agg struct {
			FeedbackCount  int        `bson:"feedbackCount"`
			AvgRating      *float64   `bson:"avgRating"`
			LastFeedbackAt *time.Time `bson:"lastFeedbackAt"`
		}
		if err := cursor.Decode(&agg); err != nil {
			return err
		}
		update["stats.feedbackCount"] = agg.FeedbackCount
		update["stats.avgRating"] = agg.AvgRating
		update["stats.lastFeedbackAt"] = agg.LastFeedbackAt
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	_, err = r.hotels.UpdateByID(ctx, hotelID, bson.M{"$set": update})
	return err
}

// mapAdminFeedbackDocument は Mongo 文書を Admin ドメイン Feedback へ変換する。
// 欠落項目の補完（匿名名・不明ホテル・既定 status）はこの取り込み境界で一度だけ行い、
// 下流はすべて補完済みレコードを前提にできる。
func mapAdminFeedbackDocument(doc FeedbackDocument) admindomain.Feedback {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = admindomain.AnonymousGuestName
	}
	hotelName := strings.TrimSpace(doc.HotelName)
	if hotelName == "" {
		hotelName = admindomain.UnknownHotelName
	}
	hotelID := ""
	if doc.HotelID != nil {
		hotelID = doc.HotelID.Hex()
	}

	// 過去データの不正な宛先は落とさず空メール扱いで取り込む
	email, err := admindomain.NewEmail(doc.Email)
	if err != nil {
		email = ""
	}

	return admindomain.Feedback{
		ID:         doc.ID.Hex(),
		Name:       name,
		Email:      email,
		HotelID:    hotelID,
		HotelName:  hotelName,
		RoomNumber: doc.RoomNumber,
		StayDate:   doc.StayDate,
		Ratings:    sanitizeRatings(doc.Ratings),
		Comments:   doc.Comments,
		Status:     admindomain.NewStatusOrDefault(doc.Status),
		UserID:     doc.UserID,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

// mapEventFeedbackDocument は Change Stream 由来の文書を変換する。$lookup を
// 経ていないためホテル名は空のままとし、解決はミラー側に委ねる。
func mapEventFeedbackDocument(doc FeedbackDocument) admindomain.Feedback {
	record := mapAdminFeedbackDocument(doc)
	if strings.TrimSpace(doc.HotelName) == "" {
		record.HotelName = ""
	}
	return record
}

// sanitizeRatings は範囲外の評価値を 1〜5 に丸め、空カテゴリ名を捨てる。
func sanitizeRatings(values map[string]int) admindomain.RatingSet {
	result := make(admindomain.RatingSet, len(values))
	for category, rating := range values {
		name := strings.TrimSpace(category)
		if name == "" {
			continue
		}
		if rating < 1 {
			rating = 1
		}
		if rating > 5 {
			rating = 5
		}
		result[name] = rating
	}
	return result
}
