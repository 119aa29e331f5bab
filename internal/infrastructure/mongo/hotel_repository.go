package mongo

import (
	"context"
	"regexp"
	"strings"

	"github.com/stayscope/guest-feedback-services/api/internal/public/application"
	"github.com/stayscope/guest-feedback-services/api/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HotelRepository はホテルコレクションを MongoDB 経由で扱うリポジトリ。
// 公開側の一覧・詳細参照に加え、ミラーの insert イベント時のホテル名解決にも使う。
type HotelRepository struct {
	hotels *mongo.Collection
}

// NewHotelRepository は対象コレクションを束縛したリポジトリを生成する。
func NewHotelRepository(db *mongo.Database, hotelCollection string) *HotelRepository {
	return &HotelRepository{hotels: db.Collection(hotelCollection)}
}

// Find はキーワード条件を名称・所在地への部分一致クエリへ変換し、名称順で返す。
func (r *HotelRepository) Find(ctx context.Context, filter application.HotelFilter) ([]domain.Hotel, error) {
	mongoFilter := bson.M{}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		mongoFilter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"location": pattern},
		}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if filter.Limit > 0 {
		findOpts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.hotels.Find(ctx, mongoFilter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	hotels := make([]domain.Hotel, 0)
	for cursor.Next(ctx) {
		var doc HotelDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		hotels = append(hotels, mapHotelDocument(doc))
	}
	return hotels, cursor.Err()
}

// FindByID はホテル ID を ObjectID 化して単一エンティティを復元する。
func (r *HotelRepository) FindByID(ctx context.Context, id string) (*domain.Hotel, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	var doc HotelDocument
	if err := r.hotels.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, err
	}
	hotel := mapHotelDocument(doc)
	return &hotel, nil
}

// HotelName は name のみの射影でホテル名を引く。ミラーの非正規化用。
func (r *HotelRepository) HotelName(ctx context.Context, hotelID string) (string, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(hotelID))
	if err != nil {
		return "", err
	}
	var doc struct {
		Name string `bson:"name"`
	}
	opts := options.FindOne().SetProjection(bson.M{"name": 1})
	if err := r.hotels.FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&doc); err != nil {
		return "", err
	}
	return doc.Name, nil
}

// mapHotelDocument は Mongo ホテル文書を公開ドメイン Hotel へ変換する。
func mapHotelDocument(doc HotelDocument) domain.Hotel {
	hotel := domain.Hotel{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Location:    doc.Location,
		Description: doc.Description,
		PhotoURLs:   append([]string{}, doc.PhotoURLs...),
		Stats: domain.HotelStats{
			FeedbackCount:  doc.Stats.FeedbackCount,
			AvgRating:      doc.Stats.AvgRating,
			LastFeedbackAt: doc.Stats.LastFeedbackAt,
		},
	}
	if doc.CreatedAt != nil {
		hotel.CreatedAt = *doc.CreatedAt
	}
	if doc.UpdatedAt != nil {
		hotel.UpdatedAt = *doc.UpdatedAt
	}
	return hotel
}
