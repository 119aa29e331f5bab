package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stayscope/guest-feedback-services/api/internal/interfaces/http/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	envName         string
	hotelCount      int
	feedbackCount   int
	dropCollections bool
	randomSeed      int64
}

type collections struct {
	hotels              string
	feedback            string
	failedNotifications string
}

type hotelDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Location    string             `bson:"location,omitempty"`
	Description string             `bson:"description,omitempty"`
	PhotoURLs   []string           `bson:"photoURLs,omitempty"`
	Stats       hotelStatsDocument `bson:"stats"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type hotelStatsDocument struct {
	FeedbackCount  int        `bson:"feedbackCount"`
	AvgRating      *float64   `bson:"avgRating,omitempty"`
	LastFeedbackAt *time.Time `bson:"lastFeedbackAt,omitempty"`
}

type feedbackDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email,omitempty"`
	HotelID    primitive.ObjectID `bson:"hotelId"`
	RoomNumber string             `bson:"roomNumber,omitempty"`
	StayDate   string             `bson:"stayDate,omitempty"`
	Ratings    map[string]int     `bson:"ratings"`
	Comments   string             `bson:"comments"`
	Status     string             `bson:"status"`
	UserID     string             `bson:"userId,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type statsAccumulator struct {
	feedbackCount int
	ratingSum     float64
	lastFeedback  time.Time
}

var hotelNames = []string{
	"Grand Bay Hotel", "Sakura Garden Inn", "Harbor View Resort", "Mountain Crest Lodge",
	"City Lights Hotel", "Ocean Breeze Suites", "Riverside Palace", "Maple Leaf Hostel",
	"Sunset Terrace Hotel", "Aurora Sky Resort", "Cedar Park Hotel", "Lakeside Retreat",
}

var locations = []string{
	"Tokyo", "Osaka", "Kyoto", "Sapporo", "Fukuoka", "Naha", "Yokohama", "Nagoya",
}

var guestNames = []string{
	"Taro Yamada", "Hanako Sato", "John Smith", "Emily Chen", "Kenji Watanabe",
	"Maria Garcia", "Liam O'Brien", "Yuki Tanaka", "Anna Müller", "David Kim",
}

var ratingCategories = common.WellKnownRatingCategories

var statuses = []string{"new", "new", "new", "in-progress", "resolved"}

var commentSamples = []string{
	"The room was spotless and the staff were incredibly attentive throughout our stay.",
	"Check-in took longer than expected, but the view from the room made up for it.",
	"Breakfast selection was excellent. The location is perfect for sightseeing.",
	"Air conditioning was noisy at night. Otherwise a comfortable and clean room.",
	"Wonderful hospitality. We will definitely come back on our next trip.",
	"The bathroom could use some renovation, but overall good value for the price.",
}

func main() {
	opts := parseFlags()

	if err := loadEnvFiles(opts.envName); err != nil {
		log.Printf("環境変数ファイルの読み込みをスキップ: %v", err)
	}

	cfg := collections{
		hotels:              envOrDefault("HOTEL_COLLECTION", "hotels"),
		feedback:            envOrDefault("FEEDBACK_COLLECTION", "feedback"),
		failedNotifications: envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications"),
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "stayscope")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		if err := dropCollections(ctx, db, cfg); err != nil {
			log.Fatalf("コレクション削除に失敗しました: %v", err)
		}
		log.Printf("既存コレクションを削除しました")
	}

	if err := ensureIndexes(ctx, db, cfg); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))

	hotelDocs := generateHotels(rng, opts.hotelCount)
	if len(hotelDocs) == 0 {
		log.Fatal("hotel docs が生成されませんでした")
	}
	if err := insertMany(ctx, db.Collection(cfg.hotels), toAnySlice(hotelDocs)); err != nil {
		log.Fatalf("ホテルデータの挿入に失敗しました: %v", err)
	}

	feedbackDocs, stats := generateFeedback(rng, hotelDocs, opts.feedbackCount)
	if len(feedbackDocs) == 0 {
		log.Fatal("feedback docs が生成されませんでした")
	}
	if err := insertMany(ctx, db.Collection(cfg.feedback), toAnySlice(feedbackDocs)); err != nil {
		log.Fatalf("フィードバックデータの挿入に失敗しました: %v", err)
	}

	if err := applyStats(ctx, db.Collection(cfg.hotels), stats); err != nil {
		log.Fatalf("ホテル統計の更新に失敗しました: %v", err)
	}

	log.Printf("Seed 完了: hotels=%d feedback=%d", len(hotelDocs), len(feedbackDocs))
	log.Printf("Mongo: %s / %s (env=%s)", mongoURI, dbName, opts.envName)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envName, "env", "local", "env ディレクトリ内の env ファイル名 (例: local, staging)")
	flag.IntVar(&opts.hotelCount, "hotels", 8, "生成するホテル数")
	flag.IntVar(&opts.feedbackCount, "feedback", 120, "生成するフィードバック総数")
	flag.BoolVar(&opts.dropCollections, "drop", true, "既存コレクションを削除してから投入する")
	defaultSeed := time.Now().UnixNano()
	flag.Int64Var(&opts.randomSeed, "seed", defaultSeed, "乱数シード（再現用）")
	flag.Parse()

	if opts.hotelCount <= 0 {
		log.Fatal("hotels は 1 以上を指定してください")
	}
	if opts.feedbackCount < opts.hotelCount {
		opts.feedbackCount = opts.hotelCount
	}
	return opts
}

func loadEnvFiles(envName string) error {
	base := filepath.Clean(filepath.Join("..", "env"))
	files := []string{
		filepath.Join(base, "shared.env"),
		filepath.Join(base, fmt.Sprintf("%s.env", envName)),
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := loadEnvFile(file); err != nil {
			return err
		}
	}
	return nil
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func dropCollections(ctx context.Context, db *mongo.Database, cfg collections) error {
	for _, name := range []string{cfg.hotels, cfg.feedback, cfg.failedNotifications} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ensureIndexes は一覧の createdAt 降順ソートとホテル結合・statusフィルタ向けの索引を張る。
func ensureIndexes(ctx context.Context, db *mongo.Database, cfg collections) error {
	feedbackIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "hotelId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := db.Collection(cfg.feedback).Indexes().CreateMany(ctx, feedbackIndexes); err != nil {
		return err
	}

	hotelIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := db.Collection(cfg.hotels).Indexes().CreateMany(ctx, hotelIndexes); err != nil {
		return err
	}
	return nil
}

func generateHotels(rng *rand.Rand, count int) []hotelDocument {
	now := time.Now().UTC()
	docs := make([]hotelDocument, 0, count)
	for i := 0; i < count; i++ {
		name := hotelNames[i%len(hotelNames)]
		if i >= len(hotelNames) {
			name = fmt.Sprintf("%s %d", name, i/len(hotelNames)+1)
		}
		createdAt := now.AddDate(0, 0, -rng.Intn(365))
		docs = append(docs, hotelDocument{
			ID:          primitive.NewObjectID(),
			Name:        name,
			Location:    locations[rng.Intn(len(locations))],
			Description: fmt.Sprintf("%s is a guest-focused property with easy access to the city center.", name),
			Stats:       hotelStatsDocument{},
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		})
	}
	return docs
}

func generateFeedback(rng *rand.Rand, hotels []hotelDocument, count int) ([]feedbackDocument, map[primitive.ObjectID]*statsAccumulator) {
	now := time.Now().UTC()
	docs := make([]feedbackDocument, 0, count)
	stats := make(map[primitive.ObjectID]*statsAccumulator, len(hotels))

	for i := 0; i < count; i++ {
		hotel := hotels[rng.Intn(len(hotels))]
		createdAt := now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour)
		stayDate := createdAt.AddDate(0, 0, -1-rng.Intn(14)).Format("2006-01-02")

		ratings := make(map[string]int)
		categoryCount := 1 + rng.Intn(len(ratingCategories))
		for _, category := range rng.Perm(len(ratingCategories))[:categoryCount] {
			ratings[ratingCategories[category]] = 1 + rng.Intn(5)
		}

		name := guestNames[rng.Intn(len(guestNames))]
		// 1 割ほど匿名投稿を混ぜて表示フォールバックを踏ませる
		if rng.Intn(10) == 0 {
			name = ""
		}

		doc := feedbackDocument{
			ID:         primitive.NewObjectID(),
			Name:       name,
			Email:      fmt.Sprintf("guest%03d@example.com", i),
			HotelID:    hotel.ID,
			RoomNumber: fmt.Sprintf("%d%02d", 1+rng.Intn(12), 1+rng.Intn(30)),
			StayDate:   stayDate,
			Ratings:    ratings,
			Comments:   commentSamples[rng.Intn(len(commentSamples))],
			Status:     statuses[rng.Intn(len(statuses))],
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		}
		docs = append(docs, doc)

		acc, ok := stats[hotel.ID]
		if !ok {
			acc = &statsAccumulator{}
			stats[hotel.ID] = acc
		}
		acc.feedbackCount++
		acc.ratingSum += averageRating(ratings)
		if createdAt.After(acc.lastFeedback) {
			acc.lastFeedback = createdAt
		}
	}
	return docs, stats
}

func averageRating(ratings map[string]int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	total := 0
	for _, rating := range ratings {
		total += rating
	}
	return float64(total) / float64(len(ratings))
}

func applyStats(ctx context.Context, hotels *mongo.Collection, stats map[primitive.ObjectID]*statsAccumulator) error {
	for hotelID, acc := range stats {
		avg := math.Round(acc.ratingSum/float64(acc.feedbackCount)*10) / 10
		lastAt := acc.lastFeedback
		update := bson.M{"$set": bson.M{
			"stats.feedbackCount":  acc.feedbackCount,
			"stats.avgRating":      avg,
			"stats.lastFeedbackAt": lastAt,
			"updatedAt":            time.Now().UTC(),
		}}
		if _, err := hotels.UpdateByID(ctx, hotelID, update); err != nil {
			return err
		}
	}
	return nil
}

func insertMany(ctx context.Context, collection *mongo.Collection, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := collection.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](items []T) []any {
	result := make([]any, 0, len(items))
	for _, item := range items {
		result = append(result, item)
	}
	return result
}
