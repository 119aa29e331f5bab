// Package notify はメッセンジャーゲートウェイ経由の利用者向け通知を実装する。
// 送達保証は持たず、失敗はログと failed_notifications への記録に残すだけで
// 呼び出し元の処理は止めない。
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	sendAttempts = 3
	sendDelay    = 200 * time.Millisecond
)

// Config はゲートウェイ接続設定。Endpoint が空ならログ出力のみの動作になる。
type Config struct {
	Endpoint    string
	Destination string
	UserID      string
	HTTPClient  *http.Client
	Logger      *log.Logger

	// FailedNotifications が nil でなければ、全リトライ失敗時にここへ記録する。
	FailedNotifications *mongo.Collection
}

// Gateway は admin ダッシュボード向けのトースト通知を配送する。
type Gateway struct {
	endpoint    string
	destination string
	userID      string
	httpClient  *http.Client
	logger      *log.Logger
	failed      *mongo.Collection
}

// NewGateway は設定を束縛したゲートウェイを生成する。
func NewGateway(cfg Config) *Gateway {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		userID = "admin-dashboard"
	}
	return &Gateway{
		endpoint:    strings.TrimSpace(cfg.Endpoint),
		destination: strings.TrimSpace(cfg.Destination),
		userID:      userID,
		httpClient:  client,
		logger:      cfg.Logger,
		failed:      cfg.FailedNotifications,
	}
}

// Info は情報レベルの通知を送る。
func (g *Gateway) Info(ctx context.Context, title, message string) {
	g.send(ctx, "info", title, message)
}

// Error はエラーレベルの通知を送る。
func (g *Gateway) Error(ctx context.Context, title, message string) {
	g.send(ctx, "error", title, message)
}

func (g *Gateway) send(ctx context.Context, level, title, message string) {
	if ctx == nil {
		ctx = context.Background()
	}
	text := buildNotificationText(level, title, message)

	if g.endpoint == "" {
		if g.logger != nil {
			g.logger.Printf("通知 (%s): %s %s", level, title, message)
		}
		return
	}

	err := g.sendWithRetry(ctx, text, sendAttempts, sendDelay)
	if err == nil {
		return
	}
	if g.logger != nil {
		g.logger.Printf("メッセンジャー通知の送信に失敗: %v", err)
	}
	g.persistFailure(ctx, level, title, message, err)
}

func buildNotificationText(level, title, message string) string {
	var builder strings.Builder
	if level == "error" {
		builder.WriteString(":warning: ")
	}
	builder.WriteString(fmt.Sprintf("**%s**\n", title))
	builder.WriteString(message)
	return builder.String()
}

func (g *Gateway) sendWithRetry(ctx context.Context, text string, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := g.sendMessage(ctx, text); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return lastErr
}

func (g *Gateway) sendMessage(ctx context.Context, text string) error {
	payload := map[string]any{
		"userId": g.userID,
		"text":   text,
	}
	if g.destination != "" {
		payload["destination"] = g.destination
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("通知ペイロードの作成に失敗: %w", err)
	}

	timeout := g.httpClient.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := strings.TrimRight(g.endpoint, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("通知リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("通知リクエストに失敗: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("通知送信でエラーが発生: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}

// persistFailure は全リトライ失敗した通知を後追い再送できる形で記録する。
func (g *Gateway) persistFailure(ctx context.Context, level, title, message string, sendErr error) {
	if g.failed == nil || sendErr == nil {
		return
	}
	if errors.Is(sendErr, context.Canceled) {
		return
	}
	doc := bson.M{
		"target": "admin_notification",
		"payload": bson.M{
			"level":   level,
			"title":   title,
			"message": message,
			"userId":  g.userID,
		},
		"error":       sendErr.Error(),
		"attempts":    sendAttempts,
		"status":      "pending",
		"createdAt":   time.Now().UTC(),
		"lastTriedAt": time.Now().UTC(),
	}
	if _, err := g.failed.InsertOne(ctx, doc); err != nil && g.logger != nil {
		g.logger.Printf("failed_notifications への保存に失敗: %v", err)
	}
}
