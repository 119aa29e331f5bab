package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stayscope/guest-feedback-services/api/internal/public/domain"
)

// MinCommentRunes はフォーム側と合わせた感想の最低文字数。
const MinCommentRunes = 10

// MaxCommentRunes は保存時のコメント上限。
const MaxCommentRunes = 4000

type feedbackCommandService struct {
	feedback FeedbackRepository
	hotels   HotelRepository
}

func NewFeedbackCommandService(feedback FeedbackRepository, hotels HotelRepository) FeedbackCommandService {
	return &feedbackCommandService{feedback: feedback, hotels: hotels}
}

// Submit はフォーム入力を検証し、status=new で新規フィードバックを登録する。
func (s *feedbackCommandService) Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*domain.Feedback, error) {
	feedback, err := buildFeedbackFromCommand(cmd)
	if err != nil {
		return nil, err
	}

	if feedback.HotelID != "" && s.hotels != nil {
		hotel, err := s.hotels.FindByID(ctx, feedback.HotelID)
		if err != nil {
			return nil, fmt.Errorf("ホテルの確認に失敗しました: %w", err)
		}
		feedback.HotelName = hotel.Name
	}

	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func buildFeedbackFromCommand(cmd SubmitFeedbackCommand) (*domain.Feedback, error) {
	name := strings.TrimSpace(cmd.Name)
	if utf8.RuneCountInString(name) < 2 {
		return nil, errors.New("お名前は2文字以上で入力してください")
	}

	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return nil, errors.New("メールアドレスを入力してください")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.New("メールアドレスの形式が正しくありません")
	}

	comments := strings.TrimSpace(cmd.Comments)
	if utf8.RuneCountInString(comments) < MinCommentRunes {
		return nil, fmt.Errorf("ご意見・ご感想は%d文字以上で入力してください", MinCommentRunes)
	}
	if utf8.RuneCountInString(comments) > MaxCommentRunes {
		return nil, fmt.Errorf("ご意見・ご感想は%d文字以内で入力してください", MaxCommentRunes)
	}

	if len(cmd.Ratings) == 0 {
		return nil, errors.New("評価を1項目以上入力してください")
	}
	ratings := make(map[string]int, len(cmd.Ratings))
	for category, rating := range cmd.Ratings {
		trimmed := strings.TrimSpace(category)
		if trimmed == "" {
			continue
		}
		if rating < 1 || rating > 5 {
			return nil, fmt.Errorf("%s の評価は1〜5で入力してください", trimmed)
		}
		ratings[trimmed] = rating
	}
	if len(ratings) == 0 {
		return nil, errors.New("評価を1項目以上入力してください")
	}

	return &domain.Feedback{
		Name:       name,
		Email:      email,
		HotelID:    strings.TrimSpace(cmd.HotelID),
		RoomNumber: strings.TrimSpace(cmd.RoomNumber),
		StayDate:   strings.TrimSpace(cmd.StayDate),
		Ratings:    ratings,
		Comments:   comments,
		Status:     "new",
		UserID:     strings.TrimSpace(cmd.UserID),
	}, nil
}
