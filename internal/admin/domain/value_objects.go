package domain

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// UnknownHotelName はホテル名の解決に失敗したレコードの表示用フォールバック値。
const UnknownHotelName = "Unknown Hotel"

// AnonymousGuestName は投稿者名が欠落したレコードの補完値。
const AnonymousGuestName = "Anonymous"

type Status string

func NewStatus(value string) (Status, error) {
	trimmed := strings.TrimSpace(value)
	switch Status(trimmed) {
	case StatusNew, StatusInProgress, StatusResolved:
		return Status(trimmed), nil
	}
	return "", fmt.Errorf("invalid status: %s", trimmed)
}

// NewStatusOrDefault は欠落・不正な status を new へ補正する取り込み境界用コンストラクタ。
func NewStatusOrDefault(value string) Status {
	status, err := NewStatus(value)
	if err != nil {
		return StatusNew
	}
	return status
}

func (s Status) String() string {
	return string(s)
}

func AllStatuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusResolved}
}

type Email string

func NewEmail(value string) (Email, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > 254 {
		return "", fmt.Errorf("email too long")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("invalid email: %w", err)
	}
	return Email(trimmed), nil
}

func (e Email) String() string {
	return string(e)
}

// RatingSet はカテゴリ名から 1〜5 の整数評価への写像。最低 1 カテゴリを要求する。
type RatingSet map[string]int

func NewRatingSet(values map[string]int) (RatingSet, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("ratings must not be empty")
	}
	result := make(RatingSet, len(values))
	for category, rating := range values {
		name := strings.TrimSpace(category)
		if name == "" {
			return nil, fmt.Errorf("rating category is required")
		}
		if rating < 1 || rating > 5 {
			return nil, fmt.Errorf("rating for %s must be between 1 and 5", name)
		}
		result[name] = rating
	}
	return result, nil
}

// Average は在中カテゴリの算術平均を返す。フィルタ比較に使うため丸めない。
func (r RatingSet) Average() float64 {
	if len(r) == 0 {
		return 0
	}
	total := 0
	for _, rating := range r {
		total += rating
	}
	return float64(total) / float64(len(r))
}

// Categories はカテゴリ名を辞書順で返す。帳票出力を決定的にするため。
func (r RatingSet) Categories() []string {
	result := make([]string, 0, len(r))
	for category := range r {
		result = append(result, category)
	}
	sort.Strings(result)
	return result
}

func (r RatingSet) Clone() RatingSet {
	if r == nil {
		return nil
	}
	result := make(RatingSet, len(r))
	for category, rating := range r {
		result[category] = rating
	}
	return result
}
