package domain

import (
	"math"
	"strings"
	"time"
)

// StatusFilterAll は status を絞り込まないことを表すフィルタ値。
const StatusFilterAll = "all"

// FilterCriteria は管理画面の一覧絞り込み条件。全条件は AND で評価される。
type FilterCriteria struct {
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    string
	MinRating float64
	MaxRating float64
}

// DefaultCriteria はフィルタ初期値（リセット時の状態）を返す。
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Search:    "",
		DateFrom:  nil,
		DateTo:    nil,
		Status:    StatusFilterAll,
		MinRating: 0,
		MaxRating: 5,
	}
}

// Apply は条件を満たすレコードだけを入力順のまま返す。入力は変更しない。
func (c FilterCriteria) Apply(records []Feedback) []Feedback {
	result := make([]Feedback, 0, len(records))
	for _, record := range records {
		if c.Matches(record) {
			result = append(result, record)
		}
	}
	return result
}

// Matches は 1 レコードが検索・期間・status・評価境界のすべてを満たすか判定する。
func (c FilterCriteria) Matches(record Feedback) bool {
	if search := strings.TrimSpace(c.Search); search != "" {
		needle := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(record.Name), needle) &&
			!strings.Contains(strings.ToLower(record.Email.String()), needle) &&
			!strings.Contains(strings.ToLower(record.Comments), needle) {
			return false
		}
	}

	if c.DateFrom != nil && record.CreatedAt.Before(*c.DateFrom) {
		return false
	}
	if c.DateTo != nil && record.CreatedAt.After(endOfDay(*c.DateTo)) {
		return false
	}

	if c.Status != "" && c.Status != StatusFilterAll && record.Status.String() != c.Status {
		return false
	}

	average := record.AverageRating()
	if average < c.MinRating || average > c.MaxRating {
		return false
	}

	return true
}

// endOfDay は dateTo を同日の 23:59:59.999999999 まで拡張する。
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// AverageRating はレコードごとの平均評価をさらに平均し、小数第 1 位へ丸めて返す。
// 空リストはエラーではなく 0 を返す。
func AverageRating(records []Feedback) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0.0
	for _, record := range records {
		total += record.AverageRating()
	}
	return math.Round(total/float64(len(records))*10) / 10
}
