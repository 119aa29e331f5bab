package common

import "strings"

// WellKnownRatingCategories は投稿フォームが提示する標準カテゴリ群。
// 未知のカテゴリ名も受け付けるため、これは網羅リストではない。
var WellKnownRatingCategories = []string{
	"cleanliness",
	"service",
	"amenities",
	"location",
	"value",
}

// CanonicalRatingCategory normalises category aliases into canonical keys.
func CanonicalRatingCategory(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	switch lower {
	case "clean", "cleanliness", "housekeeping":
		return "cleanliness"
	case "service", "staff", "hospitality":
		return "service"
	case "amenity", "amenities", "facilities":
		return "amenities"
	case "location", "access":
		return "location"
	case "value", "price", "cost_performance":
		return "value"
	}

	return lower
}

// CanonicalRatingCategories normalises a ratings map in place onto canonical keys.
// 同一カテゴリへ正規化が衝突した場合は大きい方の評価を残す。
func CanonicalRatingCategories(ratings map[string]int) map[string]int {
	if len(ratings) == 0 {
		return map[string]int{}
	}
	result := make(map[string]int, len(ratings))
	for category, rating := range ratings {
		key := CanonicalRatingCategory(category)
		if key == "" {
			continue
		}
		if existing, ok := result[key]; !ok || rating > existing {
			result[key] = rating
		}
	}
	return result
}
