package domain

import "sort"

// SelectionSet は管理者がチェックしたレコード ID の集合。順序は持たない。
// フィルタ変更で見えなくなった ID は能動的に除去しない（選択は論理的に残り、
// 表示対象外になるだけ）。この保持方針は selection_test.go で固定している。
type SelectionSet struct {
	ids map[string]struct{}
}

func NewSelectionSet(ids ...string) *SelectionSet {
	s := &SelectionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle は ID が選択済みなら外し、未選択なら加える。
func (s *SelectionSet) Toggle(id string) {
	if id == "" {
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll は表示中の全件が選択済みなら全解除し、そうでなければ
// 選択内容を表示中レコードの ID 群でそっくり置き換える。
func (s *SelectionSet) SelectAll(view []Feedback) {
	if len(s.ids) == len(view) {
		s.Clear()
		return
	}
	s.ids = make(map[string]struct{}, len(view))
	for _, record := range view {
		s.ids[record.ID] = struct{}{}
	}
}

func (s *SelectionSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *SelectionSet) Len() int {
	return len(s.ids)
}

func (s *SelectionSet) Clear() {
	s.ids = make(map[string]struct{})
}

// IDs は選択中の ID を辞書順で返す。
func (s *SelectionSet) IDs() []string {
	result := make([]string, 0, len(s.ids))
	for id := range s.ids {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Resolve は選択中の ID に一致するレコードを、入力コレクションの順序のまま返す。
func (s *SelectionSet) Resolve(records []Feedback) []Feedback {
	result := make([]Feedback, 0, len(s.ids))
	for _, record := range records {
		if s.Has(record.ID) {
			result = append(result, record)
		}
	}
	return result
}
