package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func selectionView(ids ...string) []Feedback {
	records := make([]Feedback, 0, len(ids))
	for _, id := range ids {
		records = append(records, testFeedback(id, "guest-"+id, time.Now(), StatusNew, map[string]int{"staff": 3}))
	}
	return records
}

func TestSelectionToggle(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle("a")
	assert.True(t, s.Has("a"))
	s.Toggle("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Len())
}

func TestSelectAllTogglesBetweenAllAndNone(t *testing.T) {
	view := selectionView("a", "b", "c", "d")
	s := NewSelectionSet()

	s.SelectAll(view)
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.IDs())

	s.SelectAll(view)
	assert.Equal(t, 0, s.Len())
}

func TestSelectAllReplacesPartialSelection(t *testing.T) {
	view := selectionView("a", "b", "c")
	s := NewSelectionSet("a")

	s.SelectAll(view)
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
}

func TestSelectionNeverInventsIDs(t *testing.T) {
	view := selectionView("a", "b")
	s := NewSelectionSet()
	s.Toggle("a")
	s.SelectAll(view)
	s.Toggle("b")
	s.Toggle("b")
	s.SelectAll(view)

	known := map[string]struct{}{"a": {}, "b": {}}
	for _, id := range s.IDs() {
		_, ok := known[id]
		assert.True(t, ok, "選択セットに未知の ID が混入: %s", id)
	}
}

func TestSelectionRetainedAfterFilterChange(t *testing.T) {
	// フィルタ変更で見えなくなった ID は保持する方針。Resolve 時に実質無効となる。
	s := NewSelectionSet("a", "b")
	narrowed := selectionView("a")

	resolved := s.Resolve(narrowed)
	assert.Len(t, resolved, 1)
	assert.Equal(t, "a", resolved[0].ID)
	assert.True(t, s.Has("b"), "表示外の ID も選択自体は残る")
}

func TestSelectionResolvePreservesCollectionOrder(t *testing.T) {
	view := selectionView("z", "m", "a")
	s := NewSelectionSet("a", "z")

	resolved := s.Resolve(view)
	assert.Len(t, resolved, 2)
	assert.Equal(t, "z", resolved[0].ID)
	assert.Equal(t, "a", resolved[1].ID)
}
