package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		parsed, err := NewStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := NewStatus("archived")
	assert.Error(t, err)
	_, err = NewStatus("")
	assert.Error(t, err)

	assert.Equal(t, StatusNew, NewStatusOrDefault(""))
	assert.Equal(t, StatusNew, NewStatusOrDefault("unknown"))
	assert.Equal(t, StatusResolved, NewStatusOrDefault(" resolved "))
}

func TestNewRatingSet(t *testing.T) {
	set, err := NewRatingSet(map[string]int{"cleanliness": 5, "staff": 3})
	require.NoError(t, err)
	assert.Equal(t, 4.0, set.Average())
	assert.Equal(t, []string{"cleanliness", "staff"}, set.Categories())

	_, err = NewRatingSet(nil)
	assert.Error(t, err)
	_, err = NewRatingSet(map[string]int{"staff": 0})
	assert.Error(t, err)
	_, err = NewRatingSet(map[string]int{"staff": 6})
	assert.Error(t, err)
	_, err = NewRatingSet(map[string]int{"  ": 3})
	assert.Error(t, err)
}

func TestRatingSetCloneIsIndependent(t *testing.T) {
	set, err := NewRatingSet(map[string]int{"comfort": 2})
	require.NoError(t, err)

	clone := set.Clone()
	clone["comfort"] = 5
	assert.Equal(t, 2, set["comfort"])
}

func TestNewEmail(t *testing.T) {
	email, err := NewEmail(" guest@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", email.String())

	empty, err := NewEmail("")
	require.NoError(t, err)
	assert.Equal(t, "", empty.String())

	_, err = NewEmail("not-an-email")
	assert.Error(t, err)
}
