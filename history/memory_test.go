package history

import (
	"testing"
	"time"

	"github.com/promptrelay/promptrelay/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

func exchange(id, text string) core.Exchange {
	return core.Exchange{
		ID:        id,
		Agent:     "claudia",
		Message:   text,
		Timestamp: time.Now().UTC(),
	}
}

func TestInMemoryStoreRecentNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append(exchange("1", "first")))
	require.NoError(t, s.Append(exchange("2", "second")))
	require.NoError(t, s.Append(exchange("3", "third")))

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].ID)
	assert.Equal(t, "2", recent[1].ID)
}

func TestInMemoryStoreEvictsOldest(t *testing.T) {
	s := NewInMemoryStoreWithLimit(2)
	require.NoError(t, s.Append(exchange("1", "a")))
	require.NoError(t, s.Append(exchange("2", "b")))
	require.NoError(t, s.Append(exchange("3", "c")))

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].ID)
	assert.Equal(t, "2", recent[1].ID)
}

func TestInMemoryStoreEmpty(t *testing.T) {
	s := NewInMemoryStore()
	recent, err := s.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
