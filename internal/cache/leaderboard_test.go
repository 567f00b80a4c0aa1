package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type board struct {
	Date  string   `json:"date"`
	Names []string `json:"names"`
}

func set(c *Leaderboard, date, level string, b board) {
	var discard board
	slot, _ := c.Lookup(date, level, &discard)
	c.SetAt(slot, b)
}

func get(c *Leaderboard, date, level string, dest *board) bool {
	_, ok := c.Lookup(date, level, dest)
	return ok
}

func TestLeaderboard_SetGet(t *testing.T) {
	c := NewLeaderboard(1, time.Minute)
	require.NotNil(t, c)

	set(c, "2025-05-19", "Rxd", board{Date: "2025-05-19", Names: []string{"Bob", "Alice"}})

	var got board
	require.True(t, get(c, "2025-05-19", "rxd", &got))
	assert.Equal(t, []string{"Bob", "Alice"}, got.Names)

	assert.False(t, get(c, "2025-05-19", "Scaled", &got))
	assert.False(t, get(c, "2025-05-20", "Rxd", &got))
}

func TestLeaderboard_InvalidateDropsEveryLevelOfTheDate(t *testing.T) {
	c := NewLeaderboard(1, 0)
	set(c, "2025-05-19", "all", board{Names: []string{"a"}})
	set(c, "2025-05-19", "Scaled", board{Names: []string{"b"}})
	set(c, "2025-05-18", "all", board{Names: []string{"c"}})

	c.Invalidate("2025-05-19")

	var got board
	assert.False(t, get(c, "2025-05-19", "all", &got))
	assert.False(t, get(c, "2025-05-19", "Scaled", &got))
	assert.True(t, get(c, "2025-05-18", "all", &got))

	set(c, "2025-05-19", "all", board{Names: []string{"fresh"}})
	require.True(t, get(c, "2025-05-19", "all", &got))
	assert.Equal(t, []string{"fresh"}, got.Names)
}

func TestLeaderboard_SetAtAfterInvalidateIsOrphaned(t *testing.T) {
	c := NewLeaderboard(1, 0)

	var got board
	slot, ok := c.Lookup("2025-05-19", "all", &got)
	require.False(t, ok)

	// a score lands while the board is being rebuilt
	c.Invalidate("2025-05-19")
	c.SetAt(slot, board{Names: []string{"stale"}})

	assert.False(t, get(c, "2025-05-19", "all", &got))

	slot, ok = c.Lookup("2025-05-19", "all", &got)
	require.False(t, ok)
	c.SetAt(slot, board{Names: []string{"fresh"}})
	require.True(t, get(c, "2025-05-19", "all", &got))
	assert.Equal(t, []string{"fresh"}, got.Names)
}

func TestLeaderboard_NilIsDisabled(t *testing.T) {
	c := NewLeaderboard(0, time.Minute)
	assert.Nil(t, c)

	var got board
	set(c, "2025-05-19", "all", board{})
	c.Invalidate("2025-05-19")
	assert.False(t, get(c, "2025-05-19", "all", &got))

	slot, ok := c.Lookup("2025-05-19", "all", &got)
	assert.False(t, ok)
	c.SetAt(slot, board{})
}
