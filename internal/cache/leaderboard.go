// Package cache keeps rendered leaderboards in a freecache ring buffer.
package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Leaderboard caches boards per (date, level). Every date carries a version
// number that is part of the entry key, so Invalidate(date) retires all levels
// of that date at once without knowing which ones were cached.
//
// A nil *Leaderboard is valid and caches nothing.
type Leaderboard struct {
	cache     *freecache.Cache
	expireSec int
	mu        sync.Mutex
}

// NewLeaderboard returns nil when sizeMB is not positive.
func NewLeaderboard(sizeMB int, ttl time.Duration) *Leaderboard {
	if sizeMB <= 0 {
		return nil
	}
	return &Leaderboard{
		cache:     freecache.NewCache(sizeMB * megabyte),
		expireSec: int(ttl / time.Second),
	}
}

// Slot is the entry key of a (date, level) pair, pinned to the version that
// was current at Lookup time.
type Slot struct {
	key []byte
}

// Lookup decodes the cached board into dest and reports whether it was found.
// On a miss the returned Slot is where the rebuilt board belongs; an Invalidate
// in between makes a later SetAt land under a retired version.
func (l *Leaderboard) Lookup(date, level string, dest any) (Slot, bool) {
	if l == nil {
		return Slot{}, false
	}
	slot := Slot{key: l.entryKey(date, level)}
	raw, err := l.cache.Get(slot.key)
	if err != nil {
		return slot, false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Errorf("decode cached leaderboard %s: %s", slot.key, err)
		return slot, false
	}
	return slot, true
}

// SetAt stores board under a slot obtained from Lookup.
func (l *Leaderboard) SetAt(slot Slot, board any) {
	if l == nil || slot.key == nil {
		return
	}
	raw, err := json.Marshal(board)
	if err != nil {
		log.Errorf("encode leaderboard %s: %s", slot.key, err)
		return
	}
	if err := l.cache.Set(slot.key, raw, l.expireSec); err != nil {
		log.Warnf("cache leaderboard %s: %s", slot.key, err)
	}
}

// Invalidate drops every cached level of date.
func (l *Leaderboard) Invalidate(date string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.version(date) + 1
	if err := l.cache.Set(versionKey(date), []byte(strconv.FormatUint(next, 10)), 0); err != nil {
		log.Warnf("bump leaderboard version for %s: %s", date, err)
	}
}

func (l *Leaderboard) version(date string) uint64 {
	raw, err := l.cache.Get(versionKey(date))
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (l *Leaderboard) entryKey(date, level string) []byte {
	return []byte(fmt.Sprintf("lb:%s:%d:%s", date, l.version(date), strings.ToLower(level)))
}

func versionKey(date string) []byte {
	return []byte("v:" + date)
}
