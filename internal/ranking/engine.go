// Package ranking orders a day's scores into a leaderboard.
//
// The per-level rank is owned by the store (the ranking view) and is never
// recomputed here. The engine only sorts and, for the all-levels board, derives
// the overall competition rank ("1,2,2,4") across levels.
package ranking

import (
	"cmp"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"cfq/wod-board/internal/domain"
)

// AllLevels selects the cross-level board.
const AllLevels = "all"

var remarkWeight = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*lb`)

// Entry is a row placed on the board.
type Entry struct {
	domain.RankingRow
	DisplayRank int `json:"displayRank"`
}

// Engine ranks rows against a level priority.
type Engine struct {
	priority map[domain.Level]int
}

// Default uses domain.LevelPriority.
var Default = NewEngine(domain.LevelPriority)

// NewEngine builds an engine; levels missing from priority sort after all listed ones.
func NewEngine(priority []domain.Level) *Engine {
	p := make(map[domain.Level]int, len(priority))
	for i, l := range priority {
		if _, dup := p[l]; !dup {
			p[l] = i
		}
	}
	return &Engine{priority: p}
}

// Rank is Default.Rank.
func Rank(rows []domain.RankingRow, level string) []Entry {
	return Default.Rank(rows, level)
}

// IsAllLevels reports whether a level filter selects every level.
func IsAllLevels(level string) bool {
	level = strings.TrimSpace(level)
	return level == "" || strings.EqualFold(level, AllLevels)
}

// Rank returns the display-ordered board for one day.
// Rows without a score value are skipped. The input slice is not modified.
func (e *Engine) Rank(rows []domain.RankingRow, level string) []Entry {
	if IsAllLevels(level) {
		return e.overall(rows)
	}
	return e.singleLevel(rows, domain.Level(strings.TrimSpace(level)))
}

type candidate struct {
	row      domain.RankingRow
	priority int
	score    float64
	weight   float64
}

func (e *Engine) overall(rows []domain.RankingRow) []Entry {
	cands := make([]candidate, 0, len(rows))
	for _, r := range rows {
		if r.ScoreValue == nil {
			continue
		}
		cands = append(cands, candidate{
			row:      r,
			priority: e.priorityOf(r.Level),
			score:    *r.ScoreValue,
			weight:   RemarkWeight(r.Remark),
		})
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}
		switch {
		case a.row.Rank == nil && b.row.Rank != nil:
			return 1
		case a.row.Rank != nil && b.row.Rank == nil:
			return -1
		case a.row.Rank != nil && b.row.Rank != nil && *a.row.Rank != *b.row.Rank:
			return cmp.Compare(*a.row.Rank, *b.row.Rank)
		}
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.weight, a.weight); c != 0 {
			return c
		}
		return strings.Compare(a.row.MemberName, b.row.MemberName)
	})

	out := make([]Entry, len(cands))
	for i, c := range cands {
		rank := i + 1
		if i > 0 {
			prev := cands[i-1]
			if prev.row.Level == c.row.Level && prev.score == c.score && prev.weight == c.weight {
				rank = out[i-1].DisplayRank
			}
		}
		out[i] = Entry{RankingRow: c.row, DisplayRank: rank}
	}
	return out
}

func (e *Engine) singleLevel(rows []domain.RankingRow, level domain.Level) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		if r.Level != level || r.ScoreValue == nil {
			continue
		}
		entry := Entry{RankingRow: r}
		if r.Rank != nil {
			entry.DisplayRank = *r.Rank
		}
		out = append(out, entry)
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Rank == nil && b.Rank != nil:
			return 1
		case a.Rank != nil && b.Rank == nil:
			return -1
		case a.Rank != nil && b.Rank != nil && *a.Rank != *b.Rank:
			return cmp.Compare(*a.Rank, *b.Rank)
		}
		return strings.Compare(a.MemberName, b.MemberName)
	})
	return out
}

func (e *Engine) priorityOf(l domain.Level) int {
	if p, ok := e.priority[l]; ok {
		return p
	}
	return len(e.priority)
}

// LevelsPresent lists the levels occurring in rows: known levels in priority
// order, then unknown ones alphabetically. Empty levels are ignored.
func (e *Engine) LevelsPresent(rows []domain.RankingRow) []domain.Level {
	seen := make(map[domain.Level]bool)
	for _, r := range rows {
		if r.Level != "" {
			seen[r.Level] = true
		}
	}

	levels := make([]domain.Level, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool {
		pi, pj := e.priorityOf(levels[i]), e.priorityOf(levels[j])
		if pi != pj {
			return pi < pj
		}
		return levels[i] < levels[j]
	})
	return levels
}

// RemarkWeight extracts the load noted in a remark, e.g. 45 from "used 45 lb".
// It returns 0 when the remark carries no "<number> lb".
func RemarkWeight(remark string) float64 {
	m := remarkWeight.FindStringSubmatch(remark)
	if m == nil {
		return 0
	}
	w, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return w
}
