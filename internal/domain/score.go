package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ScoreRecord is one member's result for a day's workout. Records are never edited.
type ScoreRecord struct {
	ID         string    `json:"id"`
	MemberName string    `json:"memberName"`
	WodDate    string    `json:"wodDate"` // YYYY-MM-DD
	WodID      string    `json:"wodId,omitempty"`
	Level      Level     `json:"level"`
	ScoreRaw   string    `json:"scoreRaw"`
	ScoreValue *float64  `json:"scoreValue"` // nil rows are not ranked
	Remark     string    `json:"remark,omitempty"`
	RecordedBy string    `json:"recordedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Ranked reports whether the record takes part in ranking.
func (s *ScoreRecord) Ranked() bool {
	return s.ScoreValue != nil
}

// RankingRow is a score joined with its workout title and the per-level rank
// computed by the store. Rank is nil when the store did not supply one.
type RankingRow struct {
	ScoreRecord
	WodTitle string `json:"wodTitle,omitempty"`
	Rank     *int   `json:"rank,omitempty"`
}

var (
	clockScore  = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{2})$`)
	roundsScore = regexp.MustCompile(`^(\d+)\s*\+\s*(\d+)$`)
	leadingNum  = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)
)

// ParseScoreValue derives the numeric, higher-is-better value of a raw score.
//
//	"12:34", "1:02:03" -> negative seconds, so faster times rank higher
//	"5+12"             -> rounds*1000 + reps
//	"185 lb", "150"    -> the leading number
//
// Anything else yields nil and the record is kept out of the ranking.
func ParseScoreValue(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if m := clockScore.FindStringSubmatch(s); m != nil {
		var hours int
		if m[1] != "" {
			h, err := strconv.Atoi(m[1])
			if err != nil {
				return nil
			}
			hours = h
		}
		minutes, _ := strconv.Atoi(m[2]) // at most two digits
		seconds, _ := strconv.Atoi(m[3])
		if seconds >= 60 || (m[1] != "" && minutes >= 60) {
			return nil
		}
		v := -(float64(hours)*3600 + float64(minutes*60+seconds))
		return &v
	}

	if m := roundsScore.FindStringSubmatch(s); m != nil {
		rounds, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		reps, err := strconv.Atoi(m[2])
		if err != nil {
			return nil
		}
		v := float64(rounds)*1000 + float64(reps)
		return &v
	}

	if m := leadingNum.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		return &v
	}

	return nil
}
