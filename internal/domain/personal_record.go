package domain

import "time"

// RecordKind is the rep max a personal record refers to.
type RecordKind string

const (
	Kind1RM RecordKind = "1RM"
	Kind3RM RecordKind = "3RM"
	Kind5RM RecordKind = "5RM"
)

var RecordKinds = []RecordKind{Kind1RM, Kind3RM, Kind5RM}

// Lifts are the barbell movements members can track.
var Lifts = []string{
	"Deadlift",
	"Back Squat",
	"Front Squat",
	"Overhead Squat",
	"Shoulder Press",
	"Clean and Jerk",
	"Clean",
	"Snatch",
	"Push Press",
	"Push Jerk",
}

// PersonalRecord is a member's best load for a lift at a rep max, in pounds.
// There is at most one per (user, kind, lift).
type PersonalRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Kind      RecordKind `json:"kind"`
	Lift      string     `json:"lift"`
	Value     float64    `json:"value"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (k RecordKind) IsValid() bool {
	for _, known := range RecordKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsKnownLift reports whether lift is one of Lifts.
func IsKnownLift(lift string) bool {
	for _, l := range Lifts {
		if l == lift {
			return true
		}
	}
	return false
}
