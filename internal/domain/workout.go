package domain

import "time"

// Workout is a workout of the day.
// Several rows may exist for one date; the most recently created one wins.
type Workout struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Title       string    `json:"title"`
	Categories  []string  `json:"type"`
	Description string    `json:"description"`
	Level       string    `json:"level"` // free-text difficulty note, not a competition Level
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
