package domain

// Level is a competition tier a member scored in.
type Level string

const (
	LevelRxd    Level = "Rxd" // as prescribed
	LevelScaled Level = "Scaled"
	LevelA      Level = "A"
	LevelB      Level = "B"
	LevelC      Level = "C"
)

// LevelPriority is the display order of levels, best first.
var LevelPriority = []Level{LevelRxd, LevelScaled, LevelA, LevelB, LevelC}

// IsKnown reports whether l is one of LevelPriority.
// Stored rows may carry other values; only known levels are accepted on write.
func (l Level) IsKnown() bool {
	for _, known := range LevelPriority {
		if l == known {
			return true
		}
	}
	return false
}
