// Package mastery implements the per-concept mastery state machine driven by quiz
// session scores.
package mastery

import "fmt"

// Level is an ordinal mastery stage.
type Level int

const (
	NotStarted Level = iota
	Recall
	Understanding
	Apply
)

const (
	// MaxProgress caps the progress score.
	MaxProgress = 300

	// PassingScore is the lowest session score that earns progress without a perfect run.
	PassingScore = 0.7

	perfectAtMaxBonus = 50
	passBonus         = 25
	failPenalty       = 10
)

var levelNames = [...]string{"Not Started", "Recall", "Understanding", "Apply"}

// String returns the display name of l.
func (l Level) String() string {
	if l < NotStarted || l > Apply {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l >= NotStarted && l <= Apply
}

// State is a concept's position in the state machine.
type State struct {
	Level    Level `json:"mastery_level"`
	Progress int   `json:"progress"`
}

// Score is the fraction of answered questions that were correct. Zero answered
// questions score 0.
func Score(correct, total int) float64 {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct >= total {
		return 1
	}
	return float64(correct) / float64(total)
}

// Advance applies one completed quiz session's score to s.
//
//	score == 1.0: level up with progress reset, or +50 progress at Apply
//	score >= 0.7: +25 progress
//	otherwise:    -10 progress
//
// Progress stays within [0, MaxProgress]; the level never decreases.
func Advance(s State, score float64) State {
	s = clamp(s)

	switch {
	case score >= 1:
		if s.Level < Apply {
			s.Level++
			s.Progress = 0
		} else {
			s.Progress += perfectAtMaxBonus
		}
	case score >= PassingScore:
		s.Progress += passBonus
	default:
		s.Progress -= failPenalty
	}

	return clamp(s)
}

func clamp(s State) State {
	s.Level = max(NotStarted, min(s.Level, Apply))
	s.Progress = max(0, min(s.Progress, MaxProgress))
	return s
}
