// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Mark: per-letter result of a guess (correct/present/absent).
//   - Status: lifecycle of a round (playing → won | lost).
//   - Round: state of the single active round.
//   - Hint: a revealed letter.

package game

import "github.com/robalobadob/studywordle/internal/words"

// DefaultMaxAttempts is the number of guesses a round allows.
const DefaultMaxAttempts = 6

// Mark represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the target at this position.
//   - "present": letter is in the target at another, unmatched position.
//   - "absent":  no unmatched occurrence of the letter remains in the target.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// rank orders marks for keyboard colouring: a key shows its best result.
func (m Mark) rank() int {
	switch m {
	case MarkCorrect:
		return 3
	case MarkPresent:
		return 2
	case MarkAbsent:
		return 1
	}
	return 0
}

// Status is the lifecycle state of a round. Won and lost are terminal.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Round holds the state of the one active round. A fresh Round is created for
// every new word; finished rounds are never reopened.
type Round struct {
	ID          string      // Unique round token; stale callbacks compare against it.
	Entry       words.Entry // Target entry (word is normalized).
	MaxAttempts int         // Guess limit, normally 6.
	Guesses     []string    // Submitted guesses, oldest first.
	Marks       [][]Mark    // Marks[i] scores Guesses[i].
	Status      Status
	HintsUsed   int

	target []rune
	input  []rune
}

// Hint is a revealed target letter. Position is zero-based.
type Hint struct {
	Position int
	Letter   rune
}
