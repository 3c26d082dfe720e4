// internal/game/engine.go
//
// Core engine for a single round.
// Responsibilities:
//   - Create rounds for a dataset entry.
//   - Collect typed letters and submit them as guesses.
//   - Score guesses using the two-pass algorithm (Evaluate).
//   - Track state transitions: playing → won/lost.
//   - Reveal hint letters.
//
// Letters are handled as runes so Ñ occupies exactly one tile.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/studywordle/internal/words"
)

var (
	ErrFinished      = errors.New("round finished")
	ErrIncomplete    = errors.New("guess is shorter than the word")
	ErrInvalidGuess  = errors.New("guess must match the word length and use letters only")
	ErrNothingToHint = errors.New("every letter is already revealed")
)

// NewRound starts a round for entry. maxAttempts <= 0 selects the default.
// entry.Word must be a non-empty normalized word.
func NewRound(entry words.Entry, maxAttempts int) *Round {
	if entry.Word == "" || words.Normalize(entry.Word) != entry.Word {
		panic(fmt.Sprintf("game: NewRound with unplayable word %q", entry.Word))
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Round{
		ID:          uuid.NewString(),
		Entry:       entry,
		MaxAttempts: maxAttempts,
		Guesses:     []string{},
		Marks:       [][]Mark{},
		Status:      StatusPlaying,
		target:      []rune(entry.Word),
	}
}

// Target returns the normalized target word.
func (r *Round) Target() string { return string(r.target) }

// Len is the target length in letters.
func (r *Round) Len() int { return len(r.target) }

// Input returns the letters typed for the current row.
func (r *Round) Input() string { return string(r.input) }

// Row is the zero-based index of the row being typed.
func (r *Round) Row() int { return len(r.Guesses) }

// Clone returns a deep copy that shares nothing with r.
func (r *Round) Clone() *Round {
	c := *r
	c.Entry.Related = slices.Clone(r.Entry.Related)
	c.Guesses = slices.Clone(r.Guesses)
	c.Marks = make([][]Mark, len(r.Marks))
	for i, m := range r.Marks {
		c.Marks[i] = slices.Clone(m)
	}
	c.target = slices.Clone(r.target)
	c.input = slices.Clone(r.input)
	return &c
}

// Finished reports whether the round reached a terminal state.
func (r *Round) Finished() bool { return r.Status != StatusPlaying }

// Type appends letter to the current row. It reports false, changing nothing,
// when the round is over, the row is full, or letter is outside the alphabet.
func (r *Round) Type(letter rune) bool {
	if r.Finished() || !words.IsLetter(letter) || len(r.input) >= len(r.target) {
		return false
	}
	r.input = append(r.input, letter)
	return true
}

// Backspace removes the last typed letter, reporting whether one was removed.
func (r *Round) Backspace() bool {
	if r.Finished() || len(r.input) == 0 {
		return false
	}
	r.input = r.input[:len(r.input)-1]
	return true
}

// Submit scores the typed row as a guess.
// A short row is rejected with ErrIncomplete and leaves all state untouched.
func (r *Round) Submit() ([]Mark, error) {
	if r.Finished() {
		return nil, ErrFinished
	}
	if len(r.input) != len(r.target) {
		return nil, ErrIncomplete
	}
	return r.apply(string(r.input)), nil
}

// ApplyGuess normalizes and scores a whole word at once, replacing whatever
// was typed. Diacritics fold but any other non-letter rejects the guess.
// Invalid guesses change nothing.
func (r *Round) ApplyGuess(guess string) ([]Mark, error) {
	if r.Finished() {
		return nil, ErrFinished
	}
	guess, ok := words.NormalizeGuess(guess)
	if !ok {
		return nil, ErrInvalidGuess
	}
	n := len([]rune(guess))
	if n < len(r.target) {
		return nil, ErrIncomplete
	}
	if n != len(r.target) {
		return nil, ErrInvalidGuess
	}
	return r.apply(guess), nil
}

// apply records a validated guess and moves the state machine.
//
// State transitions:
//   - guess equals the target → won.
//   - else if the attempt limit is reached → lost.
func (r *Round) apply(guess string) []Mark {
	marks := Evaluate(guess, r.Target())
	r.Guesses = append(r.Guesses, guess)
	r.Marks = append(r.Marks, marks)
	r.input = r.input[:0]

	if guess == r.Target() {
		r.Status = StatusWon
	} else if len(r.Guesses) >= r.MaxAttempts {
		r.Status = StatusLost
	}
	return marks
}

// Revealed lists the positions some guess already matched exactly.
func (r *Round) Revealed() []int {
	return lo.Filter(lo.Range(len(r.target)), func(i int, _ int) bool {
		return lo.ContainsBy(r.Marks, func(m []Mark) bool { return m[i] == MarkCorrect })
	})
}

// Hint reveals one not-yet-matched target letter chosen uniformly at random.
// It does not touch guesses or typed input.
func (r *Round) Hint(rng *rand.Rand) (Hint, error) {
	if r.Finished() {
		return Hint{}, ErrFinished
	}
	revealed := r.Revealed()
	hidden := lo.Without(lo.Range(len(r.target)), revealed...)
	if len(hidden) == 0 {
		return Hint{}, ErrNothingToHint
	}
	pos := hidden[rng.IntN(len(hidden))]
	r.HintsUsed++
	return Hint{Position: pos, Letter: r.target[pos]}, nil
}

// KeyStates folds every revealed mark into the best result per letter.
func (r *Round) KeyStates() map[rune]Mark {
	out := map[rune]Mark{}
	for gi, g := range r.Guesses {
		for i, c := range []rune(g) {
			m := r.Marks[gi][i]
			if m.rank() > out[c].rank() {
				out[c] = m
			}
		}
	}
	return out
}

// Evaluate scores guess against target with the standard two-pass algorithm.
//
// Pass 1: mark exact matches correct and consume that letter once.
// Pass 2: for every other position mark present while unconsumed copies of
// the letter remain, absent otherwise.
//
// No letter is ever marked correct or present more often than it occurs in
// target, and exact matches always win over partial ones. Guess and target
// must have the same length in runes; otherwise Evaluate returns nil.
func Evaluate(guess, target string) []Mark {
	g, t := []rune(guess), []rune(target)
	if len(g) != len(t) {
		return nil
	}

	remaining := make(map[rune]int, len(t))
	for _, c := range t {
		remaining[c]++
	}

	res := make([]Mark, len(g))
	for i := range g {
		if g[i] == t[i] {
			res[i] = MarkCorrect
			remaining[g[i]]--
		}
	}

	for i := range g {
		if res[i] == MarkCorrect {
			continue
		}
		if remaining[g[i]] > 0 {
			res[i] = MarkPresent
			remaining[g[i]]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}
