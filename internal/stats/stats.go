// internal/stats/stats.go
//
// Persistent player statistics.
//
// One Statistics value exists per player; it is updated after every completed
// round and saved straight back to the store. JSON field names match the
// record the browser build wrote to local storage so old saves keep loading.
//
// Invariants:
//   - Played grows by exactly one per completed round.
//   - Streak grows by one on a win and drops to zero on a loss.
//   - Distribution counts wins by attempt number; keys 1..6 always exist.
package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// MaxAttempts is the number of distribution buckets always present.
const MaxAttempts = 6

// WordStats is the per-word outcome history that drives adaptive selection.
type WordStats struct {
	Success int `json:"success"`
	Fail    int `json:"fail"`
}

// Statistics is the whole persisted record.
type Statistics struct {
	Played       int                  `json:"played"`
	Streak       int                  `json:"streak"`
	Distribution map[int]int          `json:"distribution"`
	LastPlayed   *int64               `json:"lastPlayed"` // Unix milliseconds, nil before the first round
	WordStats    map[string]WordStats `json:"wordStats"`
	Achievements []string             `json:"achievements"`
}

// New returns empty statistics with a zeroed 1..6 distribution.
func New() *Statistics {
	s := &Statistics{}
	s.ensure()
	return s
}

// ensure fills in maps and slices a partial record may be missing.
func (s *Statistics) ensure() {
	if s.Distribution == nil {
		s.Distribution = make(map[int]int, MaxAttempts)
	}
	for i := 1; i <= MaxAttempts; i++ {
		if _, ok := s.Distribution[i]; !ok {
			s.Distribution[i] = 0
		}
	}
	if s.WordStats == nil {
		s.WordStats = map[string]WordStats{}
	}
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
}

// Word returns the history of word, zero-valued when it was never played.
func (s *Statistics) Word(word string) WordStats {
	return s.WordStats[word]
}

// Record applies the outcome of one completed round.
func (s *Statistics) Record(won bool, attempts int, word string, at time.Time) {
	s.ensure()
	s.Played++
	ms := at.UnixMilli()
	s.LastPlayed = &ms

	ws := s.WordStats[word]
	if won {
		s.Streak++
		ws.Success++
		if attempts >= 1 {
			s.Distribution[attempts]++
		}
	} else {
		s.Streak = 0
		ws.Fail++
	}
	s.WordStats[word] = ws
}

// LastPlayedAt reports when the last round finished.
func (s *Statistics) LastPlayedAt() (time.Time, bool) {
	if s.LastPlayed == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*s.LastPlayed), true
}

// Clone returns a deep copy safe to hand to presenters.
func (s *Statistics) Clone() *Statistics {
	c := &Statistics{
		Played:       s.Played,
		Streak:       s.Streak,
		Distribution: make(map[int]int, len(s.Distribution)),
		WordStats:    make(map[string]WordStats, len(s.WordStats)),
		Achievements: append([]string{}, s.Achievements...),
	}
	if s.LastPlayed != nil {
		ms := *s.LastPlayed
		c.LastPlayed = &ms
	}
	for k, v := range s.Distribution {
		c.Distribution[k] = v
	}
	for k, v := range s.WordStats {
		c.WordStats[k] = v
	}
	return c
}

// Encode serializes the record for the store.
func (s *Statistics) Encode() ([]byte, error) {
	s.ensure()
	return json.Marshal(s)
}

// Decode parses a stored record, filling defaults for missing fields.
func Decode(b []byte) (*Statistics, error) {
	var s Statistics
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}
	if s.Played < 0 || s.Streak < 0 {
		return nil, fmt.Errorf("decode statistics: negative counters (played=%d streak=%d)", s.Played, s.Streak)
	}
	s.ensure()
	s.Achievements = lo.Uniq(s.Achievements)
	return &s, nil
}
