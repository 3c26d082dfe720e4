// internal/session/events.go
//
// Events a Session emits to its listeners, one payload type per event.

package session

import (
	"time"

	"github.com/robalobadob/studywordle/internal/game"
	"github.com/robalobadob/studywordle/internal/stats"
)

// EventType represents the type of session event.
type EventType string

const (
	EventRoundStarted        EventType = "round_started"
	EventTileUpdated         EventType = "tile_updated"
	EventGuessRejected       EventType = "guess_rejected"
	EventGuessRevealed       EventType = "guess_revealed"
	EventRoundEnded          EventType = "round_ended"
	EventHintRevealed        EventType = "hint_revealed"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventNotice              EventType = "notice"
)

// Event is what presenters receive. RoundID lets delayed presentation work
// (animations, timers) check that its round is still the current one.
type Event struct {
	Type      EventType `json:"type"`
	RoundID   string    `json:"roundId,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener receives session events synchronously.
type Listener func(Event)

// Payload types for the different events

// RoundStartedPayload describes the board for a new round.
type RoundStartedPayload struct {
	WordLength  int    `json:"wordLength"`
	MaxAttempts int    `json:"maxAttempts"`
	Definition  string `json:"definition"`
	ImageURL    string `json:"imageUrl,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty"`
}

// TileUpdatedPayload is sent when a letter is typed (Active) or erased.
type TileUpdatedPayload struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter"`
	Active bool   `json:"active"`
}

// GuessRejectedPayload is sent when a row cannot be submitted.
type GuessRejectedPayload struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// GuessRevealedPayload carries the marks for a submitted row.
type GuessRevealedPayload struct {
	Row   int         `json:"row"`
	Guess string      `json:"guess"`
	Marks []game.Mark `json:"marks"`
}

// RoundEndedPayload is sent once, after statistics have been recorded.
type RoundEndedPayload struct {
	Won          bool        `json:"won"`
	Word         string      `json:"word"`
	Attempts     int         `json:"attempts"`
	Streak       int         `json:"streak"`
	Played       int         `json:"played"`
	Distribution map[int]int `json:"distribution"`
	Related      []string    `json:"related,omitempty"`
}

// HintRevealedPayload carries a revealed letter; Position is zero-based.
type HintRevealedPayload struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

// AchievementPayload is sent once per newly unlocked achievement, in unlock order.
type AchievementPayload struct {
	Achievement stats.Achievement `json:"achievement"`
}

// NoticePayload is a short user-facing message (toast).
type NoticePayload struct {
	Message string `json:"message"`
}
