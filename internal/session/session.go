// internal/session/session.go
//
// Package session owns the state of one player's game: the active dataset,
// the persistent statistics and the current round.
//
// A Session is the single place where that state changes. Every change is
// announced to subscribed listeners, which is how a presentation layer learns
// what to draw. All methods run synchronously and the terminal bookkeeping of
// a round (statistics, achievements, save) completes inside the call that
// ended it, so nothing a presenter does afterwards can interleave with it.
//
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/studywordle/internal/game"
	"github.com/robalobadob/studywordle/internal/selector"
	"github.com/robalobadob/studywordle/internal/stats"
	"github.com/robalobadob/studywordle/internal/store"
	"github.com/robalobadob/studywordle/internal/words"
)

// ErrCorruptData marks a persisted dataset that failed validation on load.
// It is recovered from locally and only ever logged.
var ErrCorruptData = errors.New("corrupt persisted data")

// Keys accepted by HandleKey besides single letters.
const (
	KeyEnter     = "ENTER"
	KeyBackspace = "BACKSPACE"
)

type subscription struct {
	id int
	fn Listener
}

// Session is the game state owner.
type Session struct {
	store       store.Store
	log         zerolog.Logger
	rng         *rand.Rand
	sel         *selector.Selector
	now         func() time.Time
	maxAttempts int

	dataset []words.Entry
	raw     string
	stats   *stats.Statistics
	round   *game.Round

	subs   []subscription
	nextID int
}

// New builds a Session on top of st. Call Init before playing.
func New(st store.Store, opts ...Option) *Session {
	s := &Session{
		store:       st,
		log:         log.Logger,
		now:         time.Now,
		maxAttempts: game.DefaultMaxAttempts,
		stats:       stats.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.sel = selector.New(s.rng)
	s.log = s.log.With().Str("component", "session").Logger()
	return s
}

// Subscribe registers fn for every future event and returns a function that
// removes it again.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.subs = lo.Reject(s.subs, func(sub subscription, _ int) bool { return sub.id == id })
	}
}

func (s *Session) emit(t EventType, payload any) {
	ev := Event{Type: t, Payload: payload, Timestamp: s.now()}
	if s.round != nil {
		ev.RoundID = s.round.ID
	}
	// Listeners may unsubscribe while being notified.
	for _, sub := range slices.Clone(s.subs) {
		sub.fn(ev)
	}
}

func (s *Session) notice(msg string) {
	s.emit(EventNotice, NoticePayload{Message: msg})
}

// Init loads statistics and the dataset from the store and starts a round.
// Store failures and damaged records are never fatal: the session falls back
// to fresh statistics and the built-in dataset.
func (s *Session) Init(ctx context.Context) {
	s.stats = s.loadStats(ctx)
	s.dataset = s.loadDataset(ctx)
	if raw, err := s.store.Load(ctx, store.KeyRawData); err == nil {
		s.raw = string(raw)
	}
	s.log.Info().Int("entries", len(s.dataset)).Int("played", s.stats.Played).Msg("session initialized")
	s.NewRound()
}

func (s *Session) loadStats(ctx context.Context) *stats.Statistics {
	b, err := s.store.Load(ctx, store.KeyStats)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Msg("load statistics")
		}
		return stats.New()
	}
	st, err := stats.Decode(b)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable statistics")
		return stats.New()
	}
	return st
}

func (s *Session) loadDataset(ctx context.Context) []words.Entry {
	b, err := s.store.Load(ctx, store.KeyDataset)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Msg("load dataset")
		}
		return words.MustDefaults()
	}

	var entries []words.Entry
	err = json.Unmarshal(b, &entries)
	if err == nil {
		err = words.Validate(entries)
	}
	if err != nil {
		s.log.Warn().Err(fmt.Errorf("%w: %v", ErrCorruptData, err)).Msg("restoring default dataset")
		s.clear(ctx, store.KeyDataset)
		s.clear(ctx, store.KeyRawData)
		s.notice("Saved word list was damaged; restored the default list.")
		return words.MustDefaults()
	}
	for i := range entries {
		entries[i].Word = words.Normalize(entries[i].Word)
	}
	return entries
}

// NewRound abandons the current round, if any, and starts another. An
// abandoned round does not count as played. It returns the new round's ID.
func (s *Session) NewRound() string {
	playable := lo.Filter(s.dataset, func(e words.Entry, _ int) bool { return e.Word != "" })
	if len(playable) == 0 {
		s.dataset = words.MustDefaults()
		playable = s.dataset
	}
	entry := s.sel.Next(playable, s.stats.WordStats)
	s.round = game.NewRound(entry, s.maxAttempts)
	s.log.Debug().Str("round", s.round.ID).Int("length", s.round.Len()).Msg("round started")

	s.emit(EventRoundStarted, RoundStartedPayload{
		WordLength:  s.round.Len(),
		MaxAttempts: s.round.MaxAttempts,
		Definition:  entry.Definition,
		ImageURL:    entry.ImageURL,
		AudioURL:    entry.AudioURL,
	})
	return s.round.ID
}

// HandleKey routes one raw key: ENTER, BACKSPACE or a single letter.
// Unknown keys and any key after the round ended are ignored. Only ENTER can
// return an error, the one from Submit.
func (s *Session) HandleKey(ctx context.Context, key string) error {
	if s.round == nil || s.round.Finished() {
		return nil
	}
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case KeyEnter:
		return s.Submit(ctx)
	case KeyBackspace:
		s.Backspace()
	default:
		if letter, ok := words.NormalizeKey(key); ok {
			s.Type(letter)
		}
	}
	return nil
}

// Type adds a letter to the current row.
func (s *Session) Type(letter rune) {
	if s.round == nil || !s.round.Type(letter) {
		return
	}
	s.emit(EventTileUpdated, TileUpdatedPayload{
		Row:    s.round.Row(),
		Col:    len([]rune(s.round.Input())) - 1,
		Letter: string(letter),
		Active: true,
	})
}

// Backspace erases the last letter of the current row.
func (s *Session) Backspace() {
	if s.round == nil || !s.round.Backspace() {
		return
	}
	s.emit(EventTileUpdated, TileUpdatedPayload{
		Row: s.round.Row(),
		Col: len([]rune(s.round.Input())),
	})
}

// Submit scores the current row. A short row is rejected with
// game.ErrIncomplete and nothing changes. A guess that ends the round records
// the outcome, unlocks achievements and saves statistics before returning.
func (s *Session) Submit(ctx context.Context) error {
	if s.round == nil {
		return game.ErrFinished
	}
	row := s.round.Row()
	marks, err := s.round.Submit()
	if err != nil {
		if errors.Is(err, game.ErrIncomplete) {
			s.emit(EventGuessRejected, GuessRejectedPayload{Row: row, Reason: "Not enough letters"})
		}
		return err
	}

	s.reveal(ctx, row, marks)
	return nil
}

// Guess submits a whole word, replacing whatever was typed. It fails like
// Submit and additionally with game.ErrInvalidGuess for a word that is too
// long or contains anything but letters.
func (s *Session) Guess(ctx context.Context, word string) error {
	if s.round == nil {
		return game.ErrFinished
	}
	row := s.round.Row()
	marks, err := s.round.ApplyGuess(word)
	switch {
	case errors.Is(err, game.ErrIncomplete):
		s.emit(EventGuessRejected, GuessRejectedPayload{Row: row, Reason: "Not enough letters"})
		return err
	case errors.Is(err, game.ErrInvalidGuess):
		s.emit(EventGuessRejected, GuessRejectedPayload{Row: row, Reason: "Use letters only, one per tile"})
		return err
	case err != nil:
		return err
	}
	s.reveal(ctx, row, marks)
	return nil
}

func (s *Session) reveal(ctx context.Context, row int, marks []game.Mark) {
	s.emit(EventGuessRevealed, GuessRevealedPayload{
		Row:   row,
		Guess: s.round.Guesses[row],
		Marks: marks,
	})
	if s.round.Finished() {
		s.finish(ctx)
	}
}

// finish records a terminal round. It runs exactly once per round because a
// finished round rejects every further guess.
func (s *Session) finish(ctx context.Context) {
	r := s.round
	won := r.Status == game.StatusWon
	s.stats.Record(won, len(r.Guesses), r.Target(), s.now())
	unlocked := s.stats.Unlock()
	s.saveStats(ctx)

	s.log.Info().
		Str("round", r.ID).
		Bool("won", won).
		Int("attempts", len(r.Guesses)).
		Int("hints", r.HintsUsed).
		Int("streak", s.stats.Streak).
		Msg("round finished")

	s.emit(EventRoundEnded, RoundEndedPayload{
		Won:          won,
		Word:         r.Target(),
		Attempts:     len(r.Guesses),
		Streak:       s.stats.Streak,
		Played:       s.stats.Played,
		Distribution: s.stats.Clone().Distribution,
		Related:      slices.Clone(r.Entry.Related),
	})
	for _, a := range unlocked {
		s.log.Info().Str("achievement", a.ID).Msg("achievement unlocked")
		s.emit(EventAchievementUnlocked, AchievementPayload{Achievement: a})
	}
}

// UseHint reveals one target letter not yet matched by any guess. It returns
// game.ErrFinished outside a playing round and game.ErrNothingToHint when
// every position is already known.
func (s *Session) UseHint() (game.Hint, error) {
	if s.round == nil {
		return game.Hint{}, game.ErrFinished
	}
	h, err := s.round.Hint(s.rng)
	if err != nil {
		if errors.Is(err, game.ErrNothingToHint) {
			s.notice("You already have every letter!")
		}
		return game.Hint{}, err
	}
	s.emit(EventHintRevealed, HintRevealedPayload{Position: h.Position, Letter: string(h.Letter)})
	return h, nil
}

// SaveSettings replaces the dataset with one parsed from raw and starts a new
// round. Blank input restores the built-in dataset. On a parse failure the
// previous dataset and round stay untouched and the words.ErrFormat error is
// returned.
func (s *Session) SaveSettings(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		s.Reset(ctx)
		return nil
	}

	entries, err := words.Parse(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("rejected dataset")
		s.notice("Invalid format")
		return err
	}

	s.dataset = entries
	s.raw = raw
	if b, err := json.Marshal(entries); err != nil {
		s.log.Warn().Err(err).Msg("encode dataset")
	} else {
		s.save(ctx, store.KeyDataset, b)
	}
	s.save(ctx, store.KeyRawData, []byte(raw))
	s.log.Info().Int("entries", len(entries)).Msg("dataset replaced")
	s.notice("Word list saved")
	s.NewRound()
	return nil
}

// Reset drops the custom dataset and starts a round from the defaults.
func (s *Session) Reset(ctx context.Context) {
	s.clear(ctx, store.KeyDataset)
	s.clear(ctx, store.KeyRawData)
	s.dataset = words.MustDefaults()
	s.raw = ""
	s.log.Info().Msg("dataset reset to defaults")
	s.notice("Default word list restored")
	s.NewRound()
}

// PackSource renders a predefined study pack as JSON text ready to be edited
// and passed to SaveSettings.
func (s *Session) PackSource(name string) (string, error) {
	entries, err := words.Pack(name)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Round returns a copy of the current round, nil before Init.
func (s *Session) Round() *game.Round {
	if s.round == nil {
		return nil
	}
	return s.round.Clone()
}

// RoundID identifies the current round.
func (s *Session) RoundID() string {
	if s.round == nil {
		return ""
	}
	return s.round.ID
}

// IsCurrent reports whether id still names the current round.
func (s *Session) IsCurrent(id string) bool {
	return id != "" && id == s.RoundID()
}

// Stats returns a copy of the statistics.
func (s *Session) Stats() *stats.Statistics { return s.stats.Clone() }

// Dataset returns a copy of the active dataset.
func (s *Session) Dataset() []words.Entry { return slices.Clone(s.dataset) }

// RawDataset returns the text the active custom dataset was parsed from,
// empty when the defaults are in use.
func (s *Session) RawDataset() string { return s.raw }

// ShareText renders the current round as an emoji grid.
func (s *Session) ShareText() string {
	if s.round == nil {
		return ""
	}
	return s.round.ShareText()
}

func (s *Session) saveStats(ctx context.Context) {
	b, err := s.stats.Encode()
	if err != nil {
		s.log.Warn().Err(err).Msg("encode statistics")
		return
	}
	s.save(ctx, store.KeyStats, b)
}

// save and clear treat store failures as non-fatal: the in-memory state
// stays authoritative for the rest of the process.
func (s *Session) save(ctx context.Context, key string, b []byte) {
	if err := s.store.Save(ctx, key, b); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("store save failed")
	}
}

func (s *Session) clear(ctx context.Context, key string) {
	if err := s.store.Clear(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("store clear failed")
	}
}
