package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/studywordle/internal/game"
	"github.com/robalobadob/studywordle/internal/stats"
	"github.com/robalobadob/studywordle/internal/store"
	"github.com/robalobadob/studywordle/internal/words"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// recorder collects every event a session emits.
type recorder struct {
	events []Event
}

func (r *recorder) listen(e Event) { r.events = append(r.events, e) }

func (r *recorder) ofType(t EventType) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() { r.events = nil }

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}
func (failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}
func (failingStore) Clear(context.Context, string) error { return errors.New("disk gone") }

func newTestSession(t *testing.T, st store.Store) (*Session, *recorder) {
	t.Helper()
	s := New(st,
		WithLogger(zerolog.Nop()),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time { return fixedNow }),
	)
	rec := &recorder{}
	s.Subscribe(rec.listen)
	s.Init(context.Background())
	return s, rec
}

// singleWord installs a one-entry dataset so the target is known.
func singleWord(t *testing.T, s *Session, raw string) {
	t.Helper()
	if err := s.SaveSettings(context.Background(), raw); err != nil {
		t.Fatalf("SaveSettings(%q) error: %v", raw, err)
	}
}

func typeWord(t *testing.T, s *Session, word string) error {
	t.Helper()
	ctx := context.Background()
	for _, r := range word {
		if err := s.HandleKey(ctx, string(r)); err != nil {
			t.Fatalf("HandleKey(%q) error: %v", r, err)
		}
	}
	return s.HandleKey(ctx, KeyEnter)
}

func TestInitStartsRoundFromDefaults(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())

	started := rec.ofType(EventRoundStarted)
	if len(started) != 1 {
		t.Fatalf("round_started events = %d, want 1", len(started))
	}
	p := started[0].Payload.(RoundStartedPayload)
	r := s.Round()
	if p.WordLength != r.Len() || p.MaxAttempts != game.DefaultMaxAttempts {
		t.Errorf("payload = %+v, round len %d", p, r.Len())
	}
	if started[0].RoundID != s.RoundID() {
		t.Errorf("event RoundID = %q, want %q", started[0].RoundID, s.RoundID())
	}

	defaults := words.MustDefaults()
	if len(s.Dataset()) != len(defaults) {
		t.Errorf("Dataset() len = %d, want %d", len(s.Dataset()), len(defaults))
	}
	if s.RawDataset() != "" {
		t.Errorf("RawDataset() = %q, want empty", s.RawDataset())
	}
}

func TestWinFlow(t *testing.T) {
	st := store.NewMemoryStore()
	s, rec := newTestSession(t, st)
	singleWord(t, s, "GATO,Felino doméstico")
	rec.reset()

	if err := typeWord(t, s, "gato"); err != nil {
		t.Fatalf("submit error: %v", err)
	}

	revealed := rec.ofType(EventGuessRevealed)
	if len(revealed) != 1 {
		t.Fatalf("guess_revealed events = %d, want 1", len(revealed))
	}
	rp := revealed[0].Payload.(GuessRevealedPayload)
	if rp.Guess != "GATO" || rp.Row != 0 {
		t.Errorf("revealed = %+v", rp)
	}

	ended := rec.ofType(EventRoundEnded)
	if len(ended) != 1 {
		t.Fatalf("round_ended events = %d, want 1", len(ended))
	}
	ep := ended[0].Payload.(RoundEndedPayload)
	if !ep.Won || ep.Word != "GATO" || ep.Attempts != 1 || ep.Streak != 1 || ep.Played != 1 {
		t.Errorf("round_ended payload = %+v", ep)
	}
	if ep.Distribution[1] != 1 {
		t.Errorf("Distribution[1] = %d, want 1", ep.Distribution[1])
	}

	// first_win unlocks after the round_ended event.
	ach := rec.ofType(EventAchievementUnlocked)
	if len(ach) != 1 || ach[0].Payload.(AchievementPayload).Achievement.ID != "first_win" {
		t.Fatalf("achievement events = %+v", ach)
	}
	last := rec.events[len(rec.events)-1]
	if last.Type != EventAchievementUnlocked {
		t.Errorf("last event = %s, want achievement_unlocked", last.Type)
	}

	// Statistics were saved before Submit returned.
	b, err := st.Load(context.Background(), store.KeyStats)
	if err != nil {
		t.Fatalf("stats not persisted: %v", err)
	}
	saved, err := stats.Decode(b)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if saved.Played != 1 || saved.Word("GATO").Success != 1 || !saved.Has("first_win") {
		t.Errorf("saved stats = %+v", saved)
	}
	if at, ok := saved.LastPlayedAt(); !ok || !at.Equal(fixedNow) {
		t.Errorf("LastPlayedAt() = %v, %v", at, ok)
	}
}

func TestKeysAfterRoundEndAreIgnored(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "SOL,Estrella")
	if err := typeWord(t, s, "SOL"); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	rec.reset()

	if err := typeWord(t, s, "SOL"); err != nil {
		t.Errorf("HandleKey after end error = %v, want nil", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("events after end = %d, want 0", len(rec.events))
	}
	if err := s.Submit(context.Background()); !errors.Is(err, game.ErrFinished) {
		t.Errorf("Submit() after end error = %v, want ErrFinished", err)
	}
	if got := s.Stats().Played; got != 1 {
		t.Errorf("Played = %d, want 1", got)
	}
}

func TestLossRecordedOnce(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "GATO,Felino")
	rec.reset()

	for i := 0; i < game.DefaultMaxAttempts; i++ {
		if err := typeWord(t, s, "PERO"); err != nil {
			t.Fatalf("guess %d error: %v", i+1, err)
		}
	}

	ended := rec.ofType(EventRoundEnded)
	if len(ended) != 1 {
		t.Fatalf("round_ended events = %d, want 1", len(ended))
	}
	if ep := ended[0].Payload.(RoundEndedPayload); ep.Won || ep.Attempts != 6 {
		t.Errorf("round_ended payload = %+v", ep)
	}

	st := s.Stats()
	if st.Played != 1 || st.Streak != 0 || st.Word("GATO").Fail != 1 {
		t.Errorf("stats = %+v", st)
	}
	for k, v := range st.Distribution {
		if v != 0 {
			t.Errorf("Distribution[%d] = %d after a loss, want 0", k, v)
		}
	}
	if s.Round().Status != game.StatusLost {
		t.Errorf("Status = %s, want lost", s.Round().Status)
	}
}

func TestShortGuessRejected(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "GATO,Felino")
	rec.reset()

	err := typeWord(t, s, "GAT")
	if !errors.Is(err, game.ErrIncomplete) {
		t.Fatalf("error = %v, want ErrIncomplete", err)
	}
	rejected := rec.ofType(EventGuessRejected)
	if len(rejected) != 1 {
		t.Fatalf("guess_rejected events = %d, want 1", len(rejected))
	}
	r := s.Round()
	if len(r.Guesses) != 0 || r.Input() != "GAT" || r.Status != game.StatusPlaying {
		t.Errorf("round changed: guesses=%v input=%q status=%s", r.Guesses, r.Input(), r.Status)
	}
	if s.Stats().Played != 0 {
		t.Errorf("Played = %d, want 0", s.Stats().Played)
	}
}

func TestGuessWholeWord(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "NIÑO,Persona de poca edad")
	ctx := context.Background()

	if err := s.Guess(ctx, "ninos"); !errors.Is(err, game.ErrInvalidGuess) {
		t.Errorf("Guess(too long) error = %v, want ErrInvalidGuess", err)
	}
	if err := s.Guess(ctx, "ni7o"); !errors.Is(err, game.ErrInvalidGuess) {
		t.Errorf("Guess(with digit) error = %v, want ErrInvalidGuess", err)
	}
	if len(s.Round().Guesses) != 0 {
		t.Fatalf("rejected guesses were recorded: %v", s.Round().Guesses)
	}
	if err := s.Guess(ctx, "niño"); err != nil {
		t.Fatalf("Guess() error: %v", err)
	}
	if s.Round().Status != game.StatusWon {
		t.Errorf("Status = %s, want won", s.Round().Status)
	}
	if len(rec.ofType(EventGuessRejected)) != 2 {
		t.Errorf("guess_rejected events = %d, want 2", len(rec.ofType(EventGuessRejected)))
	}
}

func TestTypingAndBackspace(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "SOL,Estrella")
	rec.reset()
	ctx := context.Background()

	for _, k := range []string{"s", "1", "o", "l", "x", "BACKSPACE"} {
		_ = s.HandleKey(ctx, k)
	}
	if got := s.Round().Input(); got != "SO" {
		t.Errorf("Input() = %q, want SO", got)
	}

	tiles := rec.ofType(EventTileUpdated)
	// s, o, l typed; 1 ignored; x over length; backspace.
	if len(tiles) != 4 {
		t.Fatalf("tile_updated events = %d, want 4", len(tiles))
	}
	last := tiles[3].Payload.(TileUpdatedPayload)
	if last.Active || last.Col != 2 || last.Row != 0 {
		t.Errorf("backspace payload = %+v", last)
	}
}

func TestCorruptDatasetFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "empty word", stored: `[{"word":"","def":""}]`},
		{name: "missing definition", stored: `[{"word":"GATO"}]`},
		{name: "not json", stored: `{not json`},
		{name: "empty list", stored: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemoryStore()
			_ = st.Save(ctx, store.KeyDataset, []byte(tt.stored))
			_ = st.Save(ctx, store.KeyRawData, []byte("junk"))

			s, rec := newTestSession(t, st)

			if len(s.Dataset()) != len(words.MustDefaults()) {
				t.Errorf("Dataset() len = %d, want defaults", len(s.Dataset()))
			}
			if _, err := st.Load(ctx, store.KeyDataset); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("corrupt dataset not cleared: %v", err)
			}
			if _, err := st.Load(ctx, store.KeyRawData); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("raw data not cleared: %v", err)
			}
			if s.RawDataset() != "" {
				t.Errorf("RawDataset() = %q, want empty", s.RawDataset())
			}
			if len(rec.ofType(EventNotice)) != 1 {
				t.Errorf("notice events = %d, want 1", len(rec.ofType(EventNotice)))
			}
			if r := s.Round(); r == nil || r.Len() == 0 {
				t.Fatalf("round not started on a real word: %+v", r)
			}

			// An empty row never ends the round.
			if err := s.HandleKey(ctx, KeyEnter); !errors.Is(err, game.ErrIncomplete) {
				t.Errorf("ENTER on empty row error = %v, want ErrIncomplete", err)
			}
			if s.Stats().Played != 0 {
				t.Errorf("Played = %d, want 0", s.Stats().Played)
			}
		})
	}
}

func TestUnreadableStatsStartFresh(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Save(ctx, store.KeyStats, []byte("{not json"))

	s, _ := newTestSession(t, st)
	if got := s.Stats(); got.Played != 0 || len(got.Distribution) != stats.MaxAttempts {
		t.Errorf("Stats() = %+v, want fresh", got)
	}
}

func TestStoreFailuresAreNotFatal(t *testing.T) {
	s, _ := newTestSession(t, failingStore{})
	singleWord(t, s, "SOL,Estrella")
	if err := typeWord(t, s, "SOL"); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if s.Stats().Played != 1 {
		t.Errorf("Played = %d, want 1", s.Stats().Played)
	}
}

func TestStatsSurviveRestart(t *testing.T) {
	st := store.NewMemoryStore()
	s, _ := newTestSession(t, st)
	singleWord(t, s, "SOL,Estrella")
	if err := typeWord(t, s, "SOL"); err != nil {
		t.Fatalf("submit error: %v", err)
	}

	again, _ := newTestSession(t, st)
	got := again.Stats()
	if got.Played != 1 || got.Streak != 1 || !got.Has("first_win") {
		t.Errorf("reloaded stats = %+v", got)
	}
	if again.RawDataset() != "SOL,Estrella" {
		t.Errorf("RawDataset() = %q", again.RawDataset())
	}
	if d := again.Dataset(); len(d) != 1 || d[0].Word != "SOL" {
		t.Errorf("Dataset() = %+v", d)
	}
}

func TestAchievementsUnlockOnce(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "SOL,Estrella")

	for i := 0; i < 3; i++ {
		if i > 0 {
			s.NewRound()
		}
		if err := typeWord(t, s, "SOL"); err != nil {
			t.Fatalf("round %d error: %v", i+1, err)
		}
	}

	var ids []string
	for _, e := range rec.ofType(EventAchievementUnlocked) {
		ids = append(ids, e.Payload.(AchievementPayload).Achievement.ID)
	}
	if strings.Join(ids, ",") != "first_win,streak_3" {
		t.Errorf("unlocked = %v, want [first_win streak_3]", ids)
	}
	if got := s.Stats().Achievements; len(got) != 2 {
		t.Errorf("Achievements = %v", got)
	}
}

func TestSaveSettingsErrorKeepsState(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "GATO,Felino")
	id := s.RoundID()
	rec.reset()

	err := s.SaveSettings(context.Background(), `[{"word":"","def":"x"}]`)
	if !errors.Is(err, words.ErrFormat) {
		t.Fatalf("SaveSettings() error = %v, want ErrFormat", err)
	}
	if s.RoundID() != id {
		t.Error("round was replaced after a failed save")
	}
	if d := s.Dataset(); len(d) != 1 || d[0].Word != "GATO" {
		t.Errorf("Dataset() = %+v", d)
	}
	if s.RawDataset() != "GATO,Felino" {
		t.Errorf("RawDataset() = %q", s.RawDataset())
	}
	if len(rec.ofType(EventNotice)) != 1 {
		t.Errorf("notice events = %d, want 1", len(rec.ofType(EventNotice)))
	}
}

func TestSaveSettingsBlankResets(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s, _ := newTestSession(t, st)
	singleWord(t, s, "GATO,Felino")

	if err := s.SaveSettings(ctx, "  \n "); err != nil {
		t.Fatalf("SaveSettings(blank) error: %v", err)
	}
	if len(s.Dataset()) != len(words.MustDefaults()) || s.RawDataset() != "" {
		t.Errorf("dataset not reset: %d entries, raw %q", len(s.Dataset()), s.RawDataset())
	}
	if _, err := st.Load(ctx, store.KeyDataset); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stored dataset not cleared: %v", err)
	}
}

func TestNewRoundInvalidatesID(t *testing.T) {
	s, _ := newTestSession(t, store.NewMemoryStore())
	old := s.RoundID()
	if !s.IsCurrent(old) {
		t.Fatal("IsCurrent(current) = false")
	}
	next := s.NewRound()
	if s.IsCurrent(old) || !s.IsCurrent(next) || s.IsCurrent("") {
		t.Errorf("IsCurrent after NewRound: old=%v next=%v", s.IsCurrent(old), s.IsCurrent(next))
	}
	if s.Stats().Played != 0 {
		t.Error("abandoned round counted as played")
	}
}

func TestUseHint(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "SOL,Estrella")
	rec.reset()

	for i := 0; i < 3; i++ {
		h, err := s.UseHint()
		if err != nil {
			t.Fatalf("hint %d error: %v", i+1, err)
		}
		if want := []rune("SOL")[h.Position]; h.Letter != want {
			t.Errorf("hint letter = %c, want %c", h.Letter, want)
		}
	}
	if got := len(rec.ofType(EventHintRevealed)); got != 3 {
		t.Errorf("hint_revealed events = %d, want 3", got)
	}
	if s.Round().HintsUsed != 3 {
		t.Errorf("HintsUsed = %d, want 3", s.Round().HintsUsed)
	}

	// Hints do not count as revealed positions; guessing them does.
	if err := s.Guess(context.Background(), "SAL"); err != nil {
		t.Fatalf("Guess() error: %v", err)
	}
	if _, err := s.UseHint(); err != nil {
		t.Errorf("UseHint() error = %v, want a hint for position 1", err)
	}
	if err := s.Guess(context.Background(), "SOL"); err != nil {
		t.Fatalf("Guess() error: %v", err)
	}
	if _, err := s.UseHint(); !errors.Is(err, game.ErrFinished) {
		t.Errorf("UseHint() after win error = %v, want ErrFinished", err)
	}
}

func TestNothingToHint(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "SOLO,Sin compañía")
	rec.reset()

	if err := s.Guess(context.Background(), "SOLA"); err != nil {
		t.Fatalf("Guess() error: %v", err)
	}
	if err := s.Guess(context.Background(), "POLO"); err != nil {
		t.Fatalf("Guess() error: %v", err)
	}
	if _, err := s.UseHint(); !errors.Is(err, game.ErrNothingToHint) {
		t.Errorf("UseHint() error = %v, want ErrNothingToHint", err)
	}
	if len(rec.ofType(EventNotice)) != 1 {
		t.Errorf("notice events = %d, want 1", len(rec.ofType(EventNotice)))
	}
}

func TestUnsubscribe(t *testing.T) {
	s, rec := newTestSession(t, store.NewMemoryStore())
	other := &recorder{}
	stop := s.Subscribe(other.listen)

	s.NewRound()
	stop()
	s.NewRound()

	if len(other.events) != 1 {
		t.Errorf("unsubscribed listener got %d events, want 1", len(other.events))
	}
	if len(rec.ofType(EventRoundStarted)) != 3 {
		t.Errorf("remaining listener got %d round_started, want 3", len(rec.ofType(EventRoundStarted)))
	}
}

func TestPackSourceRoundTrips(t *testing.T) {
	s, _ := newTestSession(t, store.NewMemoryStore())
	src, err := s.PackSource("chemistry")
	if err != nil {
		t.Fatalf("PackSource() error: %v", err)
	}
	if err := s.SaveSettings(context.Background(), src); err != nil {
		t.Fatalf("SaveSettings(pack) error: %v", err)
	}
	want, _ := words.Pack("chemistry")
	if len(s.Dataset()) != len(want) {
		t.Errorf("Dataset() len = %d, want %d", len(s.Dataset()), len(want))
	}
	if _, err := s.PackSource("nope"); err == nil {
		t.Error("PackSource(unknown) error = nil")
	}
}

func TestShareText(t *testing.T) {
	s, _ := newTestSession(t, store.NewMemoryStore())
	singleWord(t, s, "SOL,Estrella")
	_ = s.Guess(context.Background(), "SAL")
	_ = s.Guess(context.Background(), "SOL")

	text := s.ShareText()
	if !strings.Contains(text, "2/6") || !strings.Contains(text, "🟩⬛🟩\n🟩🟩🟩") {
		t.Errorf("ShareText() = %q", text)
	}
}
