// console.go
//
// Line-oriented presenter for a game session.
// Responsibilities:
//   - Read one command or guess per line.
//   - Print the board, toasts and round summaries from session events.
//
// Commands start with a colon; anything else is a guess.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/robalobadob/studywordle/internal/game"
	"github.com/robalobadob/studywordle/internal/session"
	"github.com/robalobadob/studywordle/internal/words"
)

const consoleHelp = `Type a word to guess it. Commands:
  :hint          reveal one letter
  :new           skip to a new word
  :stats         show statistics
  :share         print the result grid
  :keys          show letters tried so far
  :packs         list study packs
  :pack <name>   study a pack
  :load <file>   study a custom word list
  :data          print the custom word list
  :reset         go back to the default words
  :help          this text
  :quit          leave`

// console renders session events to w.
type console struct {
	s     *session.Session
	w     io.Writer
	tiles map[game.Mark]lipgloss.Style
}

// newConsole picks colours for w; writers that are not terminals get plain text.
func newConsole(s *session.Session, w io.Writer) *console {
	r := lipgloss.NewRenderer(w)
	tile := func(bg string) lipgloss.Style {
		return r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color(bg))
	}
	return &console{
		s: s,
		w: w,
		tiles: map[game.Mark]lipgloss.Style{
			game.MarkCorrect: tile("2"),
			game.MarkPresent: tile("3"),
			game.MarkAbsent:  tile("8"),
		},
	}
}

// paint renders letters coloured by their marks, space separated.
func (c *console) paint(letters []rune, marks []game.Mark) string {
	out := make([]string, len(letters))
	for i, l := range letters {
		out[i] = c.tiles[marks[i]].Render(string(l))
	}
	return strings.Join(out, " ")
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...)
}

func (c *console) onEvent(e session.Event) {
	switch p := e.Payload.(type) {
	case session.RoundStartedPayload:
		c.printf("\nNew word: %d letters, %d attempts.\nDefinition: %s\n", p.WordLength, p.MaxAttempts, p.Definition)
		if p.ImageURL != "" {
			c.printf("Image: %s\n", p.ImageURL)
		}
	case session.GuessRevealedPayload:
		c.printf("%d. %s\n   %s\n", p.Row+1, c.paint([]rune(p.Guess), p.Marks),
			strings.Join(lo.Map(p.Marks, func(m game.Mark, _ int) string { return game.MarkEmoji[m] }), ""))
	case session.GuessRejectedPayload:
		c.printf("! %s\n", p.Reason)
	case session.HintRevealedPayload:
		c.printf("Hint: letter %d is %s\n", p.Position+1, p.Letter)
	case session.RoundEndedPayload:
		if p.Won {
			c.printf("Solved %s in %d! Streak %d.\n", p.Word, p.Attempts, p.Streak)
		} else {
			c.printf("The word was %s.\n", p.Word)
		}
		if len(p.Related) > 0 {
			c.printf("Related: %s\n", strings.Join(p.Related, ", "))
		}
		c.printf("Type :new for another word.\n")
	case session.AchievementPayload:
		c.printf("%s Achievement unlocked: %s\n", p.Achievement.Icon, p.Achievement.Title)
	case session.NoticePayload:
		c.printf("* %s\n", p.Message)
	}
}

// runConsole plays until in is exhausted, :quit is read or ctx ends.
func runConsole(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	c := newConsole(s, out)
	unsubscribe := s.Subscribe(c.onEvent)
	defer unsubscribe()

	s.Init(ctx)
	c.printf("%s\n", consoleHelp)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			// Rejections and reveals are printed by onEvent.
			_ = s.Guess(ctx, line)
			continue
		}
		cmd, arg, _ := strings.Cut(line[1:], " ")
		if quit := c.command(ctx, strings.ToLower(cmd), strings.TrimSpace(arg)); quit {
			return nil
		}
	}
	return sc.Err()
}

func (c *console) command(ctx context.Context, cmd, arg string) (quit bool) {
	switch cmd {
	case "quit", "q", "exit":
		return true
	case "help", "h":
		c.printf("%s\n", consoleHelp)
	case "hint":
		// ErrNothingToHint already arrived as a notice.
		if _, err := c.s.UseHint(); errors.Is(err, game.ErrFinished) {
			c.printf("! The round is over, type :new\n")
		}
	case "new":
		c.s.NewRound()
	case "stats":
		c.printStats()
	case "share":
		c.printf("%s", c.s.ShareText())
	case "keys":
		c.printKeys()
	case "packs":
		names, err := words.Packs()
		if err != nil {
			c.printf("! %v\n", err)
			return false
		}
		c.printf("%s\n", strings.Join(names, ", "))
	case "pack":
		src, err := c.s.PackSource(arg)
		if err != nil {
			c.printf("! unknown pack %q\n", arg)
			return false
		}
		_ = c.s.SaveSettings(ctx, src)
	case "load":
		raw, err := os.ReadFile(arg)
		if err != nil {
			c.printf("! %v\n", err)
			return false
		}
		_ = c.s.SaveSettings(ctx, string(raw))
	case "data":
		if raw := c.s.RawDataset(); raw != "" {
			c.printf("%s\n", raw)
		} else {
			c.printf("Using the default word list.\n")
		}
	case "reset":
		c.s.Reset(ctx)
	default:
		c.printf("! unknown command :%s\n", cmd)
	}
	return false
}

func (c *console) printStats() {
	st := c.s.Stats()
	wins := lo.Sum(lo.Values(st.Distribution))
	rate := 0
	if st.Played > 0 {
		rate = wins * 100 / st.Played
	}
	c.printf("Played %d  Win %d%%  Streak %d\n", st.Played, rate, st.Streak)

	buckets := lo.Keys(st.Distribution)
	slices.Sort(buckets)
	top := max(1, lo.Max(lo.Values(st.Distribution)))
	for _, n := range buckets {
		bar := strings.Repeat("█", st.Distribution[n]*20/top)
		c.printf("%d | %s %d\n", n, bar, st.Distribution[n])
	}
	if len(st.Achievements) > 0 {
		c.printf("Achievements: %s\n", strings.Join(st.Achievements, ", "))
	}
}

func (c *console) printKeys() {
	states := c.s.Round().KeyStates()
	if len(states) == 0 {
		c.printf("No letters tried yet.\n")
		return
	}
	letters := lo.Keys(states)
	slices.Sort(letters)
	marks := lo.Map(letters, func(l rune, _ int) game.Mark { return states[l] })
	c.printf("%s\n", c.paint(letters, marks))
}
