// internal/game/share.go
//
// Spoiler-free text rendering of a round for sharing.

package game

import (
	"fmt"
	"strings"
)

// MarkEmoji is the tile drawn for each mark.
var MarkEmoji = map[Mark]string{
	MarkCorrect: "🟩",
	MarkPresent: "🟨",
	MarkAbsent:  "⬛",
}

// ShareText renders the round as a spoiler-free emoji grid, e.g.
//
//	StudyWordle 🧪 3/6
//
//	⬛🟨⬛⬛
//	🟩⬛🟨⬛
//	🟩🟩🟩🟩
//
// Lost or unfinished rounds show X instead of the attempt count.
func (r *Round) ShareText() string {
	score := "X"
	if r.Status == StatusWon {
		score = fmt.Sprint(len(r.Guesses))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "StudyWordle 🧪 %s/%d\n\n", score, r.MaxAttempts)
	for _, row := range r.Marks {
		for _, m := range row {
			b.WriteString(MarkEmoji[m])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
