// internal/words/parse.go
//
// Dataset loading from user-supplied text.
//
// Two formats are accepted:
//   - Structured: a JSON array of objects. "word" plus "def" or "definition"
//     are required; "related"/"relatedWords", "image"/"img"/"imageUrl" and
//     "audio"/"audioUrl" are optional.
//   - Line format: WORD,Definition[,ImageURL] per line. No quoting; lines with
//     fewer than two fields are skipped.
//
// Input starting with '[' is treated as structured, everything else as lines.
package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrFormat is returned when input cannot be turned into a usable dataset.
var ErrFormat = errors.New("invalid dataset format")

// rawEntry tolerates the field-name variants seen in hand-written datasets.
type rawEntry struct {
	Word         string   `json:"word" yaml:"word"`
	Def          string   `json:"def" yaml:"def"`
	Definition   string   `json:"definition" yaml:"definition"`
	Related      []string `json:"related" yaml:"related"`
	RelatedWords []string `json:"relatedWords" yaml:"relatedWords"`
	Image        string   `json:"image" yaml:"image"`
	Img          string   `json:"img" yaml:"img"`
	ImageURL     string   `json:"imageUrl" yaml:"imageUrl"`
	Audio        string   `json:"audio" yaml:"audio"`
	AudioURL     string   `json:"audioUrl" yaml:"audioUrl"`
}

// entry converts a raw record, reporting false when word or definition is missing.
func (r rawEntry) entry() (Entry, bool) {
	e := Entry{
		Word:       Normalize(r.Word),
		Definition: strings.TrimSpace(firstNonEmpty(r.Def, r.Definition)),
		ImageURL:   strings.TrimSpace(firstNonEmpty(r.Image, r.Img, r.ImageURL)),
		AudioURL:   strings.TrimSpace(firstNonEmpty(r.Audio, r.AudioURL)),
	}
	related := r.Related
	if len(related) == 0 {
		related = r.RelatedWords
	}
	for _, w := range related {
		if n := Normalize(w); n != "" {
			e.Related = append(e.Related, n)
		}
	}
	return e, e.Word != "" && e.Definition != ""
}

// Parse turns raw settings text into a dataset.
// Every failure wraps ErrFormat.
func Parse(raw string) ([]Entry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}

	var (
		out []Entry
		err error
	)
	if strings.HasPrefix(raw, "[") {
		out, err = parseStructured(raw)
	} else {
		out = parseLines(raw)
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrFormat)
	}
	return out, nil
}

// parseStructured decodes a JSON array. The first record must be complete;
// later incomplete records are skipped.
func parseStructured(raw string) ([]Entry, error) {
	var recs []rawEntry
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return fromRaw(recs)
}

func fromRaw(recs []rawEntry) ([]Entry, error) {
	out := make([]Entry, 0, len(recs))
	for i, rec := range recs {
		e, ok := rec.entry()
		if !ok {
			if i == 0 {
				return nil, fmt.Errorf("%w: first entry needs a word and a definition", ErrFormat)
			}
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// parseLines reads the WORD,Definition[,ImageURL] format.
func parseLines(raw string) []Entry {
	var out []Entry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		e := Entry{
			Word:       Normalize(parts[0]),
			Definition: strings.TrimSpace(parts[1]),
		}
		if len(parts) > 2 {
			e.ImageURL = strings.TrimSpace(parts[2])
		}
		if e.Word == "" || e.Definition == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Validate checks the structure of a previously persisted dataset: it must be
// non-empty and every entry needs a word and a definition.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return errors.New("dataset is empty")
	}
	for i, e := range entries {
		if Normalize(e.Word) == "" || strings.TrimSpace(e.Definition) == "" {
			return fmt.Errorf("entry %d: missing word or definition", i)
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
