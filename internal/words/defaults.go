// internal/words/defaults.go
//
// Built-in datasets decoded from the embedded assets.
//
// The default dataset is decoded once (sync.Once) and handed out as copies so
// callers can never mutate the shared list. Study packs are decoded on demand.
package words

import (
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/studywordle/assets"
)

var (
	defaultsOnce sync.Once
	defaults     []Entry
	defaultsErr  error
)

// Defaults returns the built-in dataset. It is never empty on success.
func Defaults() ([]Entry, error) {
	defaultsOnce.Do(func() {
		raw, err := assets.Defaults()
		if err != nil {
			defaultsErr = err
			return
		}
		defaults, defaultsErr = decodeYAML(raw)
	})
	if defaultsErr != nil {
		return nil, defaultsErr
	}
	return slices.Clone(defaults), nil
}

// MustDefaults is Defaults for callers that cannot proceed without data.
func MustDefaults() []Entry {
	d, err := Defaults()
	if err != nil {
		panic(fmt.Sprintf("words: embedded defaults: %v", err))
	}
	return d
}

// Packs lists the names of the predefined study packs.
func Packs() ([]string, error) {
	return assets.PackNames()
}

// Pack returns the entries of one study pack.
func Pack(name string) ([]Entry, error) {
	raw, err := assets.Pack(name)
	if err != nil {
		return nil, fmt.Errorf("pack %q: %w", name, err)
	}
	return decodeYAML(raw)
}

func decodeYAML(raw []byte) ([]Entry, error) {
	var recs []rawEntry
	if err := yaml.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	out, err := fromRaw(recs)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrFormat)
	}
	return out, nil
}
