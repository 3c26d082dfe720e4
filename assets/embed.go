// assets/embed.go
//
// Embedded word data shipped with the binary:
//   - defaults.yaml: the built-in dataset used when nothing custom is saved.
//   - packs/*.yaml:  predefined study packs, keyed by file name without extension.
//
// Files are raw YAML; decoding into entries is the words package's job.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed defaults.yaml packs/*.yaml
var FS embed.FS

// Defaults returns the raw YAML of the built-in dataset.
func Defaults() ([]byte, error) {
	return FS.ReadFile("defaults.yaml")
}

// PackNames lists the embedded study packs in lexical order.
func PackNames() ([]string, error) {
	entries, err := fs.ReadDir(FS, "packs")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out, nil
}

// Pack returns the raw YAML of the named study pack.
func Pack(name string) ([]byte, error) {
	return FS.ReadFile(path.Join("packs", name+".yaml"))
}
