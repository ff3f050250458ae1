package resolver

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

type match struct {
	path    string
	tier    int
	modTime time.Time
}

// better orders candidates: closer tier first, then newest, then shortest
// path so that equal candidates resolve the same way every time.
func (m match) better(o match) bool {
	if m.tier != o.tier {
		return m.tier < o.tier
	}
	if !m.modTime.Equal(o.modTime) {
		return m.modTime.After(o.modTime)
	}
	if len(m.path) != len(o.path) {
		return len(m.path) < len(o.path)
	}
	return m.path < o.path
}

// search walks roots for regular files whose stem contains query, ignoring
// case and extension.
func search(fsys afero.Fs, roots []string, query string, maxDepth int) (match, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimSuffix(q, strings.ToLower(filepath.Ext(q)))
	if q == "" {
		return match{}, false
	}

	var (
		best  match
		found bool
		seen  = make(map[string]struct{})
	)

	for _, root := range roots {
		root = filepath.Clean(root)
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}

		if ok, _ := afero.DirExists(fsys, root); !ok {
			continue
		}

		_ = afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if path == root {
					return nil
				}
				if strings.HasPrefix(info.Name(), ".") || depth(root, path) >= maxDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			tier, ok := closeness(stem(info.Name()), q)
			if !ok {
				return nil
			}
			m := match{path: path, tier: tier, modTime: info.ModTime()}
			if !found || m.better(best) {
				best, found = m, true
			}
			return nil
		})
	}

	return best, found
}

func stem(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
}

// closeness: 0 stem starts with the query, 1 query starts a word inside the
// stem, 2 plain substring.
func closeness(stem, q string) (int, bool) {
	// spoken queries have spaces where file names usually have separators
	variants := []string{q}
	if strings.Contains(q, " ") {
		for _, sep := range []string{"_", "-", "", "."} {
			variants = append(variants, strings.ReplaceAll(q, " ", sep))
		}
	}

	tier, ok := 3, false
	for _, v := range variants {
		idx := strings.Index(stem, v)
		if idx < 0 {
			continue
		}
		t := 2
		switch {
		case idx == 0:
			t = 0
		case isWordBreak(stem[idx-1]):
			t = 1
		}
		if t < tier {
			tier, ok = t, true
		}
	}
	return tier, ok
}

func isWordBreak(b byte) bool {
	return b == '_' || b == '-' || b == '.' || b == ' '
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
