// Package resolver decides whether a spoken "open ..." target means a local
// file or a website.
//
// Resolution is a short pipeline of stages. Each stage either decides (a file
// path, a URL, or a hard not-found) or passes. An explicit file or folder
// signal never degrades into a URL; only the fully ambiguous last stage falls
// back to a bare ".com" domain.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("no matching file")

type Kind int

const (
	KindFile Kind = iota + 1
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

type Target struct {
	Kind Kind
	Path string
	URL  string
	// Query is the phrase after the open verb and any qualifier.
	Query string
}

func (t Target) String() string {
	if t.Kind == KindURL {
		return t.URL
	}
	return t.Path
}

type Options struct {
	Fs       afero.Fs
	Home     string
	WorkDir  string
	MaxDepth int
	Sites    map[string]string
}

type Resolver struct {
	fs       afero.Fs
	home     string
	workDir  string
	maxDepth int
	sites    map[string]string
}

func New(opt Options) *Resolver {
	if opt.Fs == nil {
		opt.Fs = afero.NewOsFs()
	}
	if opt.Home == "" {
		opt.Home, _ = os.UserHomeDir()
	}
	if opt.WorkDir == "" {
		opt.WorkDir, _ = os.Getwd()
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = 6
	}
	if opt.Sites == nil {
		opt.Sites = KnownSites
	}

	return &Resolver{
		fs:       opt.Fs,
		home:     opt.Home,
		workDir:  opt.WorkDir,
		maxDepth: opt.MaxDepth,
		sites:    opt.Sites,
	}
}

type outcome int

const (
	undecided outcome = iota
	decided
)

type stage func(phrase string) (Target, outcome, error)

// Resolve maps phrase to a file path or a URL. A miss after an explicit file
// or folder signal returns ErrNotFound.
func (r *Resolver) Resolve(phrase string) (Target, error) {
	phrase = trimVerb(phrase)
	if phrase == "" {
		return Target{}, fmt.Errorf("empty target: %w", ErrNotFound)
	}

	stages := []stage{
		r.explicitQualifier,
		r.existingPath,
		r.pathLike,
		r.knownFolder,
		r.webIndicator,
		r.knownSite,
		r.ambiguous,
	}

	for _, st := range stages {
		t, out, err := st(phrase)
		if err != nil {
			return Target{}, err
		}
		if out == decided {
			return t, nil
		}
	}

	// ambiguous always decides
	return Target{}, fmt.Errorf("unresolved %q: %w", phrase, ErrNotFound)
}

func (r *Resolver) explicitQualifier(phrase string) (Target, outcome, error) {
	lower := strings.ToLower(phrase)

	for _, q := range []string{"the file", "file"} {
		if rest, ok := cutWord(lower, phrase, q); ok {
			t, err := r.findFile(rest, r.commonRoots())
			return t, decided, err
		}
	}

	for _, q := range []string{"the website", "website"} {
		if rest, ok := cutWord(lower, phrase, q); ok {
			if rest == "" {
				return Target{}, decided, fmt.Errorf("empty website name: %w", ErrNotFound)
			}
			if u, ok := r.site(rest); ok {
				return urlTarget(u, rest), decided, nil
			}
			return urlTarget(normalizeURL(rest), rest), decided, nil
		}
	}

	return Target{}, undecided, nil
}

func (r *Resolver) existingPath(phrase string) (Target, outcome, error) {
	p := r.expandHome(phrase)
	ok, err := afero.Exists(r.fs, p)
	if err != nil || !ok {
		return Target{}, undecided, nil
	}
	return Target{Kind: KindFile, Path: p, Query: phrase}, decided, nil
}

func (r *Resolver) pathLike(phrase string) (Target, outcome, error) {
	if !strings.ContainsAny(phrase, `/\`) {
		return Target{}, undecided, nil
	}

	norm := strings.ReplaceAll(phrase, `\`, "/")
	// a scheme or a domain before the first slash is a URL, not a path
	if first, _, _ := strings.Cut(norm, "/"); strings.Contains(norm, "://") || looksLikeURL(first) {
		return Target{}, undecided, nil
	}
	norm = strings.TrimRight(norm, "/")
	dir, base := filepath.Split(filepath.FromSlash(norm))
	dir = strings.TrimRight(dir, string(filepath.Separator))

	roots := r.commonRoots()
	if dir != "" {
		if d, ok := r.folder(filepath.Base(dir)); ok {
			roots = []string{d}
		} else if ok, _ := afero.DirExists(r.fs, r.expandHome(dir)); ok {
			roots = []string{r.expandHome(dir)}
		}
	}

	t, err := r.findFile(strings.TrimSpace(base), roots)
	return t, decided, err
}

func (r *Resolver) knownFolder(phrase string) (Target, outcome, error) {
	lower := strings.ToLower(phrase)
	for _, name := range folderNames {
		rest, ok := cutWord(lower, phrase, strings.ToLower(name))
		if !ok {
			continue
		}
		dir := filepath.Join(r.home, name)
		if after, ok := cutWord(strings.ToLower(rest), rest, "folder"); ok {
			rest = after
		}
		if rest == "" {
			if ok, _ := afero.DirExists(r.fs, dir); ok {
				return Target{Kind: KindFile, Path: dir, Query: name}, decided, nil
			}
			return Target{}, decided, fmt.Errorf("folder %s: %w", name, ErrNotFound)
		}
		t, err := r.findFile(rest, []string{dir})
		return t, decided, err
	}
	return Target{}, undecided, nil
}

func (r *Resolver) webIndicator(phrase string) (Target, outcome, error) {
	if !looksLikeURL(phrase) {
		return Target{}, undecided, nil
	}
	return urlTarget(normalizeURL(phrase), phrase), decided, nil
}

func (r *Resolver) knownSite(phrase string) (Target, outcome, error) {
	if u, ok := r.site(phrase); ok {
		return urlTarget(u, phrase), decided, nil
	}
	return Target{}, undecided, nil
}

func (r *Resolver) ambiguous(phrase string) (Target, outcome, error) {
	t, err := r.findFile(phrase, r.commonRoots())
	if err == nil {
		return t, decided, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Target{}, decided, err
	}
	return urlTarget(bareDomain(phrase), phrase), decided, nil
}

func (r *Resolver) findFile(query string, roots []string) (Target, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Target{}, fmt.Errorf("empty file name: %w", ErrNotFound)
	}

	m, ok := search(r.fs, roots, query, r.maxDepth)
	if !ok {
		return Target{}, fmt.Errorf("file %q: %w", query, ErrNotFound)
	}
	return Target{Kind: KindFile, Path: m.path, Query: query}, nil
}

func (r *Resolver) commonRoots() []string {
	roots := make([]string, 0, 4)
	for _, name := range []string{"Desktop", "Documents", "Downloads"} {
		roots = append(roots, filepath.Join(r.home, name))
	}
	if r.workDir != "" {
		roots = append(roots, r.workDir)
	}
	return roots
}

func (r *Resolver) folder(name string) (string, bool) {
	for _, f := range folderNames {
		if strings.EqualFold(f, name) {
			return filepath.Join(r.home, f), true
		}
	}
	return "", false
}

func (r *Resolver) site(phrase string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(phrase), ""))
	u, ok := r.sites[key]
	return u, ok
}

func (r *Resolver) expandHome(p string) string {
	if p == "~" {
		return r.home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(r.home, p[2:])
	}
	return p
}

var folderNames = []string{"Desktop", "Documents", "Downloads", "Pictures", "Music", "Videos"}

func trimVerb(phrase string) string {
	phrase = strings.TrimSpace(phrase)
	lower := strings.ToLower(phrase)
	for _, v := range []string{"open", "launch"} {
		if rest, ok := cutWord(lower, phrase, v); ok {
			return rest
		}
	}
	return phrase
}

// cutWord strips word from the front of orig when lower starts with it as a
// whole word. Case of the remainder is kept.
func cutWord(lower, orig, word string) (string, bool) {
	if lower == word {
		return "", true
	}
	if strings.HasPrefix(lower, word+" ") {
		return strings.TrimSpace(orig[len(word):]), true
	}
	return "", false
}

func urlTarget(u, query string) Target {
	return Target{Kind: KindURL, URL: u, Query: query}
}
