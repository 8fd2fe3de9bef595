// Package index lists directory entries under the served root.
//
// Nothing is cached: every call reads the live filesystem, and unreadable
// directories simply produce no entries.
package index

import (
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"fuzzyhttp/internal/fsutil"
)

type Kind uint8

const (
	File Kind = iota + 1
	Dir
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Dir:
		return "directory"
	default:
		return "unknown"
	}
}

// Entry is a filesystem node observed under the root.
type Entry struct {
	Rel  string // slash-separated, "" for the root itself
	Name string
	Kind Kind
	Abs  string
}

func (e Entry) IsDir() bool { return e.Kind == Dir }

// URLPath is the entry's path as served, always with a leading slash.
func (e Entry) URLPath() string { return "/" + e.Rel }

// Root returns the entry for the served root directory.
func Root(rootAbs string) Entry {
	return Entry{Kind: Dir, Abs: rootAbs}
}

// Fold returns the key used for case-insensitive name comparison.
func Fold(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// Listing is a single directory level in directory-read order.
type Listing struct {
	Dir     string // rel path of the listed directory
	Entries []Entry

	exact map[string]int
	fold  map[string]int
}

// List reads one directory level. A missing or unreadable directory yields
// an empty listing.
func List(rootAbs, rel string) *Listing {
	rel = fsutil.CleanRelPath(rel)
	l := &Listing{Dir: rel, exact: map[string]int{}, fold: map[string]int{}}

	abs, err := fsutil.JoinWithinRoot(rootAbs, rel)
	if err != nil {
		return l
	}
	ents, err := os.ReadDir(abs)
	if err != nil {
		return l
	}
	l.Entries = make([]Entry, 0, len(ents))
	for _, d := range ents {
		e, ok := makeEntry(abs, rel, d)
		if !ok {
			continue
		}
		l.exact[e.Name] = len(l.Entries)
		key := Fold(e.Name)
		if _, dup := l.fold[key]; !dup {
			l.fold[key] = len(l.Entries)
		}
		l.Entries = append(l.Entries, e)
	}
	return l
}

// Lookup finds an entry by name. A byte-for-byte match wins; otherwise the
// first entry in listing order whose folded name matches is returned.
func (l *Listing) Lookup(name string) (Entry, bool) {
	if i, ok := l.exact[name]; ok {
		return l.Entries[i], true
	}
	i, ok := l.fold[Fold(name)]
	if !ok {
		return Entry{}, false
	}
	return l.Entries[i], true
}

func (l *Listing) Files() []Entry { return l.filter(File) }

func (l *Listing) Dirs() []Entry { return l.filter(Dir) }

func (l *Listing) filter(k Kind) []Entry {
	out := make([]Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Sorted returns files before directories, each group sorted by name.
func (l *Listing) Sorted() []Entry {
	out := make([]Entry, len(l.Entries))
	copy(out, l.Entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == File
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Walk yields every entry below rel, breadth first. Hidden directories are
// scanned after the others and symlinked directories are never entered.
// Stopping the iteration stops the walk.
func Walk(rootAbs, rel string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		rel = fsutil.CleanRelPath(rel)
		baseAbs, err := fsutil.JoinWithinRoot(rootAbs, rel)
		if err != nil {
			return
		}

		type node struct {
			abs string
			rel string
		}
		normalQ := []node{{abs: baseAbs, rel: rel}}
		var hiddenQ []node

		for len(normalQ) > 0 || len(hiddenQ) > 0 {
			var n node
			if len(normalQ) > 0 {
				n, normalQ = normalQ[0], normalQ[1:]
			} else {
				n, hiddenQ = hiddenQ[0], hiddenQ[1:]
			}

			ents, err := os.ReadDir(n.abs)
			if err != nil {
				continue
			}
			for _, d := range ents {
				e, ok := makeEntry(n.abs, n.rel, d)
				if !ok {
					continue
				}
				if !yield(e) {
					return
				}
				if d.IsDir() && d.Type()&os.ModeSymlink == 0 {
					next := node{abs: e.Abs, rel: e.Rel}
					if isHidden(e.Name) {
						hiddenQ = append(hiddenQ, next)
					} else {
						normalQ = append(normalQ, next)
					}
				}
			}
		}
	}
}

// makeEntry classifies d. Symlinks take the kind of their target; dangling
// links are dropped.
func makeEntry(dirAbs, dirRel string, d os.DirEntry) (Entry, bool) {
	name := d.Name()
	e := Entry{
		Rel:  joinRel(dirRel, name),
		Name: name,
		Kind: File,
		Abs:  filepath.Join(dirAbs, name),
	}
	isDir := d.IsDir()
	if d.Type()&os.ModeSymlink != 0 {
		st, err := os.Stat(e.Abs)
		if err != nil {
			return Entry{}, false
		}
		isDir = st.IsDir()
	}
	if isDir {
		e.Kind = Dir
	}
	return e, true
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
