package fsutil

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path would resolve outside the root.
var ErrPathEscape = errors.New("path escape")

// CleanRelPath takes a user path like "", ".", "/a/b", "a//b", and returns a
// safe, slash-based, no-leading-slash relative path ("" means root).
// Whitespace is part of a name and is kept.
func CleanRelPath(p string) string {
	if p == "" || p == "." || p == "/" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p) // force absolute for stable cleaning
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Segments splits a request path into its segments without interpreting
// them: empty and "." segments are dropped, ".." is kept as a literal name.
func Segments(p string) []string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}

// JoinWithinRoot returns an absolute filesystem path under root for a given rel
// path. It rejects escapes (..).
func JoinWithinRoot(rootAbs string, rel string) (string, error) {
	rel = CleanRelPath(rel)
	if rel == "" {
		return rootAbs, nil
	}
	if strings.Contains(rel, "\x00") {
		return "", errors.New("invalid path")
	}
	abs := filepath.Join(rootAbs, filepath.FromSlash(rel))
	absClean := filepath.Clean(abs)
	rootClean := filepath.Clean(rootAbs)
	if absClean != rootClean && !strings.HasPrefix(absClean, rootClean+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return absClean, nil
}

// JoinSegments joins literal segments under root. Unlike JoinWithinRoot it
// refuses any ".." segment instead of cleaning it away.
func JoinSegments(rootAbs string, segs []string) (string, error) {
	for _, s := range segs {
		if s == ".." {
			return "", ErrPathEscape
		}
	}
	return JoinWithinRoot(rootAbs, strings.Join(segs, "/"))
}
