// Package score ranks candidate names and paths against a requested name.
package score

import (
	"path"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Weights holds every tunable used by the scorer. The zero value is not
// useful; start from DefaultWeights.
type Weights struct {
	// Name scoring.
	FileBonus   float64 `json:"fileBonus" toml:"fileBonus" yaml:"fileBonus"`
	ExtBonus    float64 `json:"extBonus" toml:"extBonus" yaml:"extBonus"`
	PrefixBonus float64 `json:"prefixBonus" toml:"prefixBonus" yaml:"prefixBonus"`
	ExactBonus  float64 `json:"exactBonus" toml:"exactBonus" yaml:"exactBonus"`

	// Path scoring.
	PathSimilarity float64 `json:"pathSimilarity" toml:"pathSimilarity" yaml:"pathSimilarity"`
	StemExact      float64 `json:"stemExact" toml:"stemExact" yaml:"stemExact"`
	PathExt        float64 `json:"pathExt" toml:"pathExt" yaml:"pathExt"`
	DirPreference  float64 `json:"dirPreference" toml:"dirPreference" yaml:"dirPreference"`
	DirPenalty     float64 `json:"dirPenalty" toml:"dirPenalty" yaml:"dirPenalty"`
	ArchMatch      float64 `json:"archMatch" toml:"archMatch" yaml:"archMatch"`
	ArchMismatch   float64 `json:"archMismatch" toml:"archMismatch" yaml:"archMismatch"`
	Default64      float64 `json:"default64" toml:"default64" yaml:"default64"`
	Default32      float64 `json:"default32" toml:"default32" yaml:"default32"`
	KeywordScale   float64 `json:"keywordScale" toml:"keywordScale" yaml:"keywordScale"`
	WordHit        float64 `json:"wordHit" toml:"wordHit" yaml:"wordHit"`
	CharOverlap    float64 `json:"charOverlap" toml:"charOverlap" yaml:"charOverlap"`
	FilterBoost    float64 `json:"filterBoost" toml:"filterBoost" yaml:"filterBoost"`

	// Acceptance thresholds.
	Fuzzy   float64 `json:"fuzzy" toml:"fuzzy" yaml:"fuzzy"`
	Partial float64 `json:"partial" toml:"partial" yaml:"partial"`
}

// DefaultWeights returns the empirically chosen defaults.
func DefaultWeights() Weights {
	return Weights{
		FileBonus:   0.3,
		ExtBonus:    0.2,
		PrefixBonus: 0.1,
		ExactBonus:  0.5,

		PathSimilarity: 0.3,
		StemExact:      1.0,
		PathExt:        0.3,
		DirPreference:  1.5,
		DirPenalty:     0.5,
		ArchMatch:      2.0,
		ArchMismatch:   1.0,
		Default64:      0.5,
		Default32:      0.2,
		KeywordScale:   0.2,
		WordHit:        0.1,
		CharOverlap:    0.1,
		FilterBoost:    1.0,

		Fuzzy:   0.5,
		Partial: 0.3,
	}
}

var (
	arch64 = []string{"64", "x64", "amd64"}
	arch32 = []string{"32", "x86", "win32"}

	// Later keywords weigh more.
	priorityKeywords = []string{"64", "x64", "amd64", "32", "x86", "win32", "win64"}
)

type Scorer struct {
	w Weights
}

func New(w Weights) *Scorer {
	return &Scorer{w: w}
}

func (s *Scorer) Weights() Weights {
	return s.w
}

// Name scores a single directory entry name against query.
func (s *Scorer) Name(query, candidate string, isFile bool) float64 {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)

	score := Ratio(q, c)
	if isFile {
		score += s.w.FileBonus
	}
	if sameExt(q, c) {
		score += s.w.ExtBonus
	}
	if strings.HasPrefix(c, q) {
		score += s.w.PrefixBonus
	}
	if q == c {
		score += s.w.ExactBonus
	}
	return score
}

// Path scores a slash-separated path relative to the served root. An empty
// dirPreference disables the directory preference adjustment.
func (s *Scorer) Path(query, relPath, dirPreference string) float64 {
	q := strings.ToLower(query)
	p := strings.ToLower(relPath)

	score := Ratio(q, p) * s.w.PathSimilarity

	if Stem(path.Base(p)) == q {
		score += s.w.StemExact
	}
	if sameExt(q, p) {
		score += s.w.PathExt
	}

	if dirPreference != "" {
		if strings.Contains(p, strings.ToLower(dirPreference)) {
			score += s.w.DirPreference
		} else {
			score -= s.w.DirPenalty
		}
	}

	score += s.arch(q, p)

	for i, kw := range priorityKeywords {
		if strings.Contains(p, kw) {
			score += float64(i+1) / float64(len(priorityKeywords)) * s.w.KeywordScale
		}
	}

	for _, word := range strings.Fields(q) {
		if strings.Contains(p, word) {
			score += s.w.WordHit
		}
	}

	score += charOverlap(q, p) * s.w.CharOverlap
	return score
}

// arch applies the 64/32-bit keyword families. Without a family token in the
// query, 64-bit paths are slightly preferred.
func (s *Scorer) arch(q, p string) float64 {
	q64, q32 := containsAny(q, arch64), containsAny(q, arch32)
	p64, p32 := containsAny(p, arch64), containsAny(p, arch32)

	var score float64
	if q64 {
		if p64 {
			score += s.w.ArchMatch
		} else if p32 {
			score -= s.w.ArchMismatch
		}
	}
	if q32 {
		if p32 {
			score += s.w.ArchMatch
		} else if p64 {
			score -= s.w.ArchMismatch
		}
	}
	if !q64 && !q32 {
		if p64 {
			score += s.w.Default64
		} else if p32 {
			score += s.w.Default32
		}
	}
	return score
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0,1],
// computed per character.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// Stem strips the final extension from name. Leading dots do not start an
// extension, so ".bashrc" is its own stem.
func Stem(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	i := strings.LastIndex(trimmed, ".")
	if i < 0 {
		return name
	}
	return name[:len(name)-len(trimmed)+i]
}

// sameExt reports whether both strings contain a dot and agree on the text
// after their final dot.
func sameExt(a, b string) bool {
	i := strings.LastIndex(a, ".")
	j := strings.LastIndex(b, ".")
	if i < 0 || j < 0 {
		return false
	}
	return a[i+1:] == b[j+1:]
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func charOverlap(q, p string) float64 {
	qs := charSet(q, ".")
	if len(qs) == 0 {
		return 0
	}
	ps := charSet(p, "./\\")
	n := 0
	for r := range qs {
		if _, ok := ps[r]; ok {
			n++
		}
	}
	return float64(n) / float64(len(qs))
}

func charSet(s, drop string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		if strings.ContainsRune(drop, r) {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}
