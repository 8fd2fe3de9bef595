// Package resolve decides which entry under the served root a requested
// path refers to.
//
// Stages run in a fixed order and the first one that produces an answer
// wins:
//
//  1. exact: walk the path segment by segment, descending into directories
//     (case-insensitive); the remaining name is looked up exactly
//  2. prefix: first entry of the current directory starting with the name
//  3. path (recursive mode): score every file below the current directory
//     with the path-aware scorer, then narrow with the trailing segments
//  4. fuzzy: best single-level match above the acceptance threshold
//
// Every request ends as Resolved, Ambiguous or NotFound; filesystem errors
// only shrink the set of entries considered.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fuzzyhttp/internal/fsutil"
	"fuzzyhttp/internal/index"
	"fuzzyhttp/internal/score"
)

type Kind int

const (
	NotFound Kind = iota
	Resolved
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Stage records which matching step produced a candidate or outcome.
type Stage int

const (
	StageNone Stage = iota
	StageExact
	StagePrefix
	StagePath
	StageFilter
	StageFuzzy
)

func (s Stage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StagePrefix:
		return "prefix"
	case StagePath:
		return "path"
	case StageFilter:
		return "filter"
	case StageFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Query is a decoded request path. Name and Filters are filled in by
// Resolve once it knows how far the path descends into real directories.
type Query struct {
	Raw      string
	Segments []string
	Name     string
	Filters  []string
}

func ParseQuery(raw string) Query {
	return Query{Raw: raw, Segments: fsutil.Segments(raw)}
}

// String quotes the name and its filters for messages.
func (q Query) String() string {
	if len(q.Filters) == 0 {
		return fmt.Sprintf("'%s'", q.Name)
	}
	return fmt.Sprintf("'%s' with filters '%s'", q.Name, strings.Join(q.Filters, "/"))
}

type Candidate struct {
	Entry index.Entry
	Score float64
	Stage Stage
}

// Outcome is the result of resolving one Query.
type Outcome struct {
	Kind  Kind
	Stage Stage
	Query Query
	Dir   string // rel path of the deepest directory the query descended into

	// Resolved
	Target index.Entry
	Score  float64

	// Ambiguous, best first
	Candidates []Candidate

	// NotFound: entries of Dir, files first
	Listing []index.Entry
}

type Options struct {
	Root string
	// Global enables the recursive path-aware stage.
	Global        bool
	DirPreference string
	Weights       score.Weights
}

type Resolver struct {
	root   string
	global bool
	pref   string
	scorer *score.Scorer
}

func New(opts Options) *Resolver {
	return &Resolver{
		root:   opts.Root,
		global: opts.Global,
		pref:   opts.DirPreference,
		scorer: score.New(opts.Weights),
	}
}

// Resolve maps q onto the filesystem. An empty query resolves to the root
// directory itself.
func (r *Resolver) Resolve(ctx context.Context, q Query) Outcome {
	if len(q.Segments) == 0 {
		return Outcome{Kind: Resolved, Stage: StageExact, Query: q, Target: index.Root(r.root)}
	}

	dir := ""
	listing := index.List(r.root, dir)
	i := 0
	for ; i < len(q.Segments)-1; i++ {
		e, ok := listing.Lookup(q.Segments[i])
		if !ok || !e.IsDir() {
			break
		}
		dir = e.Rel
		listing = index.List(r.root, dir)
	}
	q.Name = q.Segments[i]
	q.Filters = append([]string(nil), q.Segments[i+1:]...)

	out := Outcome{Query: q, Dir: dir}

	// Trailing filters mean the caller wants the tree narrowed, not the
	// first name in this directory.
	if len(q.Filters) == 0 {
		if e, ok := listing.Lookup(q.Name); ok {
			return out.resolve(r.candidate(q.Name, e, StageExact))
		}
		if e, ok := prefixMatch(listing, q.Name); ok {
			return out.resolve(r.candidate(q.Name, e, StagePrefix))
		}
	}

	if r.global {
		if cands := r.pathCandidates(ctx, dir, q.Name); len(cands) > 0 {
			if len(q.Filters) > 0 {
				cands = r.filter(cands, q.Filters)
			}
			return out.decide(cands, listing)
		}
	}

	if c, ok := r.bestFuzzy(listing, q.Name, q.Filters); ok {
		return out.resolve(c)
	}
	return out.notFound(listing)
}

func (r *Resolver) candidate(name string, e index.Entry, stage Stage) Candidate {
	return Candidate{
		Entry: e,
		Score: r.scorer.Name(name, e.Name, e.Kind == index.File),
		Stage: stage,
	}
}

func prefixMatch(l *index.Listing, name string) (index.Entry, bool) {
	key := index.Fold(name)
	for _, e := range l.Entries {
		if strings.HasPrefix(index.Fold(e.Name), key) {
			return e, true
		}
	}
	return index.Entry{}, false
}

// pathCandidates collects files below dir whose stem equals the name, or
// which share a containment signal with it and clear the partial threshold.
func (r *Resolver) pathCandidates(ctx context.Context, dir, name string) []Candidate {
	w := r.scorer.Weights()
	q := index.Fold(name)
	var out []Candidate
	for e := range index.Walk(r.root, dir) {
		if ctx.Err() != nil {
			break
		}
		if e.Kind != index.File {
			continue
		}
		stem := index.Fold(score.Stem(e.Name))
		if stem != q && !related(stem, q) {
			continue
		}
		s := r.scorer.Path(name, e.Rel, r.pref)
		if stem != q && s < w.Partial {
			continue
		}
		out = append(out, Candidate{Entry: e, Score: s, Stage: StagePath})
	}
	return out
}

func related(stem, q string) bool {
	if stem == "" || q == "" {
		return false
	}
	return strings.HasPrefix(stem, q) || strings.HasPrefix(q, stem) ||
		strings.Contains(stem, q) || strings.Contains(q, stem)
}

// filter applies each segment in order as a substring constraint on the
// relative path, boosting survivors. It stops as soon as nothing survives.
func (r *Resolver) filter(cands []Candidate, filters []string) []Candidate {
	boost := r.scorer.Weights().FilterBoost
	for _, f := range filters {
		key := index.Fold(f)
		next := make([]Candidate, 0, len(cands))
		for _, c := range cands {
			if strings.Contains(index.Fold(c.Entry.Rel), key) {
				c.Score += boost
				c.Stage = StageFilter
				next = append(next, c)
			}
		}
		cands = next
		if len(cands) == 0 {
			break
		}
	}
	return cands
}

// bestFuzzy scores files, then directories, of a single listing. Ties keep
// the first candidate seen.
func (r *Resolver) bestFuzzy(l *index.Listing, name string, filters []string) (Candidate, bool) {
	threshold := r.scorer.Weights().Fuzzy
	var best Candidate
	found := false
	for _, group := range [][]index.Entry{l.Files(), l.Dirs()} {
		for _, e := range group {
			if !containsAll(e.Rel, filters) {
				continue
			}
			c := r.candidate(name, e, StageFuzzy)
			if c.Score > best.Score && c.Score >= threshold {
				best = c
				found = true
			}
		}
	}
	return best, found
}

func containsAll(rel string, filters []string) bool {
	key := index.Fold(rel)
	for _, f := range filters {
		if !strings.Contains(key, index.Fold(f)) {
			return false
		}
	}
	return true
}

func (o Outcome) resolve(c Candidate) Outcome {
	o.Kind = Resolved
	o.Stage = c.Stage
	o.Target = c.Entry
	o.Score = c.Score
	return o
}

func (o Outcome) decide(cands []Candidate, l *index.Listing) Outcome {
	switch len(cands) {
	case 0:
		o = o.notFound(l)
		o.Stage = StageFilter
		return o
	case 1:
		return o.resolve(cands[0])
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
	o.Kind = Ambiguous
	o.Stage = cands[0].Stage
	o.Candidates = cands
	return o
}

func (o Outcome) notFound(l *index.Listing) Outcome {
	o.Kind = NotFound
	o.Stage = StageNone
	o.Listing = l.Sorted()
	return o
}
