// Package search implements the query side of the schema search engine: a
// precedence scorer, a bounded edit-distance fallback, and the cancellable
// two-phase streaming session that ties them together.
package search

import (
	"strings"

	"github.com/dtg01100/dbutils-sub000/pkg/index"
)

// MatchKind labels which scoring rule produced a match.
type MatchKind int

const (
	KindFuzzy MatchKind = iota
	KindDescriptionMatch
	KindWordPrefix
	KindContains
	KindExact
)

func (k MatchKind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindContains:
		return "contains"
	case KindWordPrefix:
		return "word-prefix"
	case KindDescriptionMatch:
		return "description"
	default:
		return "fuzzy"
	}
}

// Weights holds the score assigned by each rule. The remark weights differ
// between tables and columns in the original tuning (column descriptions
// are rarer, so a hit there is more informative); both are plain config
// values, not derived constants.
type Weights struct {
	Exact         float64
	Contains      float64
	WordPrefix    float64
	TableRemarks  float64
	ColumnRemarks float64
	FuzzyCeiling  float64
	FuzzyFloor    float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Exact:         2.0,
		Contains:      1.0,
		WordPrefix:    0.6,
		TableRemarks:  0.5,
		ColumnRemarks: 0.8,
		FuzzyCeiling:  0.6,
		FuzzyFloor:    0.05,
	}
}

// Scorer ranks one candidate entry against one query using a strict
// precedence: exact > contains > word prefix > description match > fuzzy.
// The first rule that fires wins; signals are never summed.
type Scorer struct {
	w Weights
}

// NewScorer returns a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Score evaluates entry e against the lowercased full query text and its
// tokens. Returns ok=false when no rule, including the fuzzy fallback,
// accepts the entry.
func (s *Scorer) Score(e *index.Entry, mode index.Mode, query string, queryTokens []string) (float64, MatchKind, bool) {
	name := strings.ToLower(e.Name)

	if name == query {
		return s.w.Exact, KindExact, true
	}
	// A query that equals a complete word of the name ranks as a word match,
	// not a contains match: "user" against USER_PROFILES is a word hit, while
	// against USERS it is an ordinary substring.
	words := splitWords(name)
	if query != "" && wordEqual(words, query) {
		return s.w.WordPrefix, KindWordPrefix, true
	}
	if strings.Contains(name, query) {
		return s.w.Contains, KindContains, true
	}
	if wordPrefix(words, query) {
		return s.w.WordPrefix, KindWordPrefix, true
	}
	if e.Remarks != "" && strings.Contains(strings.ToLower(e.Remarks), query) {
		if mode == index.ModeColumns {
			return s.w.ColumnRemarks, KindDescriptionMatch, true
		}
		return s.w.TableRemarks, KindDescriptionMatch, true
	}
	return s.fuzzy(e, queryTokens)
}

// fuzzy finds the best bounded edit-distance match between any query token
// and any indexed token of the entry. Scores land strictly below the
// structural rules and never reach zero.
func (s *Scorer) fuzzy(e *index.Entry, queryTokens []string) (float64, MatchKind, bool) {
	best := 0.0
	found := false
	for _, qt := range queryTokens {
		for _, tok := range e.Tokens {
			bound := Tolerance(qt, tok)
			d, ok := Distance(qt, tok, bound)
			if !ok {
				continue
			}
			longer := len(qt)
			if len(tok) > longer {
				longer = len(tok)
			}
			// A zero distance means the query equals a secondary token
			// (schema, typename, remarks). Score it like a one-edit hit so
			// fuzzy stays strictly below the structural scores.
			if d == 0 {
				d = 1
			}
			score := s.w.FuzzyFloor
			if longer > 0 {
				score = s.w.FuzzyCeiling * (1.0 - float64(d)/float64(longer))
			}
			if score < s.w.FuzzyFloor {
				score = s.w.FuzzyFloor
			}
			if score > best {
				best = score
			}
			found = true
		}
	}
	if !found {
		return 0, KindFuzzy, false
	}
	return best, KindFuzzy, true
}

// splitWords breaks a lowercased name into its underscore and space
// delimited words.
func splitWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == ' '
	})
}

func wordEqual(words []string, query string) bool {
	for _, w := range words {
		if w == query {
			return true
		}
	}
	return false
}

// wordPrefix reports whether any word of the name starts with the query
// text.
func wordPrefix(words []string, query string) bool {
	if query == "" {
		return false
	}
	for _, w := range words {
		if strings.HasPrefix(w, query) {
			return true
		}
	}
	return false
}
