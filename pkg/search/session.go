package search

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dtg01100/dbutils-sub000/pkg/index"
)

// Match is one scored result. The entry reference stays valid as long as
// the index the session was started against is alive.
type Match struct {
	Entry *index.Entry
	Score float64
	Kind  MatchKind
}

// BatchFunc receives result batches in the order produced. final is true
// exactly once, on natural completion; a cancelled session simply stops
// calling without a final batch. The callback runs on the session
// goroutine and must not call Searcher.Search synchronously, since a new
// submission drains the old session before returning.
type BatchFunc func(matches []Match, final bool)

// Options are the fixed tunables of the streaming pipeline.
type Options struct {
	// TrieCap caps the immediate trie-phase batch. Ignored for the empty
	// query, which returns the full record set unfiltered.
	TrieCap int
	// ChunkSize is how many records the fuzzy phase inspects between
	// suspension points. Batches are sized in records inspected, not in
	// matches, so an emitted batch may be empty.
	ChunkSize int
	Weights   Weights
}

// DefaultOptions returns the stock pipeline tunables.
func DefaultOptions() Options {
	return Options{
		TrieCap:   200,
		ChunkSize: 50,
		Weights:   DefaultWeights(),
	}
}

// State is the lifecycle position of a session.
type State int32

const (
	StateSubmitted State = iota
	StateTriePhase
	StateFuzzyPhase
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StateTriePhase:
		return "trie"
	case StateFuzzyPhase:
		return "fuzzy"
	case StateCompleted:
		return "completed"
	default:
		return "cancelled"
	}
}

// Searcher stamps generations and hosts sessions. Submitting a new query
// supersedes the in-flight one: the old session is cancelled and fully
// drained before the new session emits its first batch, so stale and fresh
// results never interleave at the consumer.
type Searcher struct {
	handle *index.Handle
	opts   Options
	scorer *Scorer
	gen    atomic.Uint64

	mu     sync.Mutex
	active *Session
}

// NewSearcher creates a searcher over the shared index handle. Zero or
// negative option fields fall back to the defaults.
func NewSearcher(handle *index.Handle, opts Options) *Searcher {
	def := DefaultOptions()
	if opts.TrieCap <= 0 {
		opts.TrieCap = def.TrieCap
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = def.Weights
	}
	return &Searcher{
		handle: handle,
		opts:   opts,
		scorer: NewScorer(opts.Weights),
	}
}

// Search submits a query and starts streaming batches to fn from a
// dedicated goroutine. Any in-flight session is cancelled and drained
// first. Searching before an index was built is a programming error and
// panics.
func (s *Searcher) Search(query string, mode index.Mode, fn BatchFunc) *Session {
	ix := s.handle.Load()
	if ix == nil {
		panic("search: no index built, call index.Build before searching")
	}

	sess := newSession(s, ix, query, mode, s.gen.Add(1), fn)

	s.mu.Lock()
	prev := s.active
	s.active = sess
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
		<-prev.Done()
	}

	log.Debugf("search gen=%d mode=%s query=%q", sess.gen, mode, query)
	go sess.run()
	return sess
}

// Session is the lifetime of one submitted query. Its state machine is
// driven by Step, which performs exactly one unit of work per call: the
// whole trie phase is one step, each fuzzy chunk is one step. Step is
// scheduler-agnostic; Searcher hosts it on a goroutine, but a test or an
// event loop can drive it directly.
type Session struct {
	searcher *Searcher
	ix       *index.Index
	mode     index.Mode
	fn       BatchFunc

	raw    string
	query  string // trimmed, lowercased full text
	tokens []string
	gen    uint64

	state     atomic.Int32
	cancelled atomic.Bool
	done      chan struct{}

	// fuzzy-phase cursor, touched only by the Step driver
	seen      map[string]struct{}
	remaining []string
	pos       int
}

func newSession(s *Searcher, ix *index.Index, query string, mode index.Mode, gen uint64, fn BatchFunc) *Session {
	lower := strings.ToLower(strings.TrimSpace(query))
	return &Session{
		searcher: s,
		ix:       ix,
		mode:     mode,
		fn:       fn,
		raw:      query,
		query:    lower,
		tokens:   index.Tokenize(lower),
		gen:      gen,
		done:     make(chan struct{}),
	}
}

// Generation returns the supersession stamp assigned at submission.
func (s *Session) Generation() uint64 {
	return s.gen
}

// State returns the current lifecycle position.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Cancel requests the session to stop. Level-triggered: the session checks
// at every suspension point and exits without emitting further batches.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) run() {
	for s.Step() {
	}
}

// Step advances the state machine by one unit of work and reports whether
// more work remains.
func (s *Session) Step() bool {
	st := s.State()
	if st == StateCompleted || st == StateCancelled {
		return false
	}
	if s.superseded() {
		return s.finish(StateCancelled)
	}
	switch st {
	case StateSubmitted:
		s.state.Store(int32(StateTriePhase))
		return true
	case StateTriePhase:
		s.triePhase()
		s.state.Store(int32(StateFuzzyPhase))
		return true
	case StateFuzzyPhase:
		if s.pos >= len(s.remaining) {
			s.fn(nil, true)
			return s.finish(StateCompleted)
		}
		s.fuzzyChunk()
		return true
	default:
		return false
	}
}

// superseded re-reads the cancellation conditions: explicit Cancel or a
// newer generation submitted on the same searcher.
func (s *Session) superseded() bool {
	return s.cancelled.Load() || s.searcher.gen.Load() != s.gen
}

func (s *Session) finish(st State) bool {
	s.state.Store(int32(st))
	// Drop intermediate buffers; nothing beyond the in-flight batch
	// survives a terminal transition.
	s.seen = nil
	s.remaining = nil
	close(s.done)
	return false
}

// triePhase collects the immediate prefix hits, scores and sorts them, and
// emits them as a single batch. The empty query short-circuits to the full
// record set, uncapped, leaving nothing for the fuzzy phase.
func (s *Session) triePhase() {
	keys := s.ix.Keys(s.mode)
	s.seen = make(map[string]struct{})

	var hitKeys []string
	if s.query == "" {
		hitKeys = keys
	} else if len(s.tokens) == 0 {
		// Delimiter-only query: nothing to look up.
	} else {
		// Single-token queries do one prefix lookup; multi-token queries
		// union the per-token results.
		hits := s.ix.SearchPrefix(s.mode, s.tokens[0])
		for _, tok := range s.tokens[1:] {
			for k := range s.ix.SearchPrefix(s.mode, tok) {
				hits[k] = struct{}{}
			}
		}
		hitKeys = make([]string, 0, len(hits))
		for k := range hits {
			hitKeys = append(hitKeys, k)
		}
		sort.Strings(hitKeys)
	}

	batch := make([]Match, 0, len(hitKeys))
	for _, key := range hitKeys {
		e := s.ix.Lookup(s.mode, key)
		score, kind, ok := s.searcher.scorer.Score(e, s.mode, s.query, s.tokens)
		if !ok {
			// Trie hit through a secondary token (schema, typename) that
			// none of the scoring rules recognize; keep it at the floor.
			score, kind = s.searcher.opts.Weights.FuzzyFloor, KindFuzzy
		}
		batch = append(batch, Match{Entry: e, Score: score, Kind: kind})
	}
	sortMatches(batch)

	if s.query != "" && len(batch) > s.searcher.opts.TrieCap {
		batch = batch[:s.searcher.opts.TrieCap]
	}
	for _, m := range batch {
		s.seen[m.Entry.Key] = struct{}{}
	}

	// Records not in the emitted result set are inspected progressively by
	// the fuzzy phase, in stable key order.
	s.remaining = make([]string, 0, len(keys)-len(batch))
	for _, k := range keys {
		if _, hit := s.seen[k]; !hit {
			s.remaining = append(s.remaining, k)
		}
	}

	s.fn(batch, false)
}

// fuzzyChunk inspects the next ChunkSize remaining records and emits
// whatever matched, which may be nothing.
func (s *Session) fuzzyChunk() {
	end := s.pos + s.searcher.opts.ChunkSize
	if end > len(s.remaining) {
		end = len(s.remaining)
	}

	var batch []Match
	for _, key := range s.remaining[s.pos:end] {
		e := s.ix.Lookup(s.mode, key)
		score, kind, ok := s.searcher.scorer.Score(e, s.mode, s.query, s.tokens)
		if !ok {
			continue
		}
		batch = append(batch, Match{Entry: e, Score: score, Kind: kind})
	}
	s.pos = end

	sortMatches(batch)
	s.fn(batch, false)
}

// sortMatches orders by score descending, then key ascending, so repeated
// identical queries produce identical sequences.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.Key < matches[j].Entry.Key
	})
}
