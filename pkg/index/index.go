// Package index builds the in-memory search index over schema metadata:
// one prefix trie plus one key->entry map per search mode. An Index is
// immutable after Build; refreshing the schema means building a new Index
// and swapping the shared Handle, never mutating in place.
package index

import (
	"sort"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dtg01100/dbutils-sub000/pkg/schema"
)

// Mode selects which half of the index a search runs against.
type Mode int

const (
	ModeTables Mode = iota
	ModeColumns
)

func (m Mode) String() string {
	if m == ModeColumns {
		return "columns"
	}
	return "tables"
}

// Entry is the indexed view of one table or column record. Exactly one of
// Table or Column is set, matching the mode of the side it lives on.
type Entry struct {
	Key     string
	Name    string
	Remarks string
	Tokens  []string

	Table  *schema.TableRecord
	Column *schema.ColumnRecord
}

type modeIndex struct {
	trie    *KeyTrie
	entries map[string]*Entry
	keys    []string
}

func newModeIndex(size int) *modeIndex {
	return &modeIndex{
		trie:    NewKeyTrie(),
		entries: make(map[string]*Entry, size),
	}
}

func (mi *modeIndex) add(e *Entry) {
	if _, dup := mi.entries[e.Key]; !dup {
		mi.entries[e.Key] = e
		mi.keys = append(mi.keys, e.Key)
	}
	for _, tok := range e.Tokens {
		mi.trie.Insert(tok, e.Key)
	}
}

// Index holds the table and column tries plus key lookups for one schema
// snapshot. Read-only after Build, so concurrent sessions share it without
// synchronization.
type Index struct {
	tables  *modeIndex
	columns *modeIndex
}

// Build constructs a fresh Index from a full metadata snapshot. Tables are
// indexed by the tokens of name, schema and remarks; columns by the tokens
// of name, typename and remarks. Duplicate keys keep the first record seen.
func Build(tables []schema.TableRecord, columns []schema.ColumnRecord) *Index {
	ix := &Index{
		tables:  newModeIndex(len(tables)),
		columns: newModeIndex(len(columns)),
	}

	for i := range tables {
		t := &tables[i]
		tokens := Tokenize(t.Name)
		tokens = append(tokens, Tokenize(t.Schema)...)
		tokens = append(tokens, Tokenize(t.Remarks)...)
		ix.tables.add(&Entry{
			Key:     t.Key(),
			Name:    t.Name,
			Remarks: t.Remarks,
			Tokens:  tokens,
			Table:   t,
		})
	}

	for i := range columns {
		c := &columns[i]
		tokens := Tokenize(c.Name)
		tokens = append(tokens, Tokenize(c.TypeName)...)
		tokens = append(tokens, Tokenize(c.Remarks)...)
		ix.columns.add(&Entry{
			Key:     c.Key(),
			Name:    c.Name,
			Remarks: c.Remarks,
			Tokens:  tokens,
			Column:  c,
		})
	}

	// Sorted key order is what makes fuzzy-phase iteration deterministic.
	sort.Strings(ix.tables.keys)
	sort.Strings(ix.columns.keys)

	log.Debugf("index built: %d tables (%d tokens), %d columns (%d tokens)",
		len(ix.tables.keys), ix.tables.trie.Words(),
		len(ix.columns.keys), ix.columns.trie.Words())
	return ix
}

func (ix *Index) side(m Mode) *modeIndex {
	if m == ModeColumns {
		return ix.columns
	}
	return ix.tables
}

// SearchPrefix returns the keys of every entry with an indexed token
// starting with prefix, in the given mode.
func (ix *Index) SearchPrefix(m Mode, prefix string) map[string]struct{} {
	return ix.side(m).trie.SearchPrefix(prefix)
}

// Lookup returns the entry for a key, or nil.
func (ix *Index) Lookup(m Mode, key string) *Entry {
	return ix.side(m).entries[key]
}

// Keys returns all keys of a mode in ascending order. Callers must not
// modify the returned slice.
func (ix *Index) Keys(m Mode) []string {
	return ix.side(m).keys
}

// Len reports the number of entries in a mode.
func (ix *Index) Len(m Mode) int {
	return len(ix.side(m).keys)
}

// Handle is an atomically replaceable reference to the current Index.
// Sessions load it once at submission and keep reading their snapshot even
// if a refresh swaps in a newer Index underneath them.
type Handle struct {
	ptr atomic.Pointer[Index]
}

// NewHandle returns a handle holding ix, which may be nil.
func NewHandle(ix *Index) *Handle {
	h := &Handle{}
	if ix != nil {
		h.ptr.Store(ix)
	}
	return h
}

// Load returns the current index, or nil if none was built yet.
func (h *Handle) Load() *Index {
	return h.ptr.Load()
}

// Store atomically publishes a freshly built index.
func (h *Handle) Store(ix *Index) {
	h.ptr.Store(ix)
}
