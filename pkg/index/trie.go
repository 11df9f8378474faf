package index

import (
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// KeyTrie maps lowercase token prefixes to the set of record keys whose
// indexed fields contain a token starting with that prefix. Lookups walk the
// trie along the prefix and collect every key set in the matched subtree,
// which is what gives prefix semantics rather than exact-word semantics.
//
// All inserts and lookups lowercase their input, so the trie is case
// insensitive by construction.
type KeyTrie struct {
	trie  *patricia.Trie
	words int
}

// NewKeyTrie returns an empty trie.
func NewKeyTrie() *KeyTrie {
	return &KeyTrie{trie: patricia.NewTrie()}
}

// Insert associates a record key with a token. Inserting the same
// (word, key) pair twice is a no-op.
func (t *KeyTrie) Insert(word, key string) {
	word = strings.ToLower(word)
	if word == "" {
		return
	}
	prefix := patricia.Prefix(word)
	if item := t.trie.Get(prefix); item != nil {
		item.(map[string]struct{})[key] = struct{}{}
		return
	}
	t.trie.Insert(prefix, map[string]struct{}{key: {}})
	t.words++
}

// SearchPrefix returns the union of key sets for every indexed token that
// starts with prefix. A prefix not present in the trie yields an empty set,
// never nil.
func (t *KeyTrie) SearchPrefix(prefix string) map[string]struct{} {
	keys := make(map[string]struct{})
	lower := strings.ToLower(prefix)
	// VisitSubtree walks only the nodes under the matched prefix; if no
	// token starts with it, the visitor is simply never called.
	err := t.trie.VisitSubtree(patricia.Prefix(lower), func(p patricia.Prefix, item patricia.Item) error {
		for key := range item.(map[string]struct{}) {
			keys[key] = struct{}{}
		}
		return nil
	})
	if err != nil {
		// The visitor above never returns an error.
		return keys
	}
	return keys
}

// Words reports how many distinct tokens are indexed.
func (t *KeyTrie) Words() int {
	return t.words
}
