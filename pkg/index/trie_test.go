package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPrefixAllPrefixes(t *testing.T) {
	trie := NewKeyTrie()
	trie.Insert("customers", "SHOP.CUSTOMERS")

	// Every prefix of an inserted word, including the word itself, must
	// reach the key.
	word := "customers"
	for i := 1; i <= len(word); i++ {
		keys := trie.SearchPrefix(word[:i])
		assert.Contains(t, keys, "SHOP.CUSTOMERS", "prefix %q", word[:i])
	}
}

func TestSearchPrefixMiss(t *testing.T) {
	trie := NewKeyTrie()
	trie.Insert("orders", "SHOP.ORDERS")

	assert.Empty(t, trie.SearchPrefix("orderz"))
	assert.Empty(t, trie.SearchPrefix("x"))
	// No partial credit when a character is missing mid-walk.
	assert.Empty(t, trie.SearchPrefix("ord3"))
}

func TestSearchPrefixCaseInsensitive(t *testing.T) {
	trie := NewKeyTrie()
	trie.Insert("Users", "k")

	keys := trie.SearchPrefix("USE")
	assert.Contains(t, keys, "k")
}

func TestSearchPrefixCollectsSubtree(t *testing.T) {
	trie := NewKeyTrie()
	trie.Insert("user", "A")
	trie.Insert("users", "B")
	trie.Insert("username", "C")
	trie.Insert("usage", "D")

	keys := trie.SearchPrefix("user")
	require.Len(t, keys, 3)
	assert.Contains(t, keys, "A")
	assert.Contains(t, keys, "B")
	assert.Contains(t, keys, "C")

	keys = trie.SearchPrefix("us")
	assert.Len(t, keys, 4)
}

func TestInsertIdempotent(t *testing.T) {
	trie := NewKeyTrie()
	trie.Insert("orders", "k1")
	trie.Insert("orders", "k1")
	trie.Insert("ORDERS", "k1")

	keys := trie.SearchPrefix("ord")
	assert.Len(t, keys, 1)
	assert.Equal(t, 1, trie.Words())
}

func TestInsertMultipleKeysPerWord(t *testing.T) {
	trie := NewKeyTrie()
	trie.Insert("id", "SHOP.CUSTOMERS.ID")
	trie.Insert("id", "SHOP.ORDERS.ID")

	keys := trie.SearchPrefix("id")
	assert.Len(t, keys, 2)
}
