package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtg01100/dbutils-sub000/pkg/schema"
)

func sampleTables() []schema.TableRecord {
	return []schema.TableRecord{
		{Schema: "TEST", Name: "USERS", Remarks: "registered accounts"},
		{Schema: "TEST", Name: "USER_PROFILES"},
		{Schema: "TEST", Name: "ORDERS"},
	}
}

func sampleColumns() []schema.ColumnRecord {
	length := 255
	return []schema.ColumnRecord{
		{Schema: "TEST", Table: "USERS", Name: "EMAIL", TypeName: "VARCHAR", Length: &length, Nullable: true},
		{Schema: "TEST", Table: "USERS", Name: "ID", TypeName: "INTEGER"},
		{Schema: "TEST", Table: "ORDERS", Name: "USER_ID", TypeName: "INTEGER", Remarks: "buyer reference"},
	}
}

func TestBuildLookup(t *testing.T) {
	ix := Build(sampleTables(), sampleColumns())

	e := ix.Lookup(ModeTables, "TEST.USERS")
	require.NotNil(t, e)
	assert.Equal(t, "USERS", e.Name)
	require.NotNil(t, e.Table)
	assert.Equal(t, "TEST", e.Table.Schema)

	c := ix.Lookup(ModeColumns, "TEST.USERS.EMAIL")
	require.NotNil(t, c)
	require.NotNil(t, c.Column)
	assert.Equal(t, "VARCHAR", c.Column.TypeName)

	assert.Nil(t, ix.Lookup(ModeTables, "TEST.NOPE"))
}

func TestBuildKeysSorted(t *testing.T) {
	ix := Build(sampleTables(), sampleColumns())

	keys := ix.Keys(ModeTables)
	assert.True(t, sort.StringsAreSorted(keys))
	assert.Len(t, keys, 3)

	keys = ix.Keys(ModeColumns)
	assert.True(t, sort.StringsAreSorted(keys))
	assert.Len(t, keys, 3)
}

func TestBuildIndexesSecondaryFields(t *testing.T) {
	ix := Build(sampleTables(), sampleColumns())

	// Schema name tokens reach tables.
	hits := ix.SearchPrefix(ModeTables, "test")
	assert.Len(t, hits, 3)

	// Remarks tokens reach tables.
	hits = ix.SearchPrefix(ModeTables, "registered")
	assert.Contains(t, hits, "TEST.USERS")

	// Typename tokens reach columns.
	hits = ix.SearchPrefix(ModeColumns, "varchar")
	assert.Contains(t, hits, "TEST.USERS.EMAIL")
}

func TestBuildDuplicateKeyKeepsFirst(t *testing.T) {
	tables := []schema.TableRecord{
		{Schema: "A", Name: "T", Remarks: "first"},
		{Schema: "A", Name: "T", Remarks: "second"},
	}
	ix := Build(tables, nil)

	assert.Equal(t, 1, ix.Len(ModeTables))
	assert.Equal(t, "first", ix.Lookup(ModeTables, "A.T").Remarks)
}

func TestHandleSwap(t *testing.T) {
	h := NewHandle(nil)
	assert.Nil(t, h.Load())

	ix1 := Build(sampleTables(), nil)
	h.Store(ix1)
	old := h.Load()
	require.Same(t, ix1, old)

	// A rebuild publishes a new index; readers holding the old one keep a
	// consistent view.
	ix2 := Build(sampleTables()[:1], nil)
	h.Store(ix2)
	assert.Same(t, ix2, h.Load())
	assert.Equal(t, 3, old.Len(ModeTables))
	assert.Equal(t, 1, ix2.Len(ModeTables))
}
