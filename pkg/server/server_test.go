package server

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dtg01100/dbutils-sub000/pkg/config"
	"github.com/dtg01100/dbutils-sub000/pkg/index"
	"github.com/dtg01100/dbutils-sub000/pkg/metadata"
	"github.com/dtg01100/dbutils-sub000/pkg/schema"
)

type stubProvider struct {
	snap *metadata.Snapshot
	err  error
}

func (p *stubProvider) Snapshot() (*metadata.Snapshot, error) {
	return p.snap, p.err
}

func testHandle() *index.Handle {
	tables := []schema.TableRecord{
		{Schema: "TEST", Name: "USERS"},
		{Schema: "TEST", Name: "USER_PROFILES"},
		{Schema: "TEST", Name: "ORDERS"},
	}
	return index.NewHandle(index.Build(tables, nil))
}

// runServer encodes the given requests, runs the server to EOF and returns
// a decoder over everything it wrote.
func runServer(t *testing.T, h *index.Handle, p metadata.Provider, reqs ...Request) *msgpack.Decoder {
	t.Helper()

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}

	var out bytes.Buffer
	srv := newServer(h, p, config.DefaultConfig(), &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready map[string]string
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready["status"])
	return dec
}

func TestServerStatus(t *testing.T) {
	dec := runServer(t, testHandle(), nil, Request{ID: "s1", Action: "status"})

	var resp StatusResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "s1", resp.ID)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Tables)
	assert.Equal(t, 0, resp.Columns)
}

func TestServerSearchStreams(t *testing.T) {
	dec := runServer(t, testHandle(), nil,
		Request{ID: "q1", Action: "search", Query: "user", Mode: "tables"})

	var batches []SearchBatch
	for {
		var b SearchBatch
		require.NoError(t, dec.Decode(&b))
		batches = append(batches, b)
		if b.Final {
			break
		}
	}

	// Immediate trie batch first, ranked.
	first := batches[0]
	assert.Equal(t, "q1", first.ID)
	require.Len(t, first.Rows, 2)
	assert.Equal(t, "TEST.USERS", first.Rows[0].Key)
	assert.Equal(t, "contains", first.Rows[0].Kind)
	assert.Equal(t, "TEST.USER_PROFILES", first.Rows[1].Key)
	assert.Equal(t, "word-prefix", first.Rows[1].Kind)

	// Only the last batch carries the final marker.
	for i, b := range batches[:len(batches)-1] {
		assert.False(t, b.Final, "batch %d", i)
	}
	assert.True(t, batches[len(batches)-1].Final)
}

func TestServerQueryTooLong(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	dec := runServer(t, testHandle(), nil,
		Request{ID: "q1", Action: "search", Query: string(long)})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "q1", resp.ID)
	assert.Equal(t, 400, resp.Code)
}

func TestServerUnknownAction(t *testing.T) {
	dec := runServer(t, testHandle(), nil, Request{ID: "x", Action: "explode"})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 400, resp.Code)
}

func TestServerRefresh(t *testing.T) {
	p := &stubProvider{snap: &metadata.Snapshot{
		Tables: []schema.TableRecord{{Schema: "A", Name: "ONLY"}},
		Columns: []schema.ColumnRecord{
			{Schema: "A", Table: "ONLY", Name: "ID", TypeName: "INTEGER"},
		},
	}}
	h := testHandle()
	dec := runServer(t, h, p, Request{ID: "r1", Action: "refresh"})

	var resp StatusResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Tables)
	assert.Equal(t, 1, resp.Columns)

	// The handle now serves the fresh index.
	assert.Equal(t, 1, h.Load().Len(index.ModeTables))
}

func TestServerRefreshWithoutProvider(t *testing.T) {
	dec := runServer(t, testHandle(), nil, Request{ID: "r1", Action: "refresh"})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 400, resp.Code)
}
