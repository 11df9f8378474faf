/*
Package server implements msgpack IPC for schema search services.

The server provides a minimal interface for table and column search using
msgpack serialization over stdin/stdout.

Messages are binary msgpack maps. Each request carries an ID field and an
action; search responses stream back as a sequence of batch messages
sharing the request ID, closed by a message with the final flag set.

A search request looks like:

	{"id": "req_001", "action": "search", "q": "custmr", "m": "tables"}

The server answers with one immediate batch of prefix hits, then
progressive fuzzy batches, then the terminal marker:

	{"id": "req_001", "r": [{"k": "SHOP.CUSTOMERS", "s": 0.45, "mk": "fuzzy"}], "f": false}
	{"id": "req_001", "r": [], "f": false}
	{"id": "req_001", "r": [], "f": true, "t": 3}

Submitting a new search supersedes the previous one: its remaining batches
are abandoned and no final marker is sent for it.

Refresh re-reads the schema snapshot and swaps the index without
interrupting in-flight sessions:

	{"id": "ref_1", "action": "refresh"}

Status reports the size of the current index:

	{"id": "st_1", "action": "status"}
*/
package server

// Request is an incoming IPC request.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"` // "search", "refresh", "status"
	Query  string `msgpack:"q,omitempty"`
	Mode   string `msgpack:"m,omitempty"` // "tables" (default) or "columns"
}

// ResultRow is one scored match inside a batch.
type ResultRow struct {
	Key   string  `msgpack:"k"`
	Name  string  `msgpack:"n"`
	Score float64 `msgpack:"s"`
	Kind  string  `msgpack:"mk"`
}

// SearchBatch is one unit of streamed results for a search request.
type SearchBatch struct {
	ID        string      `msgpack:"id"`
	Rows      []ResultRow `msgpack:"r"`
	Final     bool        `msgpack:"f"`
	TimeTaken int64       `msgpack:"t,omitempty"`
}

// StatusResponse reports index size and readiness.
type StatusResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Tables  int    `msgpack:"tables"`
	Columns int    `msgpack:"columns"`
}

// ErrorResponse holds basic error information for failed requests.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
