// Package metadata consumes schema snapshots produced by an external
// metadata collaborator. The engine itself never talks to a database; it
// reads an already-fetched collection of table and column records, here
// serialized as a JSON snapshot file.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dtg01100/dbutils-sub000/pkg/index"
	"github.com/dtg01100/dbutils-sub000/pkg/schema"
)

// Snapshot is one complete schema metadata set.
type Snapshot struct {
	Tables  []schema.TableRecord  `json:"tables"`
	Columns []schema.ColumnRecord `json:"columns"`
}

// Provider supplies snapshots. Implementations own fetching, caching and
// retries; the search core only consumes the result.
type Provider interface {
	Snapshot() (*Snapshot, error)
}

// FileProvider reads snapshots from a JSON file on each call, so a refresh
// picks up whatever the file holds now.
type FileProvider struct {
	Path string
}

// NewFileProvider returns a provider over the given snapshot file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Snapshot reads and decodes the snapshot file.
func (p *FileProvider) Snapshot() (*Snapshot, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", p.Path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", p.Path, err)
	}
	log.Debugf("snapshot loaded: %d tables, %d columns", len(snap.Tables), len(snap.Columns))
	return &snap, nil
}

// Refresh fetches a snapshot from the provider, builds a fresh index and
// atomically publishes it on the handle. Sessions already running keep
// their old index; only future searches see the new one.
func Refresh(p Provider, h *index.Handle) (*index.Index, error) {
	snap, err := p.Snapshot()
	if err != nil {
		return nil, err
	}
	ix := index.Build(snap.Tables, snap.Columns)
	h.Store(ix)
	return ix, nil
}
