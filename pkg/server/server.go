package server

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dtg01100/dbutils-sub000/pkg/config"
	"github.com/dtg01100/dbutils-sub000/pkg/index"
	"github.com/dtg01100/dbutils-sub000/pkg/metadata"
	"github.com/dtg01100/dbutils-sub000/pkg/search"
)

// Server handles the IPC for schema search.
type Server struct {
	searcher *search.Searcher
	handle   *index.Handle
	provider metadata.Provider
	cfg      *config.Config

	dec  *msgpack.Decoder
	enc  *msgpack.Encoder
	last *search.Session
	// Batches arrive from the session goroutine while errors are written
	// from the request loop, so every encode takes the mutex.
	writeMu sync.Mutex
}

// NewServer creates a search server over stdin/stdout.
func NewServer(handle *index.Handle, provider metadata.Provider, cfg *config.Config) *Server {
	return newServer(handle, provider, cfg, os.Stdin, os.Stdout)
}

func newServer(handle *index.Handle, provider metadata.Provider, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	opts := search.DefaultOptions()
	opts.TrieCap = cfg.Search.TrieCap
	opts.ChunkSize = cfg.Search.ChunkSize
	opts.Weights.TableRemarks = cfg.Search.TableRemarksWeight
	opts.Weights.ColumnRemarks = cfg.Search.ColumnRemarksWeight
	return &Server{
		searcher: search.NewSearcher(handle, opts),
		handle:   handle,
		provider: provider,
		cfg:      cfg,
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests. Returns nil on client EOF.
func (s *Server) Start() error {
	log.Debug("Starting server.")
	s.send(map[string]string{"status": "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.drain()
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case "search":
		s.handleSearch(req)
	case "refresh":
		s.handleRefresh(req)
	case "status":
		s.handleStatus(req)
	default:
		s.sendError(req.ID, "unknown action: "+req.Action, 400)
	}
}

func (s *Server) handleSearch(req Request) {
	if len(req.Query) > s.cfg.Server.MaxQueryLen {
		s.sendError(req.ID, "query exceeds maximum length", 400)
		log.Debugf("query too long: %d chars", len(req.Query))
		return
	}
	mode := parseMode(req.Mode)

	start := time.Now()
	id := req.ID
	s.last = s.searcher.Search(req.Query, mode, func(matches []search.Match, final bool) {
		batch := SearchBatch{
			ID:   id,
			Rows: make([]ResultRow, 0, len(matches)),
		}
		for _, m := range matches {
			if s.cfg.Server.MaxRows > 0 && len(batch.Rows) >= s.cfg.Server.MaxRows {
				break
			}
			batch.Rows = append(batch.Rows, ResultRow{
				Key:   m.Entry.Key,
				Name:  m.Entry.Name,
				Score: m.Score,
				Kind:  m.Kind.String(),
			})
		}
		if final {
			batch.Final = true
			batch.TimeTaken = time.Since(start).Milliseconds()
		}
		s.send(batch)
	})
}

func (s *Server) handleRefresh(req Request) {
	if s.provider == nil {
		s.sendError(req.ID, "no metadata provider configured", 400)
		return
	}
	ix, err := metadata.Refresh(s.provider, s.handle)
	if err != nil {
		log.Errorf("Refreshing index: %v", err)
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	s.send(StatusResponse{
		ID:      req.ID,
		Status:  "ok",
		Tables:  ix.Len(index.ModeTables),
		Columns: ix.Len(index.ModeColumns),
	})
}

func (s *Server) handleStatus(req Request) {
	ix := s.handle.Load()
	if ix == nil {
		s.send(StatusResponse{ID: req.ID, Status: "empty"})
		return
	}
	s.send(StatusResponse{
		ID:      req.ID,
		Status:  "ok",
		Tables:  ix.Len(index.ModeTables),
		Columns: ix.Len(index.ModeColumns),
	})
}

// drain waits for the most recent session to reach a terminal state so the
// client sees a complete stream before the server exits.
func (s *Server) drain() {
	if s.last != nil {
		<-s.last.Done()
	}
}

func (s *Server) send(response interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

func parseMode(m string) index.Mode {
	switch strings.ToLower(m) {
	case "columns", "column", "c":
		return index.ModeColumns
	default:
		return index.ModeTables
	}
}
