// Package cli handles cmd line input for DBG and testing of the search
// engine without the IPC layer.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/dtg01100/dbutils-sub000/internal/logger"
	"github.com/dtg01100/dbutils-sub000/pkg/index"
	"github.com/dtg01100/dbutils-sub000/pkg/search"
)

// InputHandler reads queries from stdin and streams matches back as the
// session produces them. `:tables` and `:columns` switch the search mode.
type InputHandler struct {
	searcher     *search.Searcher
	mode         index.Mode
	displayLimit int
	maxQueryLen  int
	log          *charmlog.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic
// parameters.
func NewInputHandler(searcher *search.Searcher, mode index.Mode, displayLimit, maxQueryLen int) *InputHandler {
	return &InputHandler{
		searcher:     searcher,
		mode:         mode,
		displayLimit: displayLimit,
		maxQueryLen:  maxQueryLen,
		log:          logger.New("cli"),
	}
}

// Start begins the interface loop. It continuously prompts for input,
// reads a line from stdin, and passes the trimmed input to handleInput().
// The loop terminates if an error occurs while reading from stdin.
func (h *InputHandler) Start() error {
	h.log.Print("SchemaServe CLI")
	reader := bufio.NewReader(os.Stdin)
	h.log.Print("type a query and press Enter (:tables / :columns to switch mode, Ctrl+C to exit):")

	for {
		h.log.Printf("[%s] > ", h.mode)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleQuery(line)
	}
}

func (h *InputHandler) handleCommand(cmd string) {
	switch cmd {
	case ":tables", ":t":
		h.mode = index.ModeTables
		h.log.Print("mode: tables")
	case ":columns", ":c":
		h.mode = index.ModeColumns
		h.log.Print("mode: columns")
	default:
		h.log.Errorf("Unknown command: %s", cmd)
	}
}

// handleQuery runs a single search to completion, printing each batch as
// it arrives.
func (h *InputHandler) handleQuery(query string) {
	if len(query) > h.maxQueryLen {
		h.log.Errorf("Query too long: %s", query)
		return
	}

	start := time.Now()
	shown := 0
	total := 0

	sess := h.searcher.Search(query, h.mode, func(matches []search.Match, final bool) {
		for _, m := range matches {
			total++
			if shown >= h.displayLimit {
				continue
			}
			shown++
			clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", m.Entry.Key)
			h.log.Printf("%2d. %-50s %-12s %.2f", shown, clName, m.Kind, m.Score)
		}
		if final {
			h.log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)
		}
	})
	<-sess.Done()

	if total == 0 {
		h.log.Warnf("No matches found for query: '%s'", query)
		return
	}
	if total > shown {
		h.log.Printf("... %d more matches not shown", total-shown)
	}
}
