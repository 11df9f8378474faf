// Copyright 2025 The SchemaServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the schema search server and CLI application.

SchemaServe provides interactive search over large relational schemas:
prefix-trie lookups for immediate hits, with a bounded edit-distance fuzzy
fallback streamed progressively. It can operate as a MessagePack IPC server
for integration with database tooling, or as a CLI application for testing
and debugging.

# Usage

Start the server against a schema snapshot:

	schemaserve -data /path/to/snapshot.json

Run in CLI mode for interactive testing:

	schemaserve -data snapshot.json -c -limit 10

The snapshot is a JSON file produced by an external metadata fetcher:

	{"tables": [{"schema": "SHOP", "name": "CUSTOMERS", "remarks": "..."}],
	 "columns": [{"schema": "SHOP", "table": "CUSTOMERS", "name": "EMAIL",
	              "typename": "VARCHAR", "length": 255, "nullable": true}]}

# Configuration

Runtime configuration is managed through a TOML file:

	[server]
	max_query_len = 128
	max_rows = 200

	[search]
	trie_cap = 200
	chunk_size = 50
	table_remarks_weight = 0.5
	column_remarks_weight = 0.8

The config file is automatically created with defaults if it doesn't exist.
SCHEMASERVE_* environment variables override individual values.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Search requests
stream back ranked batches: one immediate trie batch, then progressive
fuzzy batches, then a terminal marker. A new search supersedes the previous
one. See the server package documentation for the message formats.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/dtg01100/dbutils-sub000/internal/cli"
	"github.com/dtg01100/dbutils-sub000/pkg/config"
	"github.com/dtg01100/dbutils-sub000/pkg/index"
	"github.com/dtg01100/dbutils-sub000/pkg/metadata"
	"github.com/dtg01100/dbutils-sub000/pkg/search"
	"github.com/dtg01100/dbutils-sub000/pkg/server"
)

const (
	Version = "0.3.0"
	AppName = "schemaserve"
	gh      = "https://github.com/dtg01100/dbutils-sub000"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI input loop.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	snapshotPath := flag.String("data", "snapshot.json", "Schema snapshot JSON file")
	configPath := flag.String("config", "", "Custom config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of matches to display in CLI mode")
	modeFlag := flag.String("mode", defaultConfig.CLI.DefaultMode, "Initial search mode: tables or columns")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ SchemaServe ] Interactive schema search!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, loadedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: (%s)", loadedPath)

	provider := metadata.NewFileProvider(*snapshotPath)
	handle := index.NewHandle(nil)
	if _, err := metadata.Refresh(provider, handle); err != nil {
		log.Fatalf("Failed to load schema snapshot: %v", err)
	}

	if *cliMode {
		log.SetReportTimestamp(false)

		opts := search.DefaultOptions()
		opts.TrieCap = appConfig.Search.TrieCap
		opts.ChunkSize = appConfig.Search.ChunkSize
		opts.Weights.TableRemarks = appConfig.Search.TableRemarksWeight
		opts.Weights.ColumnRemarks = appConfig.Search.ColumnRemarksWeight
		searcher := search.NewSearcher(handle, opts)

		mode := index.ModeTables
		if *modeFlag == "columns" {
			mode = index.ModeColumns
		}
		inputHandler := cli.NewInputHandler(searcher, mode, *limit, appConfig.Server.MaxQueryLen)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(handle, provider, appConfig)

	showStartupInfo(*snapshotPath, handle)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(snapshotPath string, handle *index.Handle) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	ix := handle.Load()
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("snapshot: ( %s )", snapshotPath)
	log.Infof("indexed: %d tables, %d columns", ix.Len(index.ModeTables), ix.Len(index.ModeColumns))
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
