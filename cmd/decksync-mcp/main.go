package main

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "decksync/internal/adapters/mcp"
	"decksync/internal/adapters/scryfall"
	"decksync/internal/adapters/sources"
	"decksync/internal/adapters/sqlite"
	"decksync/internal/adapters/targets"
	"decksync/internal/catalog"
	"decksync/internal/config"
	"decksync/internal/logging"
	"decksync/internal/sync"
)

func main() {
	// Stdout carries the MCP protocol; keep log output off the console.
	logging.Setup(0)

	path, err := config.DatabaseFile()
	if err != nil {
		log.Fatalf("decksync-mcp: %v", err)
	}
	store, err := sqlite.Open(path)
	if err != nil {
		log.Fatalf("decksync-mcp: %v", err)
	}
	defer store.Close()

	cache, err := store.Load(sources.Get, targets.Get)
	if err != nil {
		log.Fatalf("decksync-mcp: %v", err)
	}

	cat := catalog.New(store, scryfall.NewClient())
	deps := &mcpadapter.Deps{
		Store:   store,
		Cache:   cache,
		Catalog: cat,
		Syncer:  sync.New(cat),
	}

	mcpServer := server.NewMCPServer(
		"decksync-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	mcpadapter.RegisterReadTools(mcpServer, deps)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("decksync-mcp: %v", err)
	}
}
