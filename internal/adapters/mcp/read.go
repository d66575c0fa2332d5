// Package mcp exposes profile management and syncing as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"decksync/internal/adapters/sqlite"
	"decksync/internal/cache"
	"decksync/internal/catalog"
	"decksync/internal/sync"
)

// Deps bundles the application state the tools operate on.
type Deps struct {
	Store   *sqlite.Store
	Cache   *cache.Cache
	Catalog *catalog.Catalog
	Syncer  *sync.Syncer
}

// RegisterReadTools adds the read-only tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, deps *Deps) {
	s.AddTool(listProfilesTool(), listProfilesHandler(deps))
	s.AddTool(resolveCardTool(), resolveCardHandler(deps))
}

// --- list_profiles ---

func listProfilesTool() mcp.Tool {
	return mcp.NewTool("list_profiles",
		mcp.WithDescription("List all sync profiles with their outputs."),
	)
}

func listProfilesHandler(deps *Deps) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if len(deps.Cache.Profiles) == 0 {
			return mcp.NewToolResultText("No profiles configured."), nil
		}

		var sb strings.Builder
		for _, profile := range deps.Cache.Profiles {
			if profile.Name != "" {
				fmt.Fprintf(&sb, "%s (%s)\n", profile.Name, profile.UserString())
			} else {
				fmt.Fprintf(&sb, "%s\n", profile.UserString())
			}
			for _, out := range profile.Outputs {
				maybe := ""
				if out.IncludeMaybe {
					maybe = " [maybeboard]"
				}
				fmt.Fprintf(&sb, "  %s -> %s%s\n", out.Target.Name(), out.Dir.Path, maybe)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- resolve_card ---

func resolveCardTool() mcp.Tool {
	return mcp.NewTool("resolve_card",
		mcp.WithDescription("Resolve a card name to its canonical record: printing, collector number and catalog id."),
		mcp.WithString("name",
			mcp.Description("Card name to resolve"),
			mcp.Required(),
		),
		mcp.WithBoolean("need_catalog_id",
			mcp.Description("Require a printing that carries an online catalog id"),
		),
	)
}

func resolveCardHandler(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("name", "")
		if name == "" {
			return toolError(fmt.Errorf("name is required"))
		}

		card, err := deps.Catalog.Resolve(ctx, name, req.GetBool("need_catalog_id", false))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return mcp.NewToolResultText(fmt.Sprintf("No card found for %q.", name)), nil
			}
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s [%s:%s]\n", card.Name, card.Edition, card.CollectorNumber)
		if card.CatalogID != "" {
			fmt.Fprintf(&sb, "catalog id: %s\n", card.CatalogID)
		}
		if card.DoubleFaced {
			fmt.Fprintf(&sb, "double-faced, front face: %s\n", card.FrontFace())
		}
		if card.Reprint {
			sb.WriteString("reprint\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
