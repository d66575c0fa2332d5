package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"decksync/internal/adapters/sources"
	"decksync/internal/adapters/targets"
	"decksync/internal/cache"
	"decksync/internal/config"
)

// RegisterWriteTools adds the mutating tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, deps *Deps) {
	s.AddTool(addProfileTool(), addProfileHandler(deps))
	s.AddTool(removeProfileTool(), removeProfileHandler(deps))
	s.AddTool(syncTool(), syncHandler(deps))
}

// --- add_profile ---

func addProfileTool() mcp.Tool {
	return mcp.NewTool("add_profile",
		mcp.WithDescription("Create a sync profile binding a user on a deck site to an output directory for one client."),
		mcp.WithString("source",
			mcp.Description("Deck site name or code (Archidekt, Moxfield, Tapped Out, Deckstats)"),
			mcp.Required(),
		),
		mcp.WithString("user",
			mcp.Description("User whose public decks should be synced"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Client name or code (Cockatrice, MTGO, XMage)"),
			mcp.Required(),
		),
		mcp.WithString("path",
			mcp.Description("Directory to save deck files to"),
			mcp.Required(),
		),
		mcp.WithBoolean("include_maybe",
			mcp.Description("Include maybeboard cards in the sideboard"),
		),
		mcp.WithString("name",
			mcp.Description("Optional display name for the profile"),
		),
	)
}

func addProfileHandler(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, ok := sources.Get(req.GetString("source", ""))
		if !ok {
			return toolError(fmt.Errorf("unknown source %q", req.GetString("source", "")))
		}
		target, ok := targets.Get(req.GetString("target", ""))
		if !ok {
			return toolError(fmt.Errorf("unknown target %q", req.GetString("target", "")))
		}
		user := req.GetString("user", "")
		path := req.GetString("path", "")
		if user == "" || path == "" {
			return toolError(fmt.Errorf("user and path are required"))
		}

		found, err := source.VerifyUser(ctx, user)
		if err != nil {
			return toolError(fmt.Errorf("verifying user: %w", err))
		}
		if !found {
			return toolError(fmt.Errorf("no public decks found for %q on %s", user, source.Name()))
		}

		profile := deps.Cache.BuildProfile(source, user, req.GetString("name", ""))
		deps.Cache.AddOutput(profile, target, config.ExpandPath(path), req.GetBool("include_maybe", false))
		if err := deps.Store.Save(deps.Cache); err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Added profile for %s on %s writing %s decks to %s.",
			user, source.Name(), target.Name(), path)), nil
	}
}

// --- remove_profile ---

func removeProfileTool() mcp.Tool {
	return mcp.NewTool("remove_profile",
		mcp.WithDescription("Delete profiles for a user. Deck files already written stay on disk."),
		mcp.WithString("user",
			mcp.Description("User whose profiles should be removed"),
			mcp.Required(),
		),
		mcp.WithString("source",
			mcp.Description("Only remove profiles on this source"),
		),
	)
}

func removeProfileHandler(deps *Deps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user := req.GetString("user", "")
		if user == "" {
			return toolError(fmt.Errorf("user is required"))
		}
		sourceFilter := req.GetString("source", "")

		var matched []*cache.Profile
		for _, profile := range deps.Cache.Profiles {
			if !strings.EqualFold(profile.User, user) {
				continue
			}
			if sourceFilter != "" &&
				!strings.EqualFold(profile.Source.Name(), sourceFilter) &&
				!strings.EqualFold(profile.Source.Short(), sourceFilter) {
				continue
			}
			matched = append(matched, profile)
		}
		if len(matched) == 0 {
			return toolError(fmt.Errorf("no profiles found for %q", user))
		}

		var sb strings.Builder
		for _, profile := range matched {
			deps.Cache.RemoveProfile(profile)
			fmt.Fprintf(&sb, "Removed profile for %s.\n", profile.UserString())
		}
		if err := deps.Store.Save(deps.Cache); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("sync",
		mcp.WithDescription("Sync all profiles: download changed decks and rewrite their files."),
		mcp.WithBoolean("latest",
			mcp.Description("Only check each profile's most recently updated deck"),
		),
	)
}

func syncHandler(deps *Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deps.Syncer.SyncAll(ctx, deps.Cache, req.GetBool("latest", false))
		if err := deps.Store.Save(deps.Cache); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Sync complete for %d profile(s).", len(deps.Cache.Profiles))), nil
	}
}
