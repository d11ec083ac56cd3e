// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes verse clock tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/verseclock/internal/clockservice"
)

const tableFormatURI = "verseclock://table-format"

// Server wraps the MCP server with verse clock tools.
type Server struct {
	mcp *server.MCPServer
	svc *clockservice.Service
}

// New creates a new MCP server with all verse clock tools registered.
func New(svc *clockservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Verse Clock",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("current_verse",
		mcp.WithDescription("Get the Bible verse for a clock time. Uses the current local time when no time is given."),
		mcp.WithString("time", mcp.Description("Clock time as HH:MM (24h), e.g. 03:16")),
		mcp.WithString("category", mcp.Description("Optional category: encouragement, faith, love, peace or wisdom")),
	), s.currentVerse)

	s.mcp.AddTool(mcp.NewTool("verse_of_day",
		mcp.WithDescription("Get the verse of the day. The same date always yields the same verse."),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD (defaults to today)")),
	), s.verseOfDay)

	s.mcp.AddTool(mcp.NewTool("search_verses",
		mcp.WithDescription("Search verse text and categories. Returns at most 10 matches."),
		mcp.WithString("term", mcp.Description("Search term; shorter than 2 characters matches nothing")),
	), s.searchVerses)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the verse categories available for filtering."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_devotional",
		mcp.WithDescription("Generate a short Markdown devotional for a verse."),
		mcp.WithString("text", mcp.Description("Full verse text \"<Reference> - <Body>\" (defaults to the displayed verse)")),
	), s.getDevotional)

	s.mcp.AddTool(mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Add a verse to favorites, or remove it if already saved."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full verse text \"<Reference> - <Body>\"")),
		mcp.WithString("reference", mcp.Description("Optional reference; derived from text when omitted")),
	), s.toggleFavorite)

	s.mcp.AddTool(mcp.NewTool("list_favorites",
		mcp.WithDescription("List favorite verses, newest first."),
	), s.listFavorites)

	s.mcp.AddTool(mcp.NewTool("get_table_format",
		mcp.WithDescription("Returns the format of the verse table document."),
	), s.getTableFormat)

	// Resource: verse table format.
	s.mcp.AddResource(
		mcp.NewResource(tableFormatURI, "Verse Table Format",
			mcp.WithResourceDescription("YAML format of the verse table loaded by the clock."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTableFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) currentVerse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := s.svc.CurrentVerse(ctx, req.GetString("time", ""), req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (s *Server) verseOfDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := s.svc.VerseOfDay(ctx, req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (s *Server) searchVerses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hits := s.svc.Search(ctx, req.GetString("term", ""))
	if len(hits) == 0 {
		return mcp.NewToolResultText("no verses found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.svc.Categories(ctx), "\n")), nil
}

func (s *Server) getDevotional(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.svc.Devotional(ctx, req.GetString("text", ""))
	return mcp.NewToolResultText(fmt.Sprintf("# %s\n\n%s", d.Title, d.Content)), nil
}

func (s *Server) toggleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fav, err := s.svc.ToggleFavorite(ctx, text, req.GetString("reference", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if fav {
		return mcp.NewToolResultText("added to favorites"), nil
	}
	return mcp.NewToolResultText("removed from favorites"), nil
}

func (s *Server) listFavorites(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	favs, err := s.svc.ListFavorites(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(favs) == 0 {
		return mcp.NewToolResultText("no favorites yet"), nil
	}
	return jsonResult(favs)
}

func (s *Server) getTableFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TableFormat), nil
}

func (s *Server) readTableFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tableFormatURI,
			MIMEType: "text/markdown",
			Text:     TableFormat,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
