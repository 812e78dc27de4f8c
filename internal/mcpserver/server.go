// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raidho tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raidho/internal/api"
)

// Server wraps the MCP server with Raidho tools.
type Server struct {
	mcp *server.MCPServer
	svc *api.Service
}

// New creates a new MCP server with all Raidho tools registered.
func New(svc *api.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raidho",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_receipts",
		mcp.WithDescription("List ingested receipts, optionally filtered by line item category."),
		mcp.WithString("category", mcp.Description("Optional category filter: education, service or general")),
	), s.listReceipts)

	s.mcp.AddTool(mcp.NewTool("get_receipt",
		mcp.WithDescription("Read one receipt with its line items and extracted schedule details."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Receipt id")),
	), s.getReceipt)

	s.mcp.AddTool(mcp.NewTool("preview_series",
		mcp.WithDescription("Expand a line item's extracted schedule into its dated occurrence series. "+
			"Receipt documents dropped into the inbox MUST follow the canonical format; read the "+
			"raidho://receipt-format resource or the get_receipt_contract tool first."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Line item id")),
	), s.previewSeries)

	s.mcp.AddTool(mcp.NewTool("get_learning_path",
		mcp.WithDescription("Find the chronological chain of course purchases the item belongs to "+
			"(same student and subject across receipts)."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Line item id")),
	), s.getLearningPath)

	s.mcp.AddTool(mcp.NewTool("detect_gaps",
		mcp.WithDescription("Detect continuity gaps in the item's learning path: places where the next "+
			"term starts later than the previous term's cadence predicts."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Line item id")),
		mcp.WithString("tolerance_days", mcp.Description("Allowed slack in days before a gap is reported")),
	), s.detectGaps)

	s.mcp.AddTool(mcp.NewTool("export_event",
		mcp.WithDescription("Materialize the item's calendar events and push them to the configured "+
			"calendar device. Reports a deep link fallback per event when the device is unavailable."),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Line item id")),
	), s.exportEvent)

	s.mcp.AddTool(mcp.NewTool("get_receipt_contract",
		mcp.WithDescription("Returns the canonical extracted receipt document format. "+
			"Call this before writing receipt JSON into the inbox."),
	), s.getReceiptContract)

	// Resource: receipt document contract.
	s.mcp.AddResource(
		mcp.NewResource("raidho://receipt-format", "Receipt Document Contract",
			mcp.WithResourceDescription("Canonical JSON format for extracted receipt documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readReceiptFormatResource,
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

func (s *Server) listReceipts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := ""
	if c, err := req.RequireString("category"); err == nil {
		category = c
	}
	receipts, _, err := s.svc.ListReceipts(ctx, 0, 0, category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(receipts)
}

func (s *Server) getReceipt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.svc.GetReceipt(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(r)
}

func (s *Server) previewSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := req.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	occ, err := s.svc.Occurrences(ctx, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", itemID)), nil
	}
	return jsonResult(occ)
}

func (s *Server) getLearningPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := req.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Chain(ctx, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", itemID)), nil
	}
	if c == nil {
		return mcp.NewToolResultText("item is not part of a learning path"), nil
	}
	return jsonResult(c)
}

func (s *Server) detectGaps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := req.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tolerance := -1
	if raw, err := req.RequireString("tolerance_days"); err == nil {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return mcp.NewToolResultError("tolerance_days must be an integer"), nil
		}
		tolerance = n
	}
	gaps, err := s.svc.Gaps(ctx, itemID, tolerance)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", itemID)), nil
	}
	if len(gaps) == 0 {
		return mcp.NewToolResultText("no gaps detected"), nil
	}
	return jsonResult(gaps)
}

func (s *Server) exportEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := req.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Export(ctx, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", itemID)), nil
	}
	return jsonResult(results)
}

func (s *Server) getReceiptContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ReceiptFormatContract), nil
}

func (s *Server) readReceiptFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raidho://receipt-format",
			MIMEType: "text/markdown",
			Text:     ReceiptFormatContract,
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
