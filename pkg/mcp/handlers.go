package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/modpeek/pkg/surface"
)

const defaultDepth = 2

func (s *Server) handleExploreModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	moduleSpec, err := req.RequireString("module")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	depth := req.GetInt("depth", defaultDepth)
	format := req.GetString("format", "json")

	record, err := s.service.Tree(ctx, moduleSpec, depth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	displayName := moduleSpec
	if spec, perr := surface.ParseSpec(moduleSpec); perr == nil {
		displayName = spec.ModulePath
	}

	if format == "pretty" {
		return mcp.NewToolResultText(s.pretty.Tree(record, displayName)), nil
	}
	out, err := s.json.Tree(record, displayName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleGetSignature(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := req.GetString("format", "json")

	sig, err := s.service.Signature(ctx, target)
	if err != nil {
		// A symbol miss is a valid answer, not a tool failure.
		var miss *surface.SymbolNotFound
		if errors.As(err, &miss) {
			return s.signatureNotAvailable(miss.Symbol, format)
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	if format == "pretty" {
		return mcp.NewToolResultText(s.pretty.Signature(sig)), nil
	}
	out, err := s.json.Signature(sig)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) signatureNotAvailable(objectName, format string) (*mcp.CallToolResult, error) {
	if format == "pretty" {
		return mcp.NewToolResultText(s.pretty.SignatureNotAvailable(objectName)), nil
	}
	out, err := s.json.SignatureNotAvailable(objectName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.TrimSpace(out)), nil
}
