// Package mcpserver exposes the tool contracts to external agents over the
// Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/tools"
)

const sessionID = "mcp"

type Server struct {
	mcpServer *mcpserver.MCPServer
	registry  *tools.Registry
	logger    *observability.Logger
}

// NewServer registers every tool of the registry, with its JSON schema, on a
// new MCP server.
func NewServer(name, version string, registry *tools.Registry, logger *observability.Logger) (*Server, error) {
	s := &Server{
		mcpServer: mcpserver.NewMCPServer(name, version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithRecovery(),
		),
		registry: registry,
		logger:   logger,
	}

	for _, t := range registry.List() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			return nil, err
		}
		s.mcpServer.AddTool(
			mcplib.NewToolWithRawSchema(t.Name(), t.Description(), schema),
			s.handler(t.Name()),
		)
	}
	return s, nil
}

func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Serve speaks MCP over the given streams until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.Default())
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		input := "{}"
		if args := req.GetRawArguments(); args != nil {
			data, err := json.Marshal(args)
			if err != nil {
				return mcplib.NewToolResultError("invalid arguments: " + err.Error()), nil
			}
			if string(data) != "null" {
				input = string(data)
			}
		}

		s.logger.LogToolCall(sessionID, "", name, input)
		raw, err := s.registry.Invoke(ctx, name, input)
		if err != nil {
			s.logger.LogToolResult(sessionID, "", name, err.Error())
			return mcplib.NewToolResultError(err.Error()), nil
		}
		s.logger.LogToolResult(sessionID, "", name, raw)

		var env tools.Envelope
		if err := json.Unmarshal([]byte(raw), &env); err == nil && !env.Success {
			return mcplib.NewToolResultError(raw), nil
		}
		return mcplib.NewToolResultText(raw), nil
	}
}
