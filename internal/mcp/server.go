package mcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"opsim/internal/config"
	"opsim/internal/service"
	"opsim/internal/session"
)

// Server exposes the forecasting service as MCP tools. An MCP client is a
// single conversation, so the server keeps one default session for the
// apply-suggestion flow.
type Server struct {
	cfg *config.AppConfig
	svc *service.Service

	mu   sync.Mutex
	sess *session.Session

	server *mcp.Server
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(cfg *config.AppConfig, svc *service.Service, version string) *Server {
	s := &Server{cfg: cfg, svc: svc}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "opsim",
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// session returns the default session, creating it on first use.
func (s *Server) session() (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess != nil {
		return s.sess, nil
	}
	sess, err := s.svc.NewSession()
	if err != nil {
		return nil, err
	}
	s.sess = sess
	return sess, nil
}
