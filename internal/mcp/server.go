package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"casegen/internal/config"
	"casegen/internal/store"
)

// RunReader is the read side of the run ledger.
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetRun(ctx context.Context, runID string) (*store.Run, error)
	ListCases(ctx context.Context, runID, status string) ([]store.CaseRecord, error)
}

type Server struct {
	cfg    *config.ProjectConfig
	schema *config.Schema
	runs   RunReader
	mcp    *sdk.Server
}

// NewServer exposes the project's inputs and run history as tools. runs may
// be nil when no ledger is configured.
func NewServer(cfg *config.ProjectConfig, schema *config.Schema, runs RunReader, version string) *Server {
	s := &Server{
		cfg:    cfg,
		schema: schema,
		runs:   runs,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "casegen",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
