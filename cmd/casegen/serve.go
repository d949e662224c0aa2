package main

import (
	"context"

	"github.com/spf13/cobra"

	"casegen/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}

	ledger, err := openLedger(ctx, p.cfg)
	if err != nil {
		return err
	}
	var runs mcp.RunReader
	if ledger != nil {
		defer ledger.Close(ctx)
		runs = ledger
	}

	server := mcp.NewServer(p.cfg, p.schema, runs, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
