package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/modpeek/pkg/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve exploration tools over MCP on stdio",
	Long:  "Starts a Model Context Protocol server exposing explore_module and get_signature, so agent frontends can inspect Python APIs.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.close()

	server := mcp.NewServer(stack.service, displayConfig(), stack.logger)
	stack.logger.Info("starting MCP server on stdio")
	return server.ServeStdio()
}
