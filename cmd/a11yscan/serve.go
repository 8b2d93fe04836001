package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/tools"
)

// serverName is the implementation name announced during MCP initialization.
const serverName = "a11yscan"

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the accessibility tools as an MCP server over stdio",
		Long: `Serve exposes the scanner as Model Context Protocol tools on stdin/stdout:

  scan-url                 scan a live page
  scan-html                scan raw HTML content
  scan-batch               scan up to 20 URLs with one browser
  summarize-violations     group violations by impact and render them
  write-violations-report  write a rendered summary to the results directory

Logs are written to stderr and, when log_file is configured, to that file.

Examples:
  # Register with an MCP client
  a11yscan serve

  # Enable scan history and debug logging
  A11YSCAN_HISTORY=true a11yscan serve -v`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := setupLogger(cfg, slog.LevelInfo)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("cleanup failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, a.service(), cmd.InOrStdin(), cmd.OutOrStdout(), logger.Logger)
}

// serve runs the MCP stdio transport until ctx is cancelled or stdin closes.
func serve(ctx context.Context, svc *tools.Service, in io.Reader, out io.Writer, logger *slog.Logger) error {
	srv := tools.NewServer(serverName, getVersion(), svc)

	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	logger.Info("mcp server listening on stdio", "version", getVersion())
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("mcp server stopped")
	return nil
}
