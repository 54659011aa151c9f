package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/lane-tools-mcp/internal/config"
	"github.com/ironsheep/lane-tools-mcp/internal/logging"
	"github.com/ironsheep/lane-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("lane-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("lane-tools-mcp - MCP server for lane detection and steering")
			fmt.Println()
			fmt.Println("Usage: lane-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  LANE_MCP_CONFIG=/path/config.yaml   Config file (JSON, YAML or TOML)")
			fmt.Println("  LANE_MCP_LOG_LEVEL=debug            Log level (trace..error, off)")
			fmt.Println("  LANE_MCP_LOG_FILE=/path/lane.log    Also log to a file")
			fmt.Println("  LANE_MCP_LOG_FORMAT=json            console (default) or json")
			fmt.Println("  LANE_MCP_<SECTION>_<KEY>=value      Override any config key,")
			fmt.Println("                                      e.g. LANE_MCP_LANE_MULTI_LANE=true")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lane-tools-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG"))
	if err != nil {
		return err
	}

	// stdout is reserved for the MCP protocol
	var logFile io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logFile = f
	}
	var logger zerolog.Logger
	if cfg.LogFormat == "json" {
		out := io.Writer(os.Stderr)
		if logFile != nil {
			out = zerolog.MultiLevelWriter(os.Stderr, logFile)
		}
		logger = logging.NewJSON(out, cfg.LogLevel)
	} else {
		logger = logging.New(os.Stderr, logFile, cfg.LogLevel)
	}

	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Int("workers", cfg.Workers).
		Msg("starting lane-tools-mcp")

	server.Version = Version
	srv, err := server.New(*cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.WithLevel(zerolog.FatalLevel).Err(err).Msg("server error")
		return err
	}
	return nil
}
