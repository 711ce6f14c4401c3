package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/config"
	"github.com/ironsheep/screenshot-mcp/internal/logging"
	"github.com/ironsheep/screenshot-mcp/internal/screenshot"
	"github.com/ironsheep/screenshot-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("screenshot-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp(os.Stdout)
			return
		case "tools":
			printTools(os.Stdout)
			return
		case "config":
			if err := printConfig(os.Stdout, args[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "screenshot-mcp: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "screenshot-mcp: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "screenshot-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// stdout is for MCP protocol
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Debug("screenshot MCP server starting",
		"version", Version, "built", BuildTime, "commit", GitCommit,
		"config", cfg.Source, "output_dir", cfg.Output.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := screenshot.New(capture.Screen{}, screenshot.OptionsFromConfig(cfg), logger)
	srv := server.New(svc, logger, Version)
	err = srv.Run(ctx)
	// restore default signal handling so a second signal kills the process
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

// loadConfig resolves the config file from --config or SCREENSHOT_MCP_CONFIG,
// then overlays the environment.
func loadConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("screenshot-mcp", flag.ContinueOnError)
	path := fs.String("config", os.Getenv(config.EnvConfigFile), "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "screenshot-mcp - MCP server that captures the screen")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: screenshot-mcp [--config file]")
	fmt.Fprintln(w, "       screenshot-mcp tools | config [--config file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config FILE    YAML configuration file")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tools            List the tools this server exposes")
	fmt.Fprintln(w, "  config           Print the effective configuration")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=FILE          Config file (same as --config)\n", config.EnvConfigFile)
	fmt.Fprintf(w, "  %s=debug      Log level (debug, info, warn, error)\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s=json      Log format (text, json)\n", config.EnvLogFormat)
	fmt.Fprintf(w, "  %s=FILE        Also append logs to FILE\n", config.EnvLogFile)
	fmt.Fprintf(w, "  %s=DIR              Directory for take_screenshot_and_return_path\n", config.EnvOutputDir)
	fmt.Fprintf(w, "  %s=NAME      WSL distribution for take_screenshot_to_wsl\n", config.EnvWSLDistro)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
}

func printTools(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleColoredBright)
	t.AppendHeader(table.Row{"Tool", "Arguments", "Description"})
	for _, tool := range server.GetToolDefinitions() {
		t.AppendRow(table.Row{tool.Name, argumentList(tool), tool.Description})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 60},
	})
	t.Render()
}

// argumentList renders a schema's properties as "name=default" pairs.
func argumentList(tool server.Tool) string {
	props, _ := tool.InputSchema["properties"].(map[string]interface{})
	if len(props) == 0 {
		return "-"
	}

	required := map[string]bool{}
	if req, ok := tool.InputSchema["required"].([]string); ok {
		for _, r := range req {
			required[r] = true
		}
	}

	var parts []string
	for _, name := range []string{"path", "name", "language"} {
		p, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}
		switch {
		case required[name]:
			parts = append(parts, name+" (required)")
		case p["default"] != nil:
			parts = append(parts, fmt.Sprintf("%s=%v", name, p["default"]))
		default:
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "\n")
}

func printConfig(w io.Writer, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# source: %s\n", cfg.Source)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
