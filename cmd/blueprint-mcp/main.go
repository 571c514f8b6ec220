package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/blueprint-symbols-mcp/internal/config"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/detection"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/ocr"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/server"
	"github.com/ironsheep/blueprint-symbols-mcp/internal/symbols"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("blueprint-symbols-mcp - MCP server for MEP blueprint symbol refinement")
	fmt.Println()
	fmt.Println("Usage: blueprint-symbols-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>  YAML configuration file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  BLUEPRINT_MCP_CONFIG=<path>          Configuration file (if --config is not given)")
	fmt.Println("  BLUEPRINT_MCP_LOG_LEVEL=debug        Enable debug logging")
	fmt.Println("  BLUEPRINT_MCP_WORKERS=<n>            Concurrent symbol refinements")
	fmt.Println("  BLUEPRINT_MCP_DEFAULT_WIDTH=<px>     Fallback image width")
	fmt.Println("  BLUEPRINT_MCP_DEFAULT_HEIGHT=<px>    Fallback image height")
	fmt.Println("  BLUEPRINT_MCP_OCR_ENABLED=true       Read missing tags with Tesseract")
	fmt.Println("  BLUEPRINT_MCP_OCR_LANGUAGE=eng       Tesseract language")
	fmt.Println("  GEMINI_API_KEY=<key>                 Enables blueprint_analyze")
	fmt.Println("  GEMINI_MODEL=<model>                 Gemini model name")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// parseArgs handles the informational flags and returns the config path.
// It reports false when the process should exit.
func parseArgs(args []string) (string, bool, error) {
	path := os.Getenv(config.EnvConfigPath)
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version" || arg == "-v" || arg == "version":
			fmt.Printf("blueprint-symbols-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return "", false, nil
		case arg == "--help" || arg == "-h" || arg == "help":
			usage()
			return "", false, nil
		case arg == "--config":
			if i+1 >= len(args) {
				return "", false, fmt.Errorf("--config requires a path")
			}
			i++
			path = args[i]
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		default:
			return "", false, fmt.Errorf("unknown argument %q (see --help)", arg)
		}
	}
	return path, true, nil
}

func main() {
	path, run, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if !run {
		return
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Debug() {
		log.Printf("Blueprint MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	logger := log.Default()
	opts := []symbols.Option{
		symbols.WithLogger(logger, cfg.Debug()),
		symbols.WithWorkers(cfg.Workers),
		symbols.WithDefaultMetadata(symbols.ImageMetadata{
			Width:  cfg.DefaultImageWidth,
			Height: cfg.DefaultImageHeight,
		}),
	}
	if cfg.OCREnabled {
		opts = append(opts, symbols.WithLabelReader(ocr.NewLabelReader(cfg.OCRLanguage)))
		if cfg.Debug() {
			log.Printf("Label OCR enabled (%s)", cfg.OCRLanguage)
		}
	}

	srvOpts := []server.Option{
		server.WithPipeline(symbols.NewPipeline(opts...)),
		server.WithVersion(Version),
		server.WithLogger(logger),
	}
	if cfg.GeminiAPIKey != "" {
		srvOpts = append(srvOpts, server.WithDetector(detection.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, logger)))
	} else if cfg.Debug() {
		log.Printf("GEMINI_API_KEY not set; blueprint_analyze is disabled")
	}

	srv := server.New(srvOpts...)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
