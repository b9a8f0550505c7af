// Package main is the quotebench CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/quotebench/internal/cli"
	"github.com/hyperjump/quotebench/internal/config"
	"github.com/hyperjump/quotebench/internal/extract"
	"github.com/hyperjump/quotebench/internal/models"
	"github.com/hyperjump/quotebench/internal/pipeline"
	"github.com/hyperjump/quotebench/internal/results"
	"github.com/hyperjump/quotebench/internal/server"
	"github.com/hyperjump/quotebench/internal/staging"
	"github.com/hyperjump/quotebench/internal/summarize"
	"github.com/hyperjump/quotebench/internal/watcher"
	"github.com/hyperjump/quotebench/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/quotebench/config.yaml"

// loadConfig loads .env and the config file. When path is the default, a
// config.yaml in the current directory wins (for development); when neither
// exists, defaults and the environment are used.
// Returns the config and the path that was actually loaded ("" when none).
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
		if _, statErr := os.Stat(path); statErr != nil {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "summarize":
		runSummarize()
	case "watch":
		runWatch()
	case "config":
		runConfig()
	case "version", "--version", "-v":
		fmt.Printf("quotebench version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds the wired summarization stack.
type Components struct {
	Pipeline *pipeline.Pipeline
	Results  *results.Store
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	remote := summarize.NewOpenAISummarizer(summarize.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	}, logger)
	registry := summarize.NewRegistry(summarize.NewOffline(), remote)

	area, err := staging.NewArea(cfg.Staging.Dir)
	if err != nil {
		return nil, err
	}
	return &Components{
		Pipeline: pipeline.New(area, extract.NewExtractor(), registry, logger),
		Results:  results.NewStore(cfg.Results.MaxEntries, cfg.Results.TTL),
	}, nil
}

// setup loads config and builds the logger and components, exiting on failure.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.Bool("openai_key_set", cfg.OpenAI.APIKey != ""),
	)
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, extraction previews, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()

	srv := server.NewServer(components.Pipeline, components.Results, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSummarize() {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	modeFlag := fs.String("mode", models.ModeRemote.String(), "summary mode: remote (OpenAI) or offline (canned summary)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	outFile := fs.String("o", "", "also write the summary text to this file")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: quotebench summarize [flags] <file>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	mode, err := models.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_, logger, components := setup(*configPath, *debug)
	defer logger.Sync()

	summary, err := components.Pipeline.ProcessFile(context.Background(), fs.Arg(0), mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Summarize failed: %v\n", err)
		os.Exit(1)
	}
	if *outFile != "" {
		if err := cli.WriteSummaryFile(*outFile, summary); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSummary(os.Stdout, summary, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	modeFlag := fs.String("mode", "", "summary mode: remote or offline (default from config)")
	debug := fs.Bool("debug", false, "enable debug logging (watch events, etc.)")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()

	rawMode := cfg.Watch.Mode
	if *modeFlag != "" {
		rawMode = *modeFlag
	}
	mode, err := models.ParseMode(rawMode)
	if err != nil {
		logger.Fatal("Invalid watch mode", zap.Error(err))
	}
	dirs := cfg.Watch.Directories
	if fs.NArg() > 0 {
		dirs = nil
		for _, d := range fs.Args() {
			abs, err := filepath.Abs(d)
			if err != nil {
				logger.Fatal("Invalid directory", zap.String("path", d), zap.Error(err))
			}
			dirs = append(dirs, abs)
		}
	}
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "No directories to watch; pass them as arguments or set watch.directories")
		os.Exit(1)
	}
	outputDir := cfg.Watch.OutputDir
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			logger.Fatal("Failed to create output directory", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	onQuote := func(path string) {
		dest := cli.SummaryPath(path, outputDir)
		if cli.SummaryUpToDate(path, dest) {
			logger.Debug("summary up to date, skipping", zap.String("source", path))
			return
		}
		summary, err := components.Pipeline.ProcessFile(ctx, path, mode)
		if err != nil {
			logger.Warn("watch summarize failed", zap.String("path", path), zap.Error(err))
			return
		}
		if err := cli.WriteSummaryFile(dest, summary); err != nil {
			logger.Warn("watch write summary failed", zap.String("path", dest), zap.Error(err))
			return
		}
		logger.Info("summary written", zap.String("source", path), zap.String("summary", dest))
	}

	watchOpts := []watcher.Option{}
	if cfg.Debug || *debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	inbox := watcher.NewInbox(dirs, extract.SupportedExtensions, cfg.Watch.RecursiveOrDefault(), onQuote, watchOpts...)
	if err := inbox.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	logger.Info("watching for quotes", zap.Strings("directories", dirs), zap.String("mode", mode.String()))
	inbox.SyncExistingFiles()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	inbox.Stop()
}

func runConfig() {
	if len(os.Args) < 3 || os.Args[2] != "init" {
		fmt.Println("Usage: quotebench config init [-config path] [-force]")
		os.Exit(1)
	}
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path to write")
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(os.Args[3:])

	if _, err := config.WriteDefault(*configPath, *force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintf(os.Stderr, "%v (use -force to overwrite)\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *configPath)
	fmt.Println("Set OPENAI_API_KEY in the environment or a .env file for remote summaries.")
}

func printUsage() {
	fmt.Println(`quotebench - Contractor quote benchmarking summaries

Usage:
  quotebench server [flags]               Start the web UI and HTTP API
  quotebench summarize [flags] <file>     Summarize one quote file
  quotebench watch [flags] [dir...]       Summarize quotes dropped into directories
  quotebench config init [flags]          Write a config file holding the defaults
  quotebench version                      Show version
  quotebench help                         Show this help

Supported files: .pdf, .docx, .xlsx, .html

Server Flags:
  --config string    Config file path (default: /usr/local/etc/quotebench/config.yaml)
  --debug            Enable debug logging

Summarize Flags:
  --config string    Config file path
  --mode string      remote (OpenAI, needs OPENAI_API_KEY) or offline (default: remote)
  --output string    Output format: text or json (default: text)
  --o string         Also write the summary text to this file

Watch Flags:
  --config string    Config file path
  --mode string      remote or offline (default: watch.mode from config)
  --debug            Enable debug logging

Config Init Flags:
  --config string    Path to write (default: /usr/local/etc/quotebench/config.yaml)
  --force            Overwrite an existing file

Examples:
  quotebench server
  quotebench summarize --mode offline quote.pdf
  quotebench summarize --output json quote.docx
  quotebench summarize quote.xlsx -o benchmarking_summary.txt
  quotebench watch ~/quotes/inbox
  quotebench config init -config ./config.yaml`)
}
