// Package main provides the postnote command, which posts an article to
// note.com through a headless Chromium session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/postnote/pkg/browser"
	"github.com/entrhq/postnote/pkg/config"
	"github.com/entrhq/postnote/pkg/logging"
	"github.com/entrhq/postnote/pkg/note"
	"github.com/entrhq/postnote/pkg/post"
	"github.com/entrhq/postnote/pkg/report"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Title     string
	Body      string
	Image     string
	Tags      string
	Publish   bool
	Headed    bool
	Verbosity string

	ConfigFile  string
	EnvFile     string
	ReportDir   string
	ShowVersion bool
}

func main() {
	os.Exit(realMain())
}

// realMain returns the exit status so deferred cleanup runs before os.Exit.
func realMain() int {
	cli, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cli.ShowVersion {
		fmt.Printf("postnote v%s\n", version)
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return note.ExitCode(run(ctx, cli))
}

// parseFlags parses command line flags. Title and body are required.
func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cli := &CLIConfig{}

	fs := flag.NewFlagSet("postnote", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cli.Title, "title", "", "Article title (required)")
	fs.StringVar(&cli.Title, "t", "", "Shorthand for --title")
	fs.StringVar(&cli.Body, "body", "", "Article body (required)")
	fs.StringVar(&cli.Body, "b", "", "Shorthand for --body")
	fs.StringVar(&cli.Image, "image", "", "Thumbnail image path")
	fs.StringVar(&cli.Image, "i", "", "Shorthand for --image")
	fs.StringVar(&cli.Tags, "tags", "", "Comma-separated hashtags")
	fs.BoolVar(&cli.Publish, "publish", false, "Publish instead of saving a draft")
	fs.BoolVar(&cli.Publish, "p", false, "Shorthand for --publish")

	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&cli.EnvFile, "env-file", ".env", "File with NOTE_EMAIL and NOTE_PASSWORD")
	fs.StringVar(&cli.Verbosity, "verbosity", "", "Console output: quiet, normal, verbose or debug")
	fs.BoolVar(&cli.Headed, "headed", false, "Show the browser window")
	fs.StringVar(&cli.ReportDir, "report-dir", "", "Write run.json and summary.md to this directory")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "postnote - Post articles to note.com\n\n")
		fmt.Fprintf(output, "Usage: postnote --title <title> --body <body> [options]\n\n")
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  # Save a draft\n")
		fmt.Fprintf(output, "  postnote -t \"Hello\" -b \"First post\"\n\n")
		fmt.Fprintf(output, "  # Publish with a thumbnail and tags\n")
		fmt.Fprintf(output, "  postnote -t \"Hello\" -b \"First post\" -i cover.png --tags \"go,note\" -p\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cli.ShowVersion {
		return cli, nil
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cli.Title == "" || cli.Body == "" {
		fs.Usage()
		return nil, fmt.Errorf("--title and --body are required")
	}

	return cli, nil
}

// applyFlags returns cfg with the command-line overrides applied.
func applyFlags(cfg config.Config, cli *CLIConfig) config.Config {
	if cli.Headed {
		cfg.Browser.Headless = false
	}
	if cli.Verbosity != "" {
		cfg.Logging.Verbosity = cli.Verbosity
	}
	if cli.ReportDir != "" {
		cfg.Diagnostics.ReportEnabled = true
		cfg.Diagnostics.ReportDir = cli.ReportDir
	}
	return cfg
}

// run executes one posting run
func run(ctx context.Context, cli *CLIConfig) error {
	loaded, err := config.Load(cli.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	cfg := applyFlags(loaded, cli)

	level, err := logging.ParseLevel(cfg.Logging.Verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	console := logging.NewConsole(level)

	sinks := []logging.Sink{console}
	if cfg.Logging.File {
		fileLog, logErr := logging.NewLogger("postnote")
		if logErr != nil {
			console.Warnf("File logging disabled: %v", logErr)
		} else {
			defer fileLog.Close()
			console.Verbosef("Logging to %s", fileLog.LogPath())
			sinks = append(sinks, fileLog)
		}
	}
	log := logging.Tee(sinks...)

	req, err := post.NewRequest(cli.Title, cli.Body, cli.Image, cli.Tags, cli.Publish)
	if err != nil {
		console.Errorf("%v", err)
		return err
	}

	creds, err := config.LoadCredentials(cli.EnvFile)
	if err != nil {
		console.Errorf("%v", err)
		return err
	}

	console.Header(fmt.Sprintf("postnote v%s: %s (%s)", version, req.Title, req.Mode()))

	console.Step("Launching browser")
	session, err := browser.Launch(cfg.BrowserOptions())
	if err != nil {
		log.Errorf("Failed to launch browser: %v", err)
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.Warnf("Failed to close browser: %v", closeErr)
		}
	}()

	opts := []note.Option{note.WithLogger(log)}
	if path := cfg.Browser.StorageStatePath; path != "" {
		opts = append(opts, note.WithLoginHook(func() error {
			return session.SaveStorageState(path)
		}))
	}
	publisher := note.NewPublisher(cfg, opts...)

	summary := report.NewRunSummary(req, time.Now())

	console.Step("Posting")
	res, runErr := publisher.Run(ctx, session.Page(), creds, req)
	summary.Complete(res, runErr, time.Now())

	if cfg.Diagnostics.ReportEnabled {
		writer := report.NewWriter(cfg.Diagnostics.ReportDir)
		if reportErr := writer.WriteAll(summary); reportErr != nil {
			log.Warnf("Failed to write report: %v", reportErr)
		} else {
			console.Verbosef("Report written to %s", cfg.Diagnostics.ReportDir)
		}
	}

	if runErr != nil {
		var perr *note.PublishError
		if errors.As(runErr, &perr) && perr.InputSync() {
			console.Warnf("The editor did not register the title or body. Run the whole post again.")
		}
		return runErr
	}

	if req.Publish {
		console.Successf("Published %q in %s", req.Title, summary.Duration.Round(time.Second))
	} else {
		console.Successf("Saved draft %q in %s", req.Title, summary.Duration.Round(time.Second))
	}
	return nil
}
