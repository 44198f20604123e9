// Package main provides the CLI entry point for veteran-bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/apodervinskas/Veteran-TestBot/internal/app"
	"github.com/apodervinskas/Veteran-TestBot/internal/config"
	"github.com/apodervinskas/Veteran-TestBot/internal/menu"
	"github.com/apodervinskas/Veteran-TestBot/pkg/filesystem"
	"github.com/apodervinskas/Veteran-TestBot/pkg/preview"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// CLI structure
var CLI struct {
	Config  string `help:"Configuration file path (default: config.yaml if present)" type:"path"`
	EnvFile string `help:"Dotenv file path (default: .env if present)" name:"env-file" type:"path"`
	Debug   bool   `help:"Enable debug logging" default:"false"`

	Serve struct{} `cmd:"" default:"1" help:"Run the Telegram bot (default)."`

	Preview struct {
		Source string `arg:"" help:"Source name, see the sources command."`
		Plain  bool   `help:"Print the rendered chat message instead of starting the TUI"`
		Output string `help:"Write the rendered chat message to a file" short:"o" type:"path"`
	} `cmd:"" help:"Fetch one source and preview it."`

	Sources struct{} `cmd:"" help:"List the configured sources."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("veteran-bot"),
		kong.Description("Telegram bot for the veterans affairs office."),
		kong.UsageOnError(),
	)

	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(config.Options{ConfigPath: CLI.Config, EnvFile: CLI.EnvFile})
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "serve":
		setLogLevel(slog.LevelInfo)
		serve(cfg)

	case "preview <source>":
		setLogLevel(slog.LevelWarn)
		previewSource(cfg, CLI.Preview.Source, CLI.Preview.Plain, CLI.Preview.Output)

	case "sources":
		setLogLevel(slog.LevelWarn)
		listSources(cfg)

	default:
		panic(ctx.Command())
	}
}

// setLogLevel applies level unless debug logging was requested
func setLogLevel(level slog.Level) {
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		return
	}
	slog.SetLogLoggerLevel(level)
}

// serve runs the bot until interrupted
func serve(cfg *config.Config) {
	// Abort before any network client exists
	if err := cfg.Validate(true); err != nil {
		if errors.Is(err, config.ErrMissingBotToken) {
			slog.Error("Bot token missing, set TELEGRAM_TOKEN in the environment or .env")
		} else {
			slog.Error("Invalid configuration", "error", err)
		}
		os.Exit(1)
	}

	app.New(cfg).Run()
}

// buildSources validates cfg and creates the named sources
func buildSources(cfg *config.Config) *providers.Set {
	if err := cfg.Validate(false); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	set, err := app.BuildSources(cfg)
	if err != nil {
		slog.Error("Failed to create sources", "error", err)
		os.Exit(1)
	}
	return set
}

// previewSource fetches one source and shows the message the bot would send
func previewSource(cfg *config.Config, name string, plain bool, output string) {
	slog.Debug("Previewing source", "source", name)

	set := buildSources(cfg)
	src, ok := set.Get(name)
	if !ok {
		slog.Error("Unknown source", "source", name, "available", sourceNames(set))
		os.Exit(1)
	}

	content, err := menu.DefaultContent()
	if err != nil {
		slog.Error("Failed to load menu", "error", err)
		os.Exit(1)
	}

	meta := src.Metadata()
	header, ok := content.SourceHeader(name)
	if !ok {
		header = "<b>" + meta.Title + "</b>"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result := src.Fetch(ctx)
	message := menu.Render(header, result)

	if output != "" {
		if err := filesystem.EnsureDirectoryExists(output); err != nil {
			slog.Error("Failed to create output directory", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(output, []byte(message+"\n"), 0o644); err != nil {
			slog.Error("Failed to write output", "path", output, "error", err)
			os.Exit(1)
		}
		slog.Info("Wrote rendered message", "path", output)
	}

	if plain {
		fmt.Print(preview.FormatSource(meta, result))
		fmt.Print(preview.FormatMessage(message))
		return
	}

	if err := preview.Run(meta, result, message); err != nil {
		slog.Error("Preview failed", "error", err)
		os.Exit(1)
	}
}

// listSources prints every configured source
func listSources(cfg *config.Config) {
	set := buildSources(cfg)

	all := set.All()
	metas := make([]providers.SourceMetadata, 0, len(all))
	for _, src := range all {
		metas = append(metas, src.Metadata())
	}
	fmt.Print(preview.FormatSourceList(metas))
}

func sourceNames(set *providers.Set) []string {
	var names []string
	for _, src := range set.All() {
		names = append(names, src.Metadata().Name)
	}
	return names
}
