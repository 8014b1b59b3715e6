// cmd/arena/main.go
//
// Entry point for the arena tournament CLI.
//
// Usage:
//
//	arena --config <config.{json,yaml}> [--tui]
//	arena <tournament_folder> <maps> <AIs> [bot_folder] [options] [--tui]
//
// Examples:
//
//	arena --config tournament_config.json
//	arena tournament_1 maps/bases8x8.xml WorkerRush,LightRush
//	arena tournament_1 maps/bases8x8.xml WorkerRush,LightRush bots/ --iterations=10 --maxGameLength=5000

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/arenalab/arena/internal/config"
	"github.com/arenalab/arena/internal/diag"
	"github.com/arenalab/arena/internal/match"
	"github.com/arenalab/arena/internal/tournament"
	"github.com/arenalab/arena/internal/tui"
)

func main() {
	_ = godotenv.Load()

	args, useTUI := extractFlag(os.Args[1:], "--tui")
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL ERROR: %v\n", err)
		os.Exit(1)
	}
	applyEnvDefaults(&cfg)

	// Under the TUI the terminal belongs to bubbletea, so the console
	// banner and phase chatter are suppressed rather than interleaved.
	var channel *diag.Channel
	if useTUI {
		channel = diag.NewChannel(io.Discard, io.Discard)
	} else {
		channel = diag.NewChannel(os.Stdout, os.Stderr)
	}
	runner := &tournament.RoundRobin{Engine: match.Scripted{}, Diag: channel}
	pipeline := &tournament.Pipeline{
		Config: cfg,
		Diag:   channel,
		Runner: runner,
	}

	if useTUI {
		if err := runWithTUI(pipeline); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL ERROR: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := pipeline.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL ERROR: %v\n", err)
		os.Exit(1)
	}
}

// runWithTUI executes the pipeline in a goroutine while the live progress
// view owns the terminal. Progress reports flow through the channel
// reporter instead of plain console lines.
func runWithTUI(pipeline *tournament.Pipeline) error {
	updates := make(chan tea.Msg, 16)
	pipeline.Reporter = tui.ChannelReporter{Updates: updates}

	go func() {
		err := pipeline.Run(context.Background())
		updates <- tui.DoneMsg{Err: err}
	}()

	program := tea.NewProgram(tui.New(updates))
	final, err := program.Run()
	if err != nil {
		return err
	}
	if model, ok := final.(tui.Model); ok && model.Err() != nil {
		return model.Err()
	}
	return nil
}

func loadConfig(args []string) (config.Tournament, error) {
	if args[0] == "--config" {
		if len(args) < 2 {
			return config.Tournament{}, &config.ConfigurationError{Reason: "--config requires a file path"}
		}
		return config.LoadFile(args[1])
	}
	return config.ParseArgs(args)
}

// applyEnvDefaults fills optional settings from the environment (or a
// .env file) when the config left them unset.
func applyEnvDefaults(cfg *config.Tournament) {
	if cfg.BotSourceFolder == "" {
		cfg.BotSourceFolder = os.Getenv("ARENA_BOT_FOLDER")
	}
	if !cfg.SaveDatabase && os.Getenv("ARENA_SAVE_DATABASE") == "1" {
		cfg.SaveDatabase = true
	}
}

func extractFlag(args []string, flag string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, arg := range args {
		if arg == flag {
			found = true
			continue
		}
		out = append(out, arg)
	}
	return out, found
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  arena --config <config.{json,yaml}> [--tui]")
	fmt.Fprintln(os.Stderr, "  arena <folder> <maps> <AIs> [bot_folder] [options] [--tui]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  arena --config tournament_example.json")
	fmt.Fprintln(os.Stderr, "  arena tournament_1 maps/bases8x8.xml WorkerRush,LightRush --iterations=10")
}
