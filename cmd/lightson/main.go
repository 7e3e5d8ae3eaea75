package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"questaroo.app/lightson/internal/adapters/tui"
	"questaroo.app/lightson/internal/app"
	"questaroo.app/lightson/internal/platform/config"
	"questaroo.app/lightson/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}

	var (
		req      usecase.NewGameRequest
		prob     float64
		puzzleID string
		logFile  string
	)
	flag.StringVar(&req.Difficulty, "difficulty", "", "easy|medium|hard (sets the toggle probability)")
	flag.IntVar(&req.Size, "size", cfg.BoardSize, "board size")
	flag.Float64Var(&prob, "p", cfg.ToggleProbability, "per-cell toggle probability (overrides -difficulty)")
	flag.Int64Var(&req.Seed, "seed", 0, "generator seed (0 draws a fresh one)")
	flag.StringVar(&puzzleID, "puzzle", "", "play a saved puzzle from the library instead")
	flag.StringVar(&cfg.Storage, "storage", cfg.Storage, "puzzle library: fs|sqlite")
	flag.StringVar(&cfg.PersistPath, "persist-path", cfg.PersistPath, "save directory for fs storage")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "database file for sqlite storage")
	flag.StringVar(&cfg.Solver, "solver", cfg.Solver, "solver to use: linear|chase")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "write logs here; the terminal is busy drawing the board")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "p" {
			req.Probability = &prob
		}
	})

	out := io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			config.Exitf("open log file: %v", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))

	uc, _, closeStorage, err := app.NewService(cfg, logger)
	if err != nil {
		config.Exitf("setup: %v", err)
	}
	defer closeStorage()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := tui.New(uc, logger)
	t.Request = req
	t.PuzzleID = puzzleID
	if err := t.Run(ctx); err != nil {
		stop()
		config.Exitf("lightson: %v", err)
	}
}
