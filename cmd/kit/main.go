package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/kitprompt/internal/catalog"
	"github.com/GriffinCanCode/kitprompt/internal/docs"
	"github.com/GriffinCanCode/kitprompt/internal/domain/kit"
	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/config"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/logging"
	"github.com/GriffinCanCode/kitprompt/internal/transport/stdio"
	"github.com/GriffinCanCode/kitprompt/internal/transport/wire"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadOrDefault()

	dir := flag.String("prompts", cfg.Prompt.Dir, "Prompt catalog directory")
	docsPath := flag.String("docs", cfg.Docs.Path, "Path to docs.json")
	level := flag.String("log-level", cfg.Logging.Level, "Log level (logs go to stderr)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <prompt> [args...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}
	name := flag.Arg(0)

	logger, err := logging.New(logging.Config{
		Level:       *level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
		Name:        "kit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	var store *docs.Store
	if *docsPath != "" {
		if store, err = docs.Load(*docsPath, logger.Logger); err != nil {
			logger.Warn("Failed to load docs", zap.Error(err))
		}
	}

	cat := catalog.New(catalog.Config{
		Dir:           *dir,
		ScriptTimeout: cfg.Prompt.ScriptTimeout,
		KitMode:       cfg.Prompt.KitMode,
	}, store, logger.Logger)
	if err := cat.Scan(); err != nil {
		logger.Error("Failed to load prompts", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := stdio.New(os.Stdin, os.Stdout, logger.Logger, nil)
	defer conn.Close()

	k := kit.New(conn.Renderer(), conn, logger.Logger, nil)
	k.SetScript(name, "")
	k.SetPreviewDebounce(cfg.Prompt.PreviewDebounce)
	k.UpdateArgs(flag.Args()[1:])

	value, err := cat.Run(ctx, name, k)
	if sendErr := conn.Send(wire.Settled(value, err)); sendErr != nil {
		logger.Error("Failed to write result", zap.Error(sendErr))
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, prompt.ErrBlurred):
		logger.Info("Prompt dismissed")
		return 130
	default:
		logger.Error("Prompt failed", zap.Error(err))
		return 1
	}
}
