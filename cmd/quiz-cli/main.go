package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"memory-quiz/internal/cli"
	"memory-quiz/internal/config"
	"memory-quiz/internal/fqz"
	"memory-quiz/internal/imagenorm"
	"memory-quiz/internal/quiz"
	"memory-quiz/internal/quiz/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	// glog registers its flags on flag.CommandLine, so parse ours alongside them.
	cfg, err := config.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	store, err := sqlite.NewSQLiteStore(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	images := imagenorm.NewClient(&http.Client{Timeout: cfg.FetchTimeout})
	svc := quiz.NewService(store, store, fqz.NewCodec(images, cfg.ImportWorkers))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := svc.Load(ctx); err != nil {
		return err
	}

	err = cli.Run(ctx, os.Stdin, os.Stdout, svc, cli.Config{
		TimeLimitSeconds: cfg.TimeLimitSeconds(),
		RevealDelay:      cfg.RevealDelay,
		DeckFile:         cfg.DeckFile,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
