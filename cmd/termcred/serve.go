package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dcrodman/termcred/internal/core"
	"github.com/dcrodman/termcred/internal/core/auth"
	"github.com/dcrodman/termcred/internal/core/data"
	"github.com/dcrodman/termcred/internal/core/debug"
	"github.com/dcrodman/termcred/internal/core/metrics"
	"github.com/dcrodman/termcred/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the terminal login verification API",
	RunE:  ServeCommand,
}

func ServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := core.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	if _, err := debug.StartUtilities(cfg, logger); err != nil {
		return err
	}

	db, err := data.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := data.Close(db); err != nil {
			logger.Error(err)
		}
	}()
	if err := data.Migrate(db); err != nil {
		return err
	}

	recorder := metrics.New(cfg, logger)
	defer recorder.Close()

	verifier, err := auth.NewVerifier(cfg, auth.NewStore(db), logger, auth.WithRecorder(recorder))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, verifier, logger).Start(ctx)
}
