package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leetcode_leaderboard/internal/app"
	"leetcode_leaderboard/internal/dashboard"
	"leetcode_leaderboard/internal/refresh"
	"leetcode_leaderboard/internal/server"
	"leetcode_leaderboard/internal/snapshot"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "leaderboard",
		Short:         "LeetCode leaderboard for a class roster",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.SetupEnvironment()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCommand(), newRefreshCommand(), newExportCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh on a schedule and serve the leaderboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg := app.LoadConfig()
			return newCycle(ctx, cfg).Run(ctx)
		},
	}
}

func newExportCommand() *cobra.Command {
	var section, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current snapshot as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()
			return runExport(cfg.SnapshotPath, section, out)
		},
	}

	cmd.Flags().StringVar(&section, "section", dashboard.AllSections, "section to export, or \"all\"")
	cmd.Flags().StringVar(&out, "out", "", "output file (defaults to the dashboard download name)")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg := app.LoadConfig()

	schedulerCtx, schedulerCancel := context.WithCancel(parent)
	defer schedulerCancel()

	scheduler := refresh.NewScheduler(newCycle(schedulerCtx, cfg), cfg.RefreshInterval)
	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Start(schedulerCtx)
		close(schedulerDone)
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(cfg.SnapshotPath, cfg.ProfilePrefix),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("could not listen on %s: %w", cfg.Port, err)
		}
	}()

	var runErr error
	select {
	case <-stop:
		log.Info().Msg("Shutting down server...")
	case runErr = <-serveErr:
	}

	schedulerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-schedulerDone

	if runErr == nil {
		log.Info().Msg("Server and scheduler stopped gracefully.")
	}
	return runErr
}

func runExport(snapshotPath, section, out string) error {
	records, err := snapshot.Read(snapshotPath)
	if err != nil {
		return err
	}

	state := dashboard.Reduce(dashboard.NewViewState(), dashboard.SelectSection{Section: section})
	if out == "" {
		out = dashboard.ExportFilename(state.Section)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}

	if err := dashboard.WriteCSV(f, state.Rows(records)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	log.Info().Str("out", out).Str("section", state.Section).Msg("Exported leaderboard")
	return nil
}
