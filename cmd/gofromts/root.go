package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmkn/gofromts"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to docsite.{yaml,toml,json}")
}

var rootCmd = &cobra.Command{
	Use:               "gofromts",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "gofromts serves a markdown documentation site",
	SilenceUsage:      true,
	RunE:              runServe,
}

func newApp() (*gofromts.App, error) {
	cfg, err := gofromts.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return gofromts.New(cfg), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Log.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Setup(ctx); err != nil {
		_ = app.Close()
		return err
	}

	errc := make(chan error, 1)
	go func() {
		errc <- app.Start(ctx)
	}()

	select {
	case err := <-errc:
		_ = app.Close()
		return err
	case <-ctx.Done():
	}

	app.Log.Info("stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
