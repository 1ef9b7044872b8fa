package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warriorguo/reteflow/config"
	"github.com/warriorguo/reteflow/server"
	"github.com/warriorguo/reteflow/store"
	"github.com/warriorguo/reteflow/store/mem"
	"github.com/warriorguo/reteflow/store/postgres"
)

var serveFlags struct {
	configPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	Long: `Start the HTTP server the visual builder talks to. The server accepts
workflow documents on /process_workflow, runs them against the
configured input dataset and serves the processed files back.

Configuration comes from a config.yaml next to the process or the path
given with --config, with RETEFLOW_ environment overrides on top.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.configPath, "config", "c", "", "Config file path (default: ./config.yaml)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveFlags.configPath)
	if err != nil {
		return errors.Trace(err)
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil && !rootFlags.verbose {
		log.SetLevel(level)
	}

	st, err := openStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}

	opts := server.NewOptions()
	opts.Host = cfg.Server.Host
	opts.Port = cfg.Server.Port
	opts.StaticDir = cfg.Server.StaticDir
	opts.InputFile = cfg.Server.InputFile
	opts.OutputDir = cfg.Server.OutputDir
	opts.DefaultDataset = cfg.Server.DefaultDataset
	opts.StrictColumns = cfg.Server.StrictColumns
	opts.MaxConcurrentRuns = cfg.Server.MaxConcurrentRuns

	srv := server.New(st, opts)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Trace(err)
		}
	case sig := <-shutdown:
		log.Infof("shutdown signal received: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return errors.Trace(err)
		}
		log.Infof("server stopped")
	}
	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "mem":
		return mem.NewMemStore(), nil
	case "postgres":
		return postgres.NewPostgresStore(&postgres.Config{
			Host:     cfg.Store.Postgres.Host,
			Port:     cfg.Store.Postgres.Port,
			User:     cfg.Store.Postgres.User,
			Password: cfg.Store.Postgres.Password,
			Database: cfg.Store.Postgres.Database,
			SSLMode:  cfg.Store.Postgres.SSLMode,
		})
	}
	return nil, errors.Errorf("unknown store driver %q (supported: mem, postgres)", cfg.Store.Driver)
}
