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

	"github.com/labstack/echo/v5"
	"github.com/spf13/cobra"

	"github.com/hlsget/hlsget/internal/api"
	"github.com/hlsget/hlsget/internal/app"
	"github.com/hlsget/hlsget/internal/config"
	"github.com/hlsget/hlsget/internal/fetch"
	"github.com/hlsget/hlsget/internal/history"
	"github.com/hlsget/hlsget/internal/job"
	"github.com/hlsget/hlsget/internal/logger"
	"github.com/hlsget/hlsget/internal/pipeline"
	"github.com/hlsget/hlsget/internal/registry"
	"github.com/hlsget/hlsget/internal/scrape"
	"github.com/hlsget/hlsget/internal/storage"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "hlsget",
		Short: "HLS playlist downloader with an async job API",
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")

	rootCmd.AddCommand(serveCmd(), getCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer log.Close()

			dsn := cfg.Store.SQLitePath
			if cfg.Store.Driver == "postgres" {
				dsn = cfg.Store.PostgresDSN
			}
			hist, err := history.Open(cfg.Store.Driver, dsn)
			if err != nil {
				return err
			}
			defer hist.Close()

			jobs := job.NewStore(log)
			reg := registry.New()
			fetcher := fetch.New(cfg.Download.SegmentTimeout)
			pipe := pipeline.New(fetcher, log, cfg.Download.Workers, cfg.Download.OutputName)
			scraper := scrape.New(cfg.Scrape.Timeout, cfg.Scrape.AllowedHosts)
			gateway := storage.NewGateway(log)

			runner := &job.Runner{
				Store:         jobs,
				Pipeline:      pipe,
				Pages:         scraper,
				Storage:       gateway,
				Tokens:        reg,
				History:       hist,
				Log:           log,
				DefaultOutDir: cfg.Download.OutDir,
			}

			appCtx := &app.Context{
				Config:   cfg,
				Logger:   log,
				Jobs:     jobs,
				Runner:   runner,
				Registry: reg,
				Pages:    scraper,
				History:  hist,
			}

			// Graceful shutdown on Ctrl+C / SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sweeper := &job.Sweeper{
				Store:    jobs,
				Tokens:   reg,
				JobTTL:   cfg.Retention.JobTTL,
				TokenTTL: cfg.Retention.TokenTTL,
				Interval: cfg.Retention.SweepInterval,
				Log:      log,
			}
			go sweeper.Run(ctx)

			e := echo.New()
			api.RegisterRoutes(e, appCtx)

			srv := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: e,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("Listening on :%s", cfg.Port)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Info("Shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Warn("Shutdown error: %v", err)
				}
			}

			return nil
		},
	}
}

func getCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "get <playlist-url>",
		Short: "Download and merge one playlist synchronously",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Download.OutDir
			}

			log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer log.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fetcher := fetch.New(cfg.Download.SegmentTimeout)
			pipe := pipeline.New(fetcher, log, cfg.Download.Workers, cfg.Download.OutputName)

			result, err := pipe.Run(ctx, args[0], outDir, func(p pipeline.Progress) {
				fmt.Printf("\rDownloading segments: %d/%d", p.Completed, p.Total)
			})
			fmt.Println()
			if err != nil {
				return err
			}

			fmt.Printf("Done: %d/%d segments merged into %s (%d failed)\n",
				result.Succeeded, result.Total, result.OutputFile, result.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	return cmd
}
