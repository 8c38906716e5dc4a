package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/NewsLens/internal/api"
	"github.com/IshaanNene/NewsLens/internal/config"
	"github.com/IshaanNene/NewsLens/internal/dashboard"
	"github.com/IshaanNene/NewsLens/internal/engine"
	"github.com/IshaanNene/NewsLens/internal/observability"
	"github.com/IshaanNene/NewsLens/internal/speech"
)

var (
	serveHost string
	servePort int
	serveNoUI bool
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and web UI",
		Long: `Serve the JSON API under /api, the web UI at / and generated audio under
/audio. Old audio files are removed in the background.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&serveNoUI, "no-ui", false, "disable the web UI")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if serveHost != "" {
			c.Server.Host = serveHost
		}
		if servePort > 0 {
			c.Server.Port = servePort
		}
		if serveNoUI {
			c.Server.EnableUI = false
		}
	})
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := observability.NewMetrics(logger)

	eng, err := engine.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()
	eng.SetMetrics(metrics)

	store, err := speech.NewAudioStore(cfg.Speech.AudioDir, logger)
	if err != nil {
		return fmt.Errorf("create audio store: %w", err)
	}
	speaker := speech.NewService(cfg.Speech, store, logger)
	speaker.OnGenerated(func() { metrics.AudioGenerated.Add(1) })

	srv := api.NewServer(cfg, metrics, logger)
	srv.SetAnalyzer(eng)
	srv.SetReportWriter(eng.Analyst())
	srv.SetSpeaker(speaker)
	srv.SetAudioStore(store)
	if cfg.Server.EnableUI {
		dashboard.New(cfg, eng, speaker, logger).Register(srv.Router())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	janitor := speech.NewJanitor(store, cfg.Speech.CleanupInterval, cfg.Speech.MaxAge,
		func(n int) { metrics.AudioCleaned.Add(int64(n)) }, logger)
	go janitor.Run(ctx)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	fmt.Printf("NewsLens listening on http://%s\n", cfg.Server.Addr())

	<-ctx.Done()
	logger.Info("received signal, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}
	metrics.LogSummary()
	return nil
}
