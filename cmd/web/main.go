package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/qtherapy/report-engine/pkg/render"
	"github.com/qtherapy/report-engine/pkg/server"
	"github.com/qtherapy/report-engine/pkg/server/middleware"
	"github.com/qtherapy/report-engine/pkg/services/config"
	"github.com/qtherapy/report-engine/pkg/services/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "Start the quantum therapy report server",
		RunE:  runServer,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateAuth(); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	chromeOpts := render.DefaultChromeOptions()
	chromeOpts.ExecPath = cfg.ChromePath
	engine := render.NewChromeEngine(chromeOpts)

	driver := render.NewDriver(engine, render.Options{
		ChartLibraryTimeout: cfg.ChartLibraryTimeout,
		ChartTimeout:        cfg.ChartTimeout,
		PollInterval:        cfg.PollInterval,
		SettleDelay:         cfg.SettleDelay,
	})

	generator := report.NewGenerator(driver, report.Options{
		ChartJSURL:    cfg.ChartJSURL,
		GlobalTimeout: cfg.GlobalTimeout,
	})

	authMiddleware := middleware.Auth([]byte(cfg.JWTSecret))
	if cfg.AuthMode == config.AuthModeDev {
		logger.Warn().Msg("AUTH_MODE=dev, report endpoint is unauthenticated")
		authMiddleware = middleware.DevAuth()
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            ":" + cfg.Port,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Generator:      generator,
			AuthMiddleware: authMiddleware,
		},
	})

	logger.Info().Str("port", cfg.Port).Msg("report engine ready")
	if err := api.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
