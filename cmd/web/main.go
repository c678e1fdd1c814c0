package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arclabs561/runctl/pkg/server"
	"github.com/arclabs561/runctl/pkg/services/cleanup"
	"github.com/arclabs561/runctl/pkg/services/config"
	"github.com/arclabs561/runctl/pkg/services/monitor"
	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/arclabs561/runctl/pkg/services/provider/aws"
	"github.com/arclabs561/runctl/pkg/services/provider/runpod"
	"github.com/arclabs561/runctl/pkg/services/tracker"
)

var (
	cfgPath      string
	syncInterval time.Duration
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the runctl fleet web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "runctl.yaml",
		"Path to the runctl profile")
	rootCmd.Flags().DurationVar(&syncInterval, "sync-interval", 30*time.Second,
		"How often to refresh the fleet from the provider")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	profile, err := config.LoadProfile(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	registry := provider.NewRegistry(map[string]provider.Factory{
		"aws":    aws.Factory,
		"runpod": runpod.Factory,
	})

	prov, err := registry.Create(ctx, profile.Provider, cfgPath)
	if err != nil {
		return fmt.Errorf("failed to create provider %q: %w", profile.Provider, err)
	}

	tr := tracker.New()
	safety := cleanup.WithMinAge(profile.MinAge())

	mon := monitor.New(prov, tr)
	go func() {
		if err := mon.Run(ctx, syncInterval); err != nil {
			logger.Info().Err(err).Msg("fleet sync loop stopped")
		}
	}()

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	logger.Info().
		Str("provider", profile.Provider).
		Str("addr", addr).
		Msg("starting fleet server")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Tracker: tr,
			Safety:  safety,
		},
	})
	return api.Start()
}
