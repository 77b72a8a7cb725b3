package main

import (
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/de-tools/report-forge/pkg/server"
	"github.com/de-tools/report-forge/pkg/services/config"
	"github.com/de-tools/report-forge/pkg/services/pipeline"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the report generation web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the pipeline configuration file")

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

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	mux := server.ConfigureRouter(server.Config{
		Dependencies: server.Dependencies{
			Runner: pipeline.New(logger, *cfg),
			Logger: logger,
		},
	})

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	addr := net.JoinHostPort(host, port)
	logger.Info().Msgf("starting server on %s", addr)

	return http.ListenAndServe(addr, mux)
}
