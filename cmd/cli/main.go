package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/api"
	"github.com/spf13/cobra"
)

type contextKey string

const configKey contextKey = "config"

var (
	configPath string
	serverURL  string
	retries    int
)

var rootCmd = &cobra.Command{
	Use:   "rugby-backend",
	Short: "Rugby Backend - sensor ingestion and match review server",
	Long: `Rugby Backend ingests shock and environment readings from wheelchair sensors,
merges them into per-sensor timelines, relays the arena camera and keeps every
dashboard screen on the same viewing mode.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL for client commands (default http://localhost:<server.port>)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "retry client commands this many times on connection errors and 5xx responses")
}

// configFrom returns the configuration loaded by the root command
func configFrom(cmd *cobra.Command) *Config {
	return cmd.Context().Value(configKey).(*Config)
}

// apiClient builds a client for the running server
func apiClient(cmd *cobra.Command) *api.Client {
	url := serverURL
	if url == "" {
		url = "http://localhost:" + configFrom(cmd).Server.Port
	}
	return newAPIClient(url, retries)
}

func newAPIClient(url string, retries int) *api.Client {
	var opts []api.ClientOption
	if retries > 0 {
		opts = append(opts, api.WithRetries(retries))
	}
	return api.NewClient(url, opts...)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
