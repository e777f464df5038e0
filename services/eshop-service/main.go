// Command eshop-service serves the parts catalog and the session carts.
package main

import (
	"fmt"
	"os"

	"github.com/gvbsvv/eshop-cart/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	Version   = "1.0.0"
	BuildTime = "dev"
	appName   = "eshop-service"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	load := func() (config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		return cfg, setupLogging(cfg.Log.Level)
	}

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := load()
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Automobile parts catalog and cart API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  serve,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the configured catalog",
	}
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load the catalog once and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return checkCatalog(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(catalogCmd)

	return cmd
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return nil
}
