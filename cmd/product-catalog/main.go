// Package main is the product catalog command: it serves the HTTP API and
// manages the catalog storage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-catalog-manager/internal/config"
)

var Version = "dev"

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "product-catalog",
		Short:         "Product catalog service and storage tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment variables override it)")

	root.AddCommand(serveCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(listCmd())
	return root
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
