package main

import (
	"context"

	"github.com/spf13/cobra"

	"linkguard/cmd/linkguard/scan"
	"linkguard/cmd/linkguard/server"
	"linkguard/internal/config"
	"linkguard/pkg/logger"
)

type rootOpts struct {
	configFile string
	verbose    bool
}

// load reads the configuration and installs the process-wide logger.
func (o *rootOpts) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	}
	logger.SetDefault(logger.NewLoggerWithOptions(logger.Options{
		Level:      level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}))
	return cfg, nil
}

func Execute() error {
	opts := &rootOpts{}

	var rootCmd = &cobra.Command{
		Use:   "linkguard",
		Short: "Check links and remote endpoints against the LinkGuard scan backend",
		Long: `LinkGuard submits a URL, ftp:// or ssh:// target, or a curl command to the scan
backend and renders the verdict, risk score and per-protocol details.`,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file (default: ./config/linkguard.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(scan.NewScanCommand(opts.load))
	rootCmd.AddCommand(scan.NewListHooksCommand())
	rootCmd.AddCommand(server.NewServerCommand(opts.load))
	return rootCmd.ExecuteContext(context.Background())
}
