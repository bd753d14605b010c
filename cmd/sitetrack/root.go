package main

import (
	"github.com/spf13/cobra"

	"github.com/buildmind/sitetrack/internal/config"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "sitetrack",
		Short:         "SiteTrack construction project management backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("sitetrack {{.Version}} (commit " + commit + ", built " + buildDate + ")\n")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (SITETRACK_* env vars when omitted)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newDispatchCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newSweepCmd(&configPath))
	return root
}

// loadConfig reads the file named by --config, or falls back to pure
// environment configuration when the flag is unset.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.LoadFromEnv()
	}
	return config.Load(configPath)
}
