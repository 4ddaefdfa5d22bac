/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// commands.go handles command registration and shared settings loading.
//
// Separated from root.go to keep the command list in one place.
//
// Design: Settings are loaded once per process and shared by every
// command that reads them. The config command loads its own copy because
// --local changes which file it works on.

package cmd

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jpl-au/bridge/extension"
	"github.com/jpl-au/bridge/internal/config"
	"github.com/spf13/cobra"
)

var (
	settings     *config.Config
	settingsOnce sync.Once
	settingsErr  error
)

// Settings returns the tool settings: local if they exist, otherwise
// global.
func Settings() (*config.Config, error) {
	settingsOnce.Do(func() {
		settings, settingsErr = config.Load()
	})
	return settings, settingsErr
}

// site returns the host description of the configured site and its merged
// configuration. A site whose files cannot be read is described with
// defaults and a warning on stderr, so inspection still works outside a
// site.
func site() (extension.Site, *config.SiteConfig) {
	cfg, err := Settings()
	if err != nil {
		slog.Warn("settings unavailable, using defaults", "error", err)
		return (&config.Config{}).HostSite(nil), nil
	}
	s, sc, err := cfg.LoadSite()
	if err != nil {
		slog.Warn("site config unavailable, using defaults", "root", cfg.RootDir(), "error", err)
		return cfg.HostSite(nil), nil
	}
	return s, sc
}

// logger is the runtime logger handed to dispatchers. Failed deliveries
// are warnings; stdout stays clean for command output.
func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func commands() []*cobra.Command {
	return []*cobra.Command{
		newEventsCmd(),
		newChainCmd(),
		newTraceCmd(),
		newConfigCmd(),
		newSiteConfigCmd(),
		newAuditCmd(),
		newGuideCmd(),
		newServeCmd(),
		newVersionCmd(),
	}
}

var commandsOnce sync.Once

// registerCommands adds every command to the root command.
// Called once before Execute runs.
func registerCommands() {
	commandsOnce.Do(func() {
		rootCmd.AddCommand(commands()...)
	})
}
