/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Separated from commands.go to isolate cobra setup from command
// registration and settings loading.
//
// Design: Nothing here touches a site. Settings are loaded on first use by
// the commands that need them, so "bridge guide" and "bridge version" work
// in any directory, even one with a malformed config file.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jpl-au/bridge/internal/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run extensions of every API generation against the native host",
	Long: `Translates the host's native lifecycle events into the event names and
parameter shapes of older extension API generations, and inspects how a
dispatch is delivered.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}
		return nil
	},
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging unless the settings disable it, registers commands
// and executes. Exit code 1 indicates error.
func Execute() {
	openAudit()
	defer log.Close()

	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openAudit opens the audit log for the configured site. A settings file
// that cannot be read leaves auditing on; the command reports the error.
func openAudit() {
	root := "."
	if cfg, err := Settings(); err == nil {
		if !cfg.AuditEnabled() {
			return
		}
		root = cfg.RootDir()
	}

	// Warn if it fails, but continue
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
		return
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	log.SetProject(root)
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
