/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// audit.go implements the "bridge audit" command, which lists the recent
// audit entries of the configured site: failed deliveries, protocol
// violations, adapter loads and command invocations.

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/jpl-au/bridge/internal/log"
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		Long: `Show recent audit log entries for the configured site, newest first.

  bridge audit
  bridge audit --limit 50

Entries are kept in ~/.bridge/log/bridge-log.db. Set audit.enabled to
false to stop recording.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}
	c.Flags().Int(FlagLimit, 20, "Maximum number of entries")
	return c
}

func runAudit(c *cobra.Command, _ []string) error {
	limit, _ := c.Flags().GetInt(FlagLimit)

	if !log.Enabled() {
		return PrintJSONError(errors.New("audit log unavailable (see audit.enabled)"))
	}
	entries, err := log.Recent(limit)
	if err != nil {
		return PrintJSONError(fmt.Errorf("audit: %w", err))
	}

	if JSON() {
		return PrintJSON(entries)
	}
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "FAIL " + e.Error
		}
		who := e.Extension
		if e.Generation != "" {
			who += " (" + e.Generation + ")"
		}
		fmt.Fprintf(Out(), "%s  %-28s %-10s %s %s\n",
			time.Unix(e.Start, 0).Format(time.DateTime), e.Source, e.Action, who, status)
	}
	return nil
}
