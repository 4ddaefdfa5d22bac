/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// site_config.go implements the "bridge site-config" command, which shows
// the site configuration extensions see after the legacy files are merged.

package cmd

import (
	"fmt"
	"os"

	"github.com/jpl-au/bridge/internal/diff"
	"github.com/jpl-au/bridge/internal/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func newSiteConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "site-config",
		Short: "Show the merged site configuration",
		Long: `Show the site configuration after merging the native and legacy files.

  bridge site-config          # merged values and the files they came from
  bridge site-config --diff   # what the legacy files changed

The site is found through the site.root_dir setting.`,
		Args: cobra.NoArgs,
		RunE: runSiteConfig,
	}
	c.Flags().Bool(FlagDiff, false, "Show changes against the native configuration")
	return c
}

func runSiteConfig(c *cobra.Command, _ []string) error {
	showDiff, _ := c.Flags().GetBool(FlagDiff)

	cfg, err := Settings()
	if err != nil {
		return PrintJSONError(fmt.Errorf("config load: %w", err))
	}
	_, sc, err := cfg.LoadSite()

	log.Event("cli:site-config", "load").Detail("root", cfg.RootDir()).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("site config: %w", err))
	}

	merged := sc.Config.Values()
	if !showDiff {
		if JSON() {
			return PrintJSON(map[string]any{"sources": sc.Sources, "config": merged})
		}
		for _, s := range sc.Sources {
			fmt.Fprintf(Out(), "# %s\n", s)
		}
		if len(merged) == 0 {
			return nil
		}
		b, err := yaml.Marshal(merged)
		if err != nil {
			return fmt.Errorf("render site config: %w", err)
		}
		fmt.Fprint(Out(), string(b))
		return nil
	}

	r, err := diff.Values(sc.Native, merged, "native", "merged")
	if err != nil {
		return PrintJSONError(fmt.Errorf("site config diff: %w", err))
	}
	if JSON() {
		return PrintJSON(map[string]any{"sources": sc.Sources, "changed": r.Changed(), "diff": r.Format(false)})
	}
	if !r.Changed() {
		fmt.Fprintln(Out(), "legacy sources change nothing")
		return nil
	}
	diff.Run(Out(), r, term.IsTerminal(int(os.Stdout.Fd())))
	return nil
}
