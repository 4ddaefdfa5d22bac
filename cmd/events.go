/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// events.go implements the "bridge events" command, which shows what each
// adapter re-emits for the generation it feeds.

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/log"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "events",
		Short: "Show the alias table of each adapter",
		Long: `Show which events each adapter re-emits, and under which names.

  bridge events                     # every adapter
  bridge events --adapter plugin/0  # one adapter
  bridge events --adapter 2         # bare generation means the plugin track`,
		Args: cobra.NoArgs,
		RunE: runEvents,
	}
	c.Flags().String(FlagAdapter, "", "Adapter id (e.g., plugin/1, theme/2)")
	return c
}

func runEvents(c *cobra.Command, _ []string) error {
	name, _ := c.Flags().GetString(FlagAdapter)

	var descs []adapter.Description
	if name == "" {
		all, err := adapter.DescribeAll(adapter.Defaults())
		log.Event("cli:events", "list").Write(err)
		if err != nil {
			return PrintJSONError(err)
		}
		descs = all
	} else {
		id, err := adapter.ParseID(name)
		if err != nil {
			return PrintJSONError(err)
		}
		d, err := adapter.Describe(adapter.Defaults(), id)
		log.Event("cli:events", "describe").Extension(id.String()).Write(err)
		if err != nil {
			return PrintJSONError(err)
		}
		descs = []adapter.Description{d}
	}

	if JSON() {
		if name != "" {
			return PrintJSON(descs[0])
		}
		return PrintJSON(descs)
	}
	for i, d := range descs {
		if i > 0 {
			fmt.Fprintln(Out())
		}
		printDescription(d)
	}
	return nil
}

func printDescription(d adapter.Description) {
	fmt.Fprintf(Out(), "%s (%s)", d.ID, d.Generation)
	if len(d.Dependencies) > 0 {
		fmt.Fprintf(Out(), " <- %s", strings.Join(d.Dependencies, ", "))
	}
	fmt.Fprintln(Out())

	events := make([]string, 0, len(d.Aliases))
	for ev := range d.Aliases {
		events = append(events, ev)
	}
	slices.Sort(events)
	for _, ev := range events {
		fmt.Fprintf(Out(), "  %-26s %s\n", ev, strings.Join(d.Aliases[ev], ", "))
	}
	if len(d.Handles) > 0 {
		fmt.Fprintf(Out(), "  translates: %s\n", strings.Join(d.Handles, ", "))
	}
	if d.Custom {
		fmt.Fprintln(Out(), "  forwards custom events")
	}
}
