/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// trace.go implements the "bridge trace" command.
//
// Design: The trace runs against the configured site so that settings
// such as the theme's API version shape the deliveries. Outside a site
// it runs with defaults, the same way the MCP tool does.

package cmd

import (
	"context"
	"fmt"

	"github.com/jpl-au/bridge/extension"
	"github.com/jpl-au/bridge/internal/log"
	"github.com/jpl-au/bridge/internal/trace"
	"github.com/spf13/cobra"
)

func newTraceCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "trace [event]",
		Short: "Show which extension receives which event",
		Long: `Dispatch an event to one probe extension per generation and show every
delivery in order.

  bridge trace onPageRendered      # one lifecycle event
  bridge trace onSearch            # a custom event
  bridge trace                     # the whole request pipeline
  bridge trace --gen 0,4           # only generation 0 and native probes`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTrace,
	}
	c.Flags().IntSlice(FlagGen, nil, "Generations to probe (0-4, default all)")
	c.Flags().Bool(FlagLoading, false, "Include deliveries made while loading the probes")
	return c
}

func runTrace(c *cobra.Command, args []string) error {
	nums, _ := c.Flags().GetIntSlice(FlagGen)
	keep, _ := c.Flags().GetBool(FlagLoading)

	var gens []extension.Generation
	for _, n := range nums {
		g := extension.Generation(n)
		if !g.Valid() {
			return PrintJSONError(fmt.Errorf("unknown generation %d (valid: 0-%d)", n, int(extension.Native)))
		}
		gens = append(gens, g)
	}

	s, _ := site()
	opts := trace.Options{
		Generations: gens,
		Site:        s,
		Logger:      logger(),
		KeepLoading: keep,
	}

	var (
		event string
		steps []trace.Step
		err   error
	)
	ctx := context.Background()
	if len(args) > 0 {
		event = args[0]
		steps, err = trace.Run(ctx, event, opts)
	} else {
		steps, err = trace.Pipeline(ctx, opts)
	}

	log.Event("cli:trace", "trace").Detail("event", event).Detail("steps", len(steps)).Write(err)

	if JSON() {
		result := map[string]any{"event": event, "steps": steps}
		if err != nil {
			result["error"] = err.Error()
		}
		return PrintJSON(result)
	}
	for _, st := range steps {
		fmt.Fprintf(Out(), "%3d  %-26s %-14s %-7s %s\n", st.Seq, st.Trigger, st.Extension, st.Generation, st.Event)
	}
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	return nil
}
