/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// chain.go implements the "bridge chain" command, which shows the order in
// which an adapter and its dependencies are loaded.

package cmd

import (
	"fmt"

	"github.com/jpl-au/bridge/internal/adapter"
	"github.com/jpl-au/bridge/internal/log"
	"github.com/spf13/cobra"
)

func newChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain <adapter>",
		Short: "Show the load order of an adapter chain",
		Long: `Show the adapters loaded, in order, when an adapter is needed.

  bridge chain plugin/1
  bridge chain theme/2`,
		Args: cobra.ExactArgs(1),
		RunE: runChain,
	}
}

func runChain(_ *cobra.Command, args []string) error {
	id, err := adapter.ParseID(args[0])
	if err != nil {
		return PrintJSONError(err)
	}

	g := adapter.NewGraph(adapter.Env{})
	adapter.RegisterDefaults(g)
	order, err := g.Plan(id)

	log.Event("cli:chain", "plan").Extension(id.String()).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("chain %s: %w", id, err))
	}

	ids := make([]string, 0, len(order))
	for _, o := range order {
		ids = append(ids, o.String())
	}
	if JSON() {
		return PrintJSON(map[string]any{"adapter": id.String(), "load_order": ids})
	}
	for _, s := range ids {
		fmt.Fprintln(Out(), s)
	}
	return nil
}
