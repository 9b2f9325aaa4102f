package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newOraclesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "oracles",
		Short: "List the oracle clauses available to programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.registry.Names()
			if a.jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
