package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/linqcheck"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalogue",
	Long:  "Rules prints every rule in the catalogue with its default severity and whether an automatic fix is available.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeRules(cmd.OutOrStdout(), linqcheck.Catalog(), linqcheck.HasFix)
	},
}
