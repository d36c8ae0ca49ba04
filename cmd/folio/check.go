package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reannemartin/folio/content"
)

var checkCmd = &cobra.Command{
	Use:   "check <catalog.yaml>",
	Short: "Decode and validate a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := content.Load(args[0])
		if err != nil {
			return err
		}
		placeholders := 0
		for _, p := range cat.Projects {
			if p.Placeholder {
				placeholders++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d projects, %d placeholder, %d skills)\n",
			args[0], len(cat.Projects)-placeholders, placeholders, len(cat.Skills))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
