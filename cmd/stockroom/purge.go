// Purge command physically removes rows matching a digit token.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge <table> <token>",
	Short: "Physically delete every row with a field equal to the token",
	Long: `Purge is the only operation that removes rows from a table file. It
matches the token the same way search does (whole fields, digits only) and
rewrites the table without the matching rows.

Example:
  stockroom purge assets 42`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName, token := args[0], args[1]

		backend, err := attachBackend()
		if err != nil {
			sysErr("purge", err)
		}
		defer backend.Detach()

		table, err := backend.GetTable(tableName)
		if err != nil {
			if isTableNotFound(err) {
				userErr("purge", err)
			}
			sysErr("purge", err)
		}

		removed, err := table.SearchAndDelete(token)
		if err != nil {
			userErr("purge", err)
		}

		fmt.Printf("Removed %d row(s) from %s\n", removed, tableName)
		return nil
	},
}
