// Search command finds rows containing an exact digit token.
package main

import (
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <table> <token>",
	Short: "Find rows with a field exactly equal to a digit token",
	Long: `Search matches the token against whole fields only. The token must
consist of decimal digits; substring matches never count.

Example:
  stockroom search assets 42`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName, token := args[0], args[1]

		backend, err := attachBackend()
		if err != nil {
			sysErr("search", err)
		}
		defer backend.Detach()

		table, err := backend.GetTable(tableName)
		if err != nil {
			if isTableNotFound(err) {
				userErr("search", err)
			}
			sysErr("search", err)
		}

		rows, err := table.Search(token)
		if err != nil {
			userErr("search", err)
		}

		header, err := table.Header()
		if err != nil {
			sysErr("search", err)
		}
		return printRows(header, rows)
	},
}
