// Show command displays table rows.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukaforge/assetledger/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <table> [id]",
	Short: "Display the rows of a table, or a single row by id",
	Long: `Show prints every row of the table. With an id argument only the
matching row is printed.

Example:
  stockroom show assets
  stockroom show assets 42
  stockroom show assets --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName := args[0]

		backend, err := attachBackend()
		if err != nil {
			sysErr("show", err)
		}
		defer backend.Detach()

		table, err := backend.GetTable(tableName)
		if err != nil {
			if isTableNotFound(err) {
				userErr("show", err)
			}
			sysErr("show", err)
		}

		header, err := table.Header()
		if err != nil {
			sysErr("show", err)
		}

		var rows []types.Row
		if len(args) == 2 {
			row, err := table.Get(args[1])
			if err != nil {
				if isRowNotFound(err) {
					fmt.Fprintf(os.Stderr, "row %q not found in %s\n", args[1], tableName)
					os.Exit(exitUserError)
				}
				sysErr("show", err)
			}
			rows = []types.Row{row}
		} else {
			rows, err = table.Rows()
			if err != nil {
				sysErr("show", err)
			}
		}

		return printRows(header, rows)
	},
}
