// Add command appends a row to a table.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <table> [field...]",
	Short: "Append a row to a table",
	Long: `Add appends a new row. Missing trailing fields are padded with empty
values; a blank id field is assigned the next free identifier and a blank
status field defaults to open.

Example:
  stockroom add assets "" "" Laptop alice inv-1.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName := args[0]
		fields := args[1:]

		backend, err := attachBackend()
		if err != nil {
			sysErr("add", err)
		}
		defer backend.Detach()

		table, err := backend.GetTable(tableName)
		if err != nil {
			if isTableNotFound(err) {
				userErr("add", err)
			}
			sysErr("add", err)
		}

		row, err := table.Append(fields)
		if err != nil {
			userErr("add", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(row, "", "  ")
			if err != nil {
				sysErr("add", err)
			}
			fmt.Println(string(out))
			return nil
		}
		fmt.Printf("Added row %d (id %s)\n", row.Index, row.ID)
		return nil
	},
}
