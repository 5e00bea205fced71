// Set-status command moves a row through the status lifecycle.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/assetledger/pkg/types"
)

// statusNames maps CLI-friendly aliases to the numeric codes.
var statusNames = map[string]types.Status{
	"open":      types.StatusOpen,
	"ordered":   types.StatusOrdered,
	"delivered": types.StatusDelivered,
	"deployed":  types.StatusDeployed,
	"cancelled": types.StatusCancelled,
	"archived":  types.StatusArchived,
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status <table> <id> <status>",
	Short: "Set the status of a row by identity",
	Long: `Set-status rewrites the status field of the row with the given id.
The status is a numeric code or its name: open (1), ordered (2),
delivered (3), deployed (4), cancelled (5), archived (6). Cancelling is the
soft delete; the row stays in the table.

Example:
  stockroom set-status assets 2 cancelled
  stockroom set-status assets 2 5`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName, id := args[0], args[1]

		status, ok := statusNames[args[2]]
		if !ok {
			var err error
			status, err = types.ParseStatus(args[2])
			if err != nil {
				userErr("set-status", err)
			}
		}

		backend, err := attachBackend()
		if err != nil {
			sysErr("set-status", err)
		}
		defer backend.Detach()

		table, err := backend.GetTable(tableName)
		if err != nil {
			if isTableNotFound(err) {
				userErr("set-status", err)
			}
			sysErr("set-status", err)
		}

		if err := table.SetStatus(id, status); err != nil {
			userErr("set-status", err)
		}

		fmt.Printf("Row %s is now %s\n", id, status)
		return nil
	},
}
