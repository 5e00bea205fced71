// Update command replaces a row addressed by id or position.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaforge/assetledger/pkg/types"
)

var (
	updateID  string
	updatePos int
)

var updateCmd = &cobra.Command{
	Use:   "update <table> [field...]",
	Short: "Replace a row addressed by --id or --pos",
	Long: `Update replaces the fields of one row. The row is addressed either by
identity (--id) or by data-row position (--pos, zero-based). Addressing the
position one past the last row appends instead.

Example:
  stockroom update assets --id 2 2 1 Monitor bob inv-2.pdf
  stockroom update assets --pos 0 1 5 Laptop alice inv-1.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName := args[0]
		fields := args[1:]

		hasID := updateID != ""
		hasPos := cmd.Flags().Changed("pos")
		if hasID == hasPos {
			return fmt.Errorf("exactly one of --id and --pos must be given")
		}

		backend, err := attachBackend()
		if err != nil {
			sysErr("update", err)
		}
		defer backend.Detach()

		table, err := backend.GetTable(tableName)
		if err != nil {
			if isTableNotFound(err) {
				userErr("update", err)
			}
			sysErr("update", err)
		}

		ref := types.ByID(updateID)
		if hasPos {
			ref = types.ByPosition(updatePos)
		}
		if err := table.Update(ref, fields); err != nil {
			userErr("update", err)
		}

		fmt.Printf("Updated %s row %s\n", tableName, ref)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateID, "id", "", "address the row by identity")
	updateCmd.Flags().IntVar(&updatePos, "pos", 0, "address the row by zero-based data-row position")
}
