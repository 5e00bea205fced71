// Create command creates an empty table with the given header.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <table> <column>...",
	Short: "Create a new table with the given header columns",
	Long: `Create writes a new table file containing only the header row.

Example:
  stockroom create assets id status name user invoice`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		header := args[1:]

		backend, err := attachBackend()
		if err != nil {
			sysErr("create", err)
		}
		defer backend.Detach()

		if _, err := backend.CreateTable(name, header); err != nil {
			userErr("create", err)
		}

		fmt.Printf("Created table: %s\n", name)
		return nil
	},
}
