// Tables command lists the tables in the data directory.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			sysErr("tables", err)
		}
		defer backend.Detach()

		names, err := backend.Tables()
		if err != nil {
			sysErr("tables", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(names, "", "  ")
			if err != nil {
				sysErr("tables", err)
			}
			fmt.Println(string(out))
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
