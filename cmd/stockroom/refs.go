// Refs command lists the tables referencing an attachment file.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var refsCmd = &cobra.Command{
	Use:   "refs <file-name>",
	Short: "List tables whose attachment columns reference a file",
	Long: `Refs consults the attachment reverse index and prints the tables
whose declared attachment columns hold the given file name. Useful before
deleting an attachment. The listing covers declared columns only; sweep
itself always checks every table.

Example:
  stockroom refs inv-1.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			sysErr("refs", err)
		}
		defer backend.Detach()

		names, err := backend.AttachmentReferences(args[0])
		if err != nil {
			sysErr("refs", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(names, "", "  ")
			if err != nil {
				sysErr("refs", err)
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
