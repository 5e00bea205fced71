// Sweep command reconciles attachment references after a file is deleted or
// renamed outside of stockroom.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukaforge/assetledger/internal/flatfile"
)

var sweepRenameTo string

var sweepCmd = &cobra.Command{
	Use:   "sweep <file-name>",
	Short: "Clear or rewrite table references to an attachment file",
	Long: `Sweep rewrites every table field holding the given attachment file
name. Without --rename-to the references are cleared, as after a deletion.
With --rename-to they are rewritten to the new name.

Example:
  stockroom sweep inv-1.pdf
  stockroom sweep req-1.pdf --rename-to req-1-signed.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		backend, err := attachBackend()
		if err != nil {
			sysErr("sweep", err)
		}
		defer backend.Detach()

		var results []flatfile.SweepResult
		if sweepRenameTo != "" {
			results, err = backend.Sweeper().OnFileRenamed(name, sweepRenameTo)
		} else {
			results, err = backend.Sweeper().OnFileRemoved(name)
		}
		if err != nil {
			userErr("sweep", err)
		}

		failed := false
		total := 0
		for _, r := range results {
			if r.Err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "sweep %s: %v\n", r.Table, r.Err)
				continue
			}
			total += r.RowsChanged
		}
		fmt.Printf("Rewrote %d row(s)\n", total)
		if failed {
			os.Exit(exitSysError)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepRenameTo, "rename-to", "", "rewrite references to this new file name instead of clearing them")
}
