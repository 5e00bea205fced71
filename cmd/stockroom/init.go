// Init command for the stockroom CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stockroom storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve config directory (flag > env > default) and ensure it
		// exists with a default config.yaml.
		configDir, err := resolveConfigDir()
		if err != nil {
			sysErr("init", err)
		}
		if err := ensureConfigDir(configDir); err != nil {
			sysErr("init", err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			sysErr("init", err)
		}

		// Attach backend (creates the data directory).
		backend, err := attachBackend()
		if err != nil {
			sysErr("init", err)
		}
		defer backend.Detach()

		dataDir, err := resolveDataDir()
		if err != nil {
			sysErr("init", err)
		}

		fmt.Println("Stockroom initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)
		return nil
	},
}
