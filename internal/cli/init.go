package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/internal/paths"
	"github.com/mesh-intelligence/stockroom/internal/sqlite"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize stockroom storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return exitError(exitSysError, "init: resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return exitError(exitSysError, "init: create config directory: %w", err)
	}

	// A --data-dir given at init time is remembered in the new config.yaml.
	var dataDir string
	if flags.dataDir != "" {
		if dataDir, err = filepath.Abs(flags.dataDir); err != nil {
			return exitError(exitSysError, "init: resolve data dir: %w", err)
		}
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), dataDir); err != nil {
		return exitError(exitSysError, "init: write config: %w", err)
	}

	s, err := loadSettings(flags)
	if err != nil {
		return exitError(exitSysError, "init: %w", err)
	}

	backend := sqlite.NewBackend(nil)
	if err := backend.Attach(s.storeConfig()); err != nil {
		return exitError(exitSysError, "init: initialize storage: %w", err)
	}
	if err := backend.Detach(); err != nil {
		return exitError(exitSysError, "init: finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Stockroom initialized successfully")
	fmt.Fprintln(out, "  config:", s.configDir)
	fmt.Fprintln(out, "  data:  ", s.dataDir)
	return nil
}
