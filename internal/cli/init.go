package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/hbnb/internal/paths"
	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize hbnb configuration and storage",
		Long:  "Create the configuration directory and a default config.yaml, then open the configured storage once.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, paths.ConfigFileName)
	if err := writeConfigIfMissing(configPath, flags.storage); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	cfg, err := loadConfig(configDir, flags)
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "hbnb initialized successfully")
	fmt.Fprintln(out, "  config: ", configPath)
	fmt.Fprintln(out, "  storage:", cfg.Storage)
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path, storageName string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := types.Config{Storage: storageName}.WithDefaults()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
