package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/hbnb/internal/paths"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "HBNB"

	// Config keys.
	cfgKeyStorage    = "storage"
	cfgKeyFilePath   = "file_path"
	cfgKeySQLitePath = "sqlite_path"
	cfgKeyBadgerDir  = "badger_dir"
	cfgKeyLogLevel   = "log_level"
)

// envTypeStorage is the legacy storage selector variable, checked before
// HBNB_STORAGE.
const envTypeStorage = "HBNB_TYPE_STORAGE"

// loadConfig reads config.yaml from configDir, applies HBNB_* environment
// overrides and then flags, and resolves snapshot locations to absolute
// paths. A missing config.yaml is not an error.
func loadConfig(configDir string, flags *rootFlags) (types.Config, error) {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv(cfgKeyStorage, envTypeStorage, envPrefix+"_STORAGE"); err != nil {
		return types.Config{}, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault(cfgKeyStorage, types.StorageFile)
	v.SetDefault(cfgKeyFilePath, types.DefaultFilePath)
	v.SetDefault(cfgKeySQLitePath, types.DefaultSQLitePath)
	v.SetDefault(cfgKeyBadgerDir, types.DefaultBadgerDir)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if flags.storage != "" {
		cfg.Storage = flags.storage
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w: %q", err, cfg.Storage)
	}
	cfg = cfg.WithDefaults()

	var err error
	if cfg.FilePath, err = paths.ResolveDataPath(flags.file, cfg.FilePath, types.DefaultFilePath); err != nil {
		return types.Config{}, fmt.Errorf("resolve file path: %w", err)
	}
	if cfg.SQLitePath, err = paths.ResolveDataPath("", cfg.SQLitePath, types.DefaultSQLitePath); err != nil {
		return types.Config{}, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if cfg.BadgerDir, err = paths.ResolveDataPath("", cfg.BadgerDir, types.DefaultBadgerDir); err != nil {
		return types.Config{}, fmt.Errorf("resolve badger dir: %w", err)
	}
	return cfg, nil
}

// resolveConfig resolves the configuration directory and loads the
// configuration from it.
func resolveConfig(flags *rootFlags) (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir, flags)
	if err != nil {
		return types.Config{}, "", err
	}
	return cfg, configDir, nil
}
