package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/entitykit/internal/paths"
	"github.com/mesh-intelligence/entitykit/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileBase = "config.yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyUUIDVersion = "uuid_version"
	cfgKeyPrecision   = "precision"
	cfgKeyLocation    = "location"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"

	envLogLevel = "ENTITYKIT_LOG_LEVEL"
)

const configHeader = "# entitykit configuration\n# data_dir is overridden by --data-dir; log_level by " + envLogLevel + ".\n\n"

// defaultConfig is written to config.yaml by init.
var defaultConfig = types.Config{
	Backend:     types.BackendSQLite,
	UUIDVersion: types.UUIDv7,
	LogLevel:    "warn",
	LogFormat:   "text",
}

// loadConfig reads config.yaml from the resolved config directory using
// Viper and resolves the data directory. A missing config.yaml is not an
// error; defaults apply.
func loadConfig(configDirFlag, dataDirFlag string) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(configDirFlag)
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultConfig.Backend)
	v.SetDefault(cfgKeyUUIDVersion, defaultConfig.UUIDVersion)
	v.SetDefault(cfgKeyLogLevel, defaultConfig.LogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultConfig.LogFormat)
	if err := v.BindEnv(cfgKeyLogLevel, envLogLevel); err != nil {
		return types.Config{}, sysError(err)
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, userError(fmt.Errorf("read config: %w", err))
		}
	}

	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	return types.Config{
		Backend:     v.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		UUIDVersion: v.GetString(cfgKeyUUIDVersion),
		Precision:   v.GetString(cfgKeyPrecision),
		Location:    v.GetString(cfgKeyLocation),
		LogLevel:    v.GetString(cfgKeyLogLevel),
		LogFormat:   v.GetString(cfgKeyLogFormat),
	}, nil
}

// writeConfigIfMissing creates the config directory and a default
// config.yaml. An existing file is left alone. It reports whether a file
// was written.
func writeConfigIfMissing(configDir string) (string, bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, configFileBase)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&defaultConfig)
	if err != nil {
		return "", false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return "", false, err
	}
	return path, true, nil
}
