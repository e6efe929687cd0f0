package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/stockroom/internal/logging"
	"github.com/mesh-intelligence/stockroom/internal/paths"
	"github.com/mesh-intelligence/stockroom/internal/shell"
	"github.com/mesh-intelligence/stockroom/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "STOCKROOM"
	logFileName    = "stockroom.log"

	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyImportFile     = "import_file"
	cfgKeyImportEncoding = "import_encoding"
	cfgKeyBackupFile     = "backup_file"
	cfgKeyStoreName      = "store_name"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogEnv         = "log.env"
	cfgKeyLogFile        = "log.file"
	cfgKeyClearScreen    = "shell.clear_screen"
)

// envKeys are the config keys that STOCKROOM_* variables override.
// data_dir is absent: STOCKROOM_DATA_DIR ranks below config.yaml and is
// handled by paths.ResolveDataDir.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyImportFile,
	cfgKeyImportEncoding,
	cfgKeyBackupFile,
	cfgKeyStoreName,
	cfgKeyLogLevel,
	cfgKeyLogEnv,
	cfgKeyLogFile,
	cfgKeyClearScreen,
}

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend        string       `yaml:"backend"`
	DataDir        string       `yaml:"data_dir,omitempty"`
	ImportFile     string       `yaml:"import_file"`
	ImportEncoding string       `yaml:"import_encoding"`
	BackupFile     string       `yaml:"backup_file"`
	StoreName      string       `yaml:"store_name"`
	Log            logSection   `yaml:"log"`
	Shell          shellSection `yaml:"shell"`
}

type logSection struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
	File  string `yaml:"file,omitempty"`
}

type shellSection struct {
	ClearScreen bool `yaml:"clear_screen"`
}

func defaultConfig() configFile {
	return configFile{
		Backend:        types.BackendSQLite,
		ImportFile:     "inventory.csv",
		ImportEncoding: "utf-8",
		BackupFile:     "backup.csv",
		StoreName:      shell.DefaultStoreName,
		Log:            logSection{Level: "info", Env: logging.EnvDev},
		Shell:          shellSection{ClearScreen: true},
	}
}

// settings is the fully resolved configuration for one run. All paths are
// absolute.
type settings struct {
	configDir string
	dataDir   string
	backend   string

	importFile     string
	importEncoding string
	backupFile     string
	storeName      string
	clearScreen    bool

	log logging.Config
}

// loadSettings resolves directories, reads config.yaml and applies
// environment overrides.
func loadSettings(flags *rootFlags) (*settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	s := &settings{
		configDir:      configDir,
		dataDir:        dataDir,
		backend:        v.GetString(cfgKeyBackend),
		importEncoding: v.GetString(cfgKeyImportEncoding),
		storeName:      v.GetString(cfgKeyStoreName),
		clearScreen:    v.GetBool(cfgKeyClearScreen),
		log: logging.Config{
			Level: v.GetString(cfgKeyLogLevel),
			Env:   v.GetString(cfgKeyLogEnv),
		},
	}

	if s.importFile, err = paths.ResolveFile(v.GetString(cfgKeyImportFile)); err != nil {
		return nil, fmt.Errorf("resolve import file: %w", err)
	}
	if s.backupFile, err = paths.ResolveFile(v.GetString(cfgKeyBackupFile)); err != nil {
		return nil, fmt.Errorf("resolve backup file: %w", err)
	}
	logFile := v.GetString(cfgKeyLogFile)
	if logFile == "" {
		logFile = filepath.Join(dataDir, logFileName)
	}
	if s.log.File, err = paths.ResolveFile(logFile); err != nil {
		return nil, fmt.Errorf("resolve log file: %w", err)
	}

	return s, nil
}

// storeConfig is the backend configuration for the resolved settings.
func (s *settings) storeConfig() types.Config {
	return types.Config{Backend: s.backend, DataDir: s.dataDir}
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), ""); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}

	v := viper.New()
	def := defaultConfig()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyImportFile, def.ImportFile)
	v.SetDefault(cfgKeyImportEncoding, def.ImportEncoding)
	v.SetDefault(cfgKeyBackupFile, def.BackupFile)
	v.SetDefault(cfgKeyStoreName, def.StoreName)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogEnv, def.Log.Env)
	v.SetDefault(cfgKeyClearScreen, def.Shell.ClearScreen)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path, dataDir string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfig()
	cfg.DataDir = dataDir

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
