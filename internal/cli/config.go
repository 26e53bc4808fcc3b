package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/gridfields/internal/logging"
	"github.com/mesh-intelligence/gridfields/internal/notify"
	"github.com/mesh-intelligence/gridfields/internal/paths"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogFormat     = "log_format"
	cfgKeyNotifyBuffer  = "notify_buffer"
	cfgKeyMetricsPush   = "metrics_push_url"

	envPrefix = "GRIDFIELDS"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# gridfields configuration

# Backend selection
backend: sqlite

# Data directory (optional; overridable by --data-dir)
# data_dir:

# When field revisions reach the JSONL files: immediate, on_close, batch
sync_strategy: immediate
# batch_size: 10
# batch_interval: 5

log_level: warn
log_format: console

# Prometheus Pushgateway that receives command metrics when a command ends
# metrics_push_url: http://localhost:9091
`

// defaultConfig returns the settings used when neither config.yaml nor the
// environment names a value.
func defaultConfig() configFile {
	return configFile{
		Backend:       types.BackendSQLite,
		SyncStrategy:  types.SyncImmediate,
		BatchSize:     types.DefaultBatchSize,
		BatchInterval: types.DefaultBatchInterval,
		LogLevel:      "warn",
		LogFormat:     logging.FormatConsole,
		NotifyBuffer:  notify.DefaultBuffer,
	}
}

// settings is the resolved configuration of one CLI invocation.
type settings struct {
	configDir    string
	store        types.Config
	logLevel     string
	logFormat    string
	notifyBuffer int
	metricsPush  string
}

// loadConfig reads config.yaml from configDir, writing the default file on
// first run. Keys may be overridden with GRIDFIELDS_<KEY> variables.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeySyncStrategy, def.SyncStrategy)
	v.SetDefault(cfgKeyBatchSize, def.BatchSize)
	v.SetDefault(cfgKeyBatchInterval, def.BatchInterval)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyNotifyBuffer, def.NotifyBuffer)
	v.SetDefault(cfgKeyMetricsPush, def.MetricsPushURL)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveSettings resolves every setting as flag, then GRIDFIELDS_<KEY>
// environment variable, then config.yaml, then default, and validates the
// store configuration.
func resolveSettings(flags *rootFlags) (*settings, error) {
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
		configDir: configDir,
		store: types.Config{
			Backend: v.GetString(cfgKeyBackend),
			DataDir: dataDir,
			SQLiteConfig: &types.SQLiteConfig{
				SyncStrategy:  v.GetString(cfgKeySyncStrategy),
				BatchSize:     v.GetInt(cfgKeyBatchSize),
				BatchInterval: v.GetInt(cfgKeyBatchInterval),
			},
		},
		logLevel:     v.GetString(cfgKeyLogLevel),
		logFormat:    v.GetString(cfgKeyLogFormat),
		notifyBuffer: v.GetInt(cfgKeyNotifyBuffer),
		metricsPush:  v.GetString(cfgKeyMetricsPush),
	}
	if flags.logLevel != "" {
		s.logLevel = flags.logLevel
	}
	if err := s.store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", paths.ConfigFile(configDir), err)
	}
	return s, nil
}
