package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/gridfields/internal/paths"
	"github.com/mesh-intelligence/gridfields/internal/sqlite"
)

// configFile is the structure init records in config.yaml.
type configFile struct {
	Backend        string `yaml:"backend"`
	DataDir        string `yaml:"data_dir,omitempty"`
	SyncStrategy   string `yaml:"sync_strategy,omitempty"`
	BatchSize      int    `yaml:"batch_size,omitempty"`
	BatchInterval  int    `yaml:"batch_interval,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
	LogFormat      string `yaml:"log_format,omitempty"`
	NotifyBuffer   int    `yaml:"notify_buffer,omitempty"`
	MetricsPushURL string `yaml:"metrics_push_url,omitempty"`
}

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize gridfields storage",
		Long:  "Create the configuration and data directories, record the data directory in config.yaml, and initialize the field store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	s, err := resolveSettings(flags)
	if err != nil {
		return err
	}

	if err := recordDataDir(paths.ConfigFile(s.configDir), s); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	store := sqlite.NewBackend()
	if err := store.Attach(s.store); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "gridfields initialized in %s\n", s.store.DataDir)
	return nil
}

// recordDataDir rewrites config.yaml with the resolved data directory when
// the file does not name one yet. An existing data_dir is left alone. Other
// keys keep the file's values or take the defaults; flag and environment
// overrides of this invocation are not recorded.
func recordDataDir(path string, s *settings) error {
	var cfg configFile
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DataDir != "" {
		return nil
	}

	cfg.DataDir = s.store.DataDir
	cfg.fillDefaults()

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// fillDefaults sets every unset key to its default.
func (c *configFile) fillDefaults() {
	def := defaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.SyncStrategy == "" {
		c.SyncStrategy = def.SyncStrategy
	}
	if c.BatchSize == 0 {
		c.BatchSize = def.BatchSize
	}
	if c.BatchInterval == 0 {
		c.BatchInterval = def.BatchInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.NotifyBuffer == 0 {
		c.NotifyBuffer = def.NotifyBuffer
	}
}
