package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixelgardenlabs.io/pgl-sync/pkg/buildinfo"
	"pixelgardenlabs.io/pgl-sync/pkg/plog"
	"pixelgardenlabs.io/pgl-sync/pkg/target"
	"pixelgardenlabs.io/pgl-sync/pkg/util"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "pgl-sync.config.json"

type EnginePerformanceConfig struct {
	// Threads is the global thread count applied to targets that do not set
	// their own. Values of 1 or below select the serial copier.
	Threads      int `json:"threads"`
	BufferSizeKB int `json:"bufferSizeKB" comment:"Size of the I/O buffer in kilobytes for file copies and compression. Default is 256 (256KB)."`
}

type EngineConfig struct {
	Metrics     bool                    `json:"metrics"`
	Performance EnginePerformanceConfig `json:"performance"`
}

type DaemonConfig struct {
	// IntervalSeconds is the pause between full backup passes in daemon mode.
	IntervalSeconds int `json:"intervalSeconds"`
}

type ArchiveConfig struct {
	// Format selects the archive container written by the archive command.
	// Supported values are "tar.gz" and "tar.zst".
	Format string `json:"format"`
}

// TargetConfig is the serialized form of one backup target. Zero values for
// Threads defer to the global engine setting.
type TargetConfig struct {
	Path       string   `json:"path"`
	TargetPath string   `json:"targetPath"`
	Tag        string   `json:"tag"`
	Optional   bool     `json:"optional"`
	KeepNum    int      `json:"keepNum"`
	AlwaysCopy bool     `json:"alwaysCopy"`
	// Note: omitempty is intentionally not used for user-configurable slices
	// so that they appear in the generated config file for better discoverability.
	IgnoreFiles []string       `json:"ignoreFiles"`
	IgnoreDirs  []string       `json:"ignoreDirs"`
	Threads     int            `json:"threads,omitempty"`
	Backend     target.Backend `json:"backend"`
}

type Config struct {
	Version  string         `json:"version"`
	LogLevel string         `json:"logLevel"`
	Engine   EngineConfig   `json:"engine"`
	Daemon   DaemonConfig   `json:"daemon"`
	Archive  ArchiveConfig  `json:"archive"`
	Targets  []TargetConfig `json:"targets"`
}

// NewDefault creates and returns a Config struct with sensible default
// values. The target list is empty to force user configuration.
func NewDefault() Config {
	return Config{
		Version:  buildinfo.Version,
		LogLevel: "info", // Default log level.
		Engine: EngineConfig{
			Metrics: true, // Default to enabled for detailed file-counting metrics.
			Performance: EnginePerformanceConfig{
				Threads:      1,   // Serial by default. Safe for HDDs (prevents thrashing).
				BufferSizeKB: 256, // Default to 256KB buffer. Keep it between 64KB-4MB
			},
		},
		Daemon: DaemonConfig{
			IntervalSeconds: 3600, // One full pass per hour.
		},
		Archive: ArchiveConfig{
			Format: "tar.zst",
		},
		Targets: []TargetConfig{},
	}
}

// Load attempts to load a configuration from "pgl-sync.config.json" in the
// given directory. If the file doesn't exist, it returns the default config
// without an error. If the file exists but fails to parse, it returns an
// error and a zero-value config.
func Load(dir string) (Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Config{}, fmt.Errorf("could not determine absolute path for load directory %s: %w", dir, err)
	}

	configPath := filepath.Join(absDir, ConfigFileName)

	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil // Config file doesn't exist, which is a normal case.
		}
		return Config{}, fmt.Errorf("error opening config file %s: %w", configPath, err)
	}
	defer file.Close()

	plog.Info("Loading configuration", "path", configPath)
	// Start with default values, then overwrite with the file's content.
	// This makes the config loading resilient to missing fields in the JSON file.
	// NOTE: if config.Version differs from appVersion we can add a migration step here.
	config := NewDefault()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	// At this point our config has been migrated if needed so override the version in the struct
	if config.Version != buildinfo.Version {
		config.Version = buildinfo.Version
	}
	return config, nil
}

// Generate creates or overwrites a default pgl-sync.config.json file in the
// specified directory.
func Generate(dir string, configToGenerate Config) error {
	configPath := filepath.Join(dir, ConfigFileName)
	jsonData, err := json.MarshalIndent(configToGenerate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := os.WriteFile(configPath, jsonData, util.UserWritableFilePerms); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	plog.Info("Successfully saved config file", "path", configPath)
	return nil
}

// Validate checks the configuration for logical errors and inconsistencies.
// Target paths are expanded and cleaned in place.
func (c *Config) Validate() error {
	if c.Engine.Performance.Threads < 1 {
		return fmt.Errorf("engine.performance.threads must be at least 1")
	}
	if c.Engine.Performance.BufferSizeKB <= 0 {
		return fmt.Errorf("engine.performance.bufferSizeKB must be greater than 0")
	}
	if c.Daemon.IntervalSeconds < 1 {
		return fmt.Errorf("daemon.intervalSeconds must be at least 1")
	}
	switch c.Archive.Format {
	case "tar.gz", "tar.zst":
	default:
		return fmt.Errorf("archive.format must be 'tar.gz' or 'tar.zst', got %q", c.Archive.Format)
	}

	seenTags := make(map[string]struct{})
	for i := range c.Targets {
		tc := &c.Targets[i]

		var err error
		if tc.Path != "" {
			tc.Path, err = util.ExpandPath(tc.Path)
			if err != nil {
				return fmt.Errorf("could not expand source path for target %d: %w", i, err)
			}
			tc.Path = filepath.Clean(tc.Path)
		}
		if tc.TargetPath != "" {
			tc.TargetPath, err = util.ExpandPath(tc.TargetPath)
			if err != nil {
				return fmt.Errorf("could not expand destination path for target %d: %w", i, err)
			}
			tc.TargetPath = filepath.Clean(tc.TargetPath)
		}
		if tc.Threads < 0 {
			return fmt.Errorf("target %d: threads cannot be negative", i)
		}
		if tc.Tag != "" {
			if _, dup := seenTags[tc.Tag]; dup {
				return fmt.Errorf("duplicate target tag %q", tc.Tag)
			}
			seenTags[tc.Tag] = struct{}{}
		}

		resolved := c.BuildTarget(*tc)
		if err := resolved.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// BuildTarget resolves a TargetConfig into a runnable target, applying the
// global thread count when the target does not set its own. An omitted
// keepNum defaults to 1 (incremental, no snapshots); negative values are
// left for Validate to reject.
func (c *Config) BuildTarget(tc TargetConfig) target.Target {
	threads := tc.Threads
	if threads <= 0 {
		threads = c.Engine.Performance.Threads
	}
	keepNum := tc.KeepNum
	if keepNum == 0 {
		keepNum = 1
	}
	return target.Target{
		Path:        tc.Path,
		TargetPath:  tc.TargetPath,
		Tag:         tc.Tag,
		Optional:    tc.Optional,
		KeepNum:     keepNum,
		AlwaysCopy:  tc.AlwaysCopy,
		IgnoreFiles: tc.IgnoreFiles,
		IgnoreDirs:  tc.IgnoreDirs,
		Threads:     threads,
		Backend:     tc.Backend,
	}
}

// FindTarget returns the target config with the given tag, or an error when
// no target carries it.
func (c *Config) FindTarget(tag string) (TargetConfig, error) {
	for _, tc := range c.Targets {
		if tc.Tag == tag {
			return tc, nil
		}
	}
	return TargetConfig{}, fmt.Errorf("no target with tag %q", tag)
}

// LogSummary prints a user-friendly summary of the configuration to the
// provided logger. It respects the 'Quiet' setting.
func (c *Config) LogSummary() {
	logArgs := []interface{}{
		"log_level", c.LogLevel,
		"threads", c.Engine.Performance.Threads,
		"metrics", c.Engine.Metrics,
		"buffer_size_kb", c.Engine.Performance.BufferSizeKB,
		"daemon_interval_s", c.Daemon.IntervalSeconds,
		"archive_format", c.Archive.Format,
		"targets", len(c.Targets),
	}
	for _, tc := range c.Targets {
		summary := fmt.Sprintf("%s -> %s (keep:%d backend:%s)", tc.Path, tc.TargetPath, tc.KeepNum, tc.Backend)
		if tc.Optional {
			summary += " optional"
		}
		if tc.AlwaysCopy {
			summary += " always-copy"
		}
		name := tc.Tag
		if name == "" {
			name = "target_" + filepath.Base(tc.Path)
		}
		logArgs = append(logArgs, name, summary)
		if len(tc.IgnoreFiles) > 0 {
			logArgs = append(logArgs, name+"_ignore_files", strings.Join(tc.IgnoreFiles, ", "))
		}
		if len(tc.IgnoreDirs) > 0 {
			logArgs = append(logArgs, name+"_ignore_dirs", strings.Join(tc.IgnoreDirs, ", "))
		}
	}
	plog.Info("Configuration loaded", logArgs...)
}
