package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/domain"
	"github.com/hochfrequenz/build-annotator/internal/policy"
	"github.com/hochfrequenz/build-annotator/internal/recorder"
	"github.com/pelletier/go-toml/v2"
)

// LocalConfigName is the per-project config file searched for upwards from
// the working directory
const LocalConfigName = ".build-annotator.toml"

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	PostBuild     PostBuildConfig     `toml:"postbuild"`
	Notifications NotificationsConfig `toml:"notifications"`
	API           APIConfig           `toml:"api"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DatabasePath string `toml:"database_path"`
	RecordsDir   string `toml:"records_dir"`
	WorkDir      string `toml:"work_dir"`
	Debug        bool   `toml:"debug"`
}

// PostBuildConfig configures the post-build script and how its failures
// affect the build
type PostBuildConfig struct {
	Script     string   `toml:"script"`
	ScriptFile string   `toml:"script_file"`
	Sandbox    bool     `toml:"sandbox"`
	Classpath  []string `toml:"classpath"`
	// Behavior is a policy name or one of the legacy codes 0, 1, 2
	Behavior           any    `toml:"behavior"`
	RunForMatrixParent bool   `toml:"run_for_matrix_parent"`
	Timeout            string `toml:"timeout"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	Desktop      bool   `toml:"desktop"`
	SlackWebhook string `toml:"slack_webhook"`
}

// APIConfig holds approval admin API settings
type APIConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath: filepath.Join(home, ".build-annotator", "approvals.db"),
			RecordsDir:   filepath.Join(home, ".build-annotator", "records"),
		},
		PostBuild: PostBuildConfig{
			Sandbox:  true,
			Behavior: policy.DoNothing.String(),
		},
		API: APIConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.General.RecordsDir = ExpandPath(cfg.General.RecordsDir)
	cfg.General.WorkDir = ExpandPath(cfg.General.WorkDir)
	cfg.PostBuild.ScriptFile = resolve(path, ExpandPath(cfg.PostBuild.ScriptFile))
	for i, entry := range cfg.PostBuild.Classpath {
		if strings.Contains(entry, ":") {
			continue // URL, left to the gate
		}
		cfg.PostBuild.Classpath[i] = resolve(path, ExpandPath(entry))
	}

	return cfg, nil
}

// LoadWithLocalFallback loads path if given, else the nearest local config,
// else the user config
func LoadWithLocalFallback(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if local := FindLocalConfig(); local != "" {
		return Load(local)
	}
	return Load(DefaultConfigPath())
}

// FindLocalConfig walks up from the working directory looking for
// LocalConfigName. Returns "" if none is found.
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, LocalConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "build-annotator", "config.toml")
}

// resolve makes a relative path relative to the config file's directory
func resolve(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}

// ScriptText returns the inline script or the contents of script_file
func (p PostBuildConfig) ScriptText() (string, error) {
	if p.Script != "" && p.ScriptFile != "" {
		return "", fmt.Errorf("postbuild: script and script_file are mutually exclusive")
	}
	if p.ScriptFile == "" {
		return p.Script, nil
	}
	data, err := os.ReadFile(p.ScriptFile)
	if err != nil {
		return "", fmt.Errorf("postbuild: reading script_file: %w", err)
	}
	return string(data), nil
}

// Policy parses Behavior
func (p PostBuildConfig) Policy() (policy.Policy, error) {
	switch v := p.Behavior.(type) {
	case nil:
		return policy.DoNothing, nil
	case int64:
		return policy.FromCode(int(v))
	case string:
		return policy.Parse(v)
	default:
		return policy.DoNothing, fmt.Errorf("postbuild: behavior must be a name or number, got %T", v)
	}
}

// ClasspathEntries returns the configured classpath with ~ expanded
func (p PostBuildConfig) ClasspathEntries() []domain.ClasspathEntry {
	entries := make([]domain.ClasspathEntry, 0, len(p.Classpath))
	for _, url := range p.Classpath {
		entries = append(entries, domain.ClasspathEntry{URL: ExpandPath(url)})
	}
	return entries
}

// TimeoutDuration parses Timeout; empty means no limit
func (p PostBuildConfig) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("postbuild: invalid timeout: %w", err)
	}
	return d, nil
}

// RecorderConfig builds the recorder configuration from the postbuild section
func (c *Config) RecorderConfig() (recorder.Config, error) {
	text, err := c.PostBuild.ScriptText()
	if err != nil {
		return recorder.Config{}, err
	}
	p, err := c.PostBuild.Policy()
	if err != nil {
		return recorder.Config{}, err
	}
	return recorder.Config{
		Script:                text,
		Sandbox:               c.PostBuild.Sandbox,
		Classpath:             c.PostBuild.ClasspathEntries(),
		Policy:                p,
		RunForAggregateParent: c.PostBuild.RunForMatrixParent,
		Debug:                 c.General.Debug,
	}, nil
}
