/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package config loads archgen's global configuration and the per-project
// settings file.
//
// The global configuration (log, template sources, cache and generation
// settings) is read by viper from the XDG config directories with ARCHGEN_*
// environment overrides. The project file (archgen.yaml in a project root)
// is plain YAML so that version keys keep their case.
package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// File and directory permissions used when archgen writes to disk.
const (
	DirPermReadWriteExec = 0o755
	FilePermReadWrite    = 0o644
)

// Config represents the global archgen configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TemplatesConfig holds template source and cache configuration.
type TemplatesConfig struct {
	// CacheDir is where fetched remote packs are stored.
	CacheDir string `mapstructure:"cache_dir"`
	// CacheTTL is how long a cached branch-tracking pack stays fresh.
	// Packs pinned to a semantic version never go stale.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// DefaultSource is used when a project does not name a template source.
	DefaultSource string `mapstructure:"default_source"`
	// DefaultRef is the branch or tag used with DefaultSource.
	DefaultRef string `mapstructure:"default_ref"`
	// LocalPaths are local pack directories registered with "templates add".
	LocalPaths []string `mapstructure:"local_paths"`
	// Repositories maps a name to a remote pack URL.
	Repositories map[string]string `mapstructure:"repositories"`
	// SSHKeyFile authenticates SSH clones. Empty uses the SSH agent.
	SSHKeyFile string `mapstructure:"ssh_key_file"`
	// Token authenticates HTTPS fetches. Only read from the environment.
	Token string `mapstructure:"-"`
}

// GenerationConfig holds settings for the generation engine.
type GenerationConfig struct {
	// LockDir holds advisory lock files for artifact writes.
	LockDir string `mapstructure:"lock_dir"`
	// Parallelism bounds concurrent requests in batch generation.
	Parallelism int `mapstructure:"parallelism"`
}

// Load reads the global configuration from the standard config directories.
// A missing config file is not an error; defaults and environment variables
// still apply.
func Load() (*Config, error) {
	v := NewConfigViper()
	return load(v)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("ARCHGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !IsNotFoundError(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Templates.Token = v.GetString("templates.token")

	return &cfg, nil
}

// IsNotFoundError reports whether err means no config file was found.
func IsNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "color")

	if cacheHome := getCacheHome(); cacheHome != "" {
		v.SetDefault("templates.cache_dir", filepath.Join(cacheHome, "archgen", "packs"))
		v.SetDefault("generation.lock_dir", filepath.Join(cacheHome, "archgen", "locks"))
	}
	v.SetDefault("templates.cache_ttl", "24h")
	v.SetDefault("templates.default_source", "https://github.com/cowdogmoo/archgen-templates.git")
	v.SetDefault("templates.default_ref", "main")
	v.SetDefault("templates.local_paths", []string{})
	v.SetDefault("templates.repositories", map[string]string{})
	v.SetDefault("templates.ssh_key_file", "")

	v.SetDefault("generation.parallelism", 4)

	_ = v.BindEnv("templates.token", "ARCHGEN_TEMPLATES_TOKEN", "GITHUB_TOKEN")
}

// NewConfigViper creates a viper instance that searches the XDG config
// directories and the current directory for config.yaml.
func NewConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	for _, dir := range GetConfigDirs() {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	return v
}
