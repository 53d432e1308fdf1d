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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// getConfigHome returns $XDG_CONFIG_HOME, or ~/.config when unset.
func getConfigHome() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return configHome
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ""
}

// getCacheHome returns $XDG_CACHE_HOME, or ~/.cache when unset.
func getCacheHome() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return cacheHome
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache")
	}
	return ""
}

// GetConfigDirs returns all config directories to search, in priority order.
func GetConfigDirs() []string {
	dirs := []string{}

	if configHome := getConfigHome(); configHome != "" {
		dirs = append(dirs, filepath.Join(configHome, "archgen"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".archgen"))
	}

	// System-wide config on Linux/BSD only.
	if runtime.GOOS == "linux" || runtime.GOOS == "freebsd" || runtime.GOOS == "openbsd" {
		if xdgConfigDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgConfigDirs != "" {
			for _, dir := range filepath.SplitList(xdgConfigDirs) {
				if dir != "" {
					dirs = append(dirs, filepath.Join(dir, "archgen"))
				}
			}
		} else {
			dirs = append(dirs, filepath.Join("/etc", "xdg", "archgen"))
		}
	}

	return dirs
}

// ConfigFile returns the path of name inside the primary config directory,
// creating the directory if needed.
func ConfigFile(name string) (string, error) {
	configHome := getConfigHome()
	if configHome == "" {
		return "", fmt.Errorf("cannot determine config directory")
	}
	path := filepath.Join(configHome, "archgen", name)
	if err := os.MkdirAll(filepath.Dir(path), DirPermReadWriteExec); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return path, nil
}

// GetCacheDir returns the cache directory for a subdirectory, honoring the
// configured templates.cache_dir. The directory is created if missing.
func GetCacheDir(cfg *Config, subdirectory string) (string, error) {
	base := ""
	if cfg != nil && cfg.Templates.CacheDir != "" {
		base = cfg.Templates.CacheDir
	} else {
		cacheHome := getCacheHome()
		if cacheHome == "" {
			return "", fmt.Errorf("cannot determine cache directory")
		}
		base = filepath.Join(cacheHome, "archgen", "packs")
	}

	cacheDir := filepath.Join(base, subdirectory)
	if err := os.MkdirAll(cacheDir, DirPermReadWriteExec); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return cacheDir, nil
}
