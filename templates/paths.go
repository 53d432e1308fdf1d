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

package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
)

// archiveSuffixes lists the remote archive formats ArchiveFetcher unpacks.
var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.zst", ".tzst"}

// PathValidator handles template source path validation and normalization.
type PathValidator struct{}

// NewPathValidator creates a new path validator.
func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// IsArchiveURL reports whether s is an http(s) URL naming a packed archive.
func (pv *PathValidator) IsArchiveURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	lower := strings.ToLower(s)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// IsGitURL checks if a string is a git URL. Archive URLs are not git URLs.
func (pv *PathValidator) IsGitURL(s string) bool {
	if pv.IsArchiveURL(s) {
		return false
	}
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "git@") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "file://")
}

// IsRemote reports whether s must be fetched rather than read in place.
func (pv *PathValidator) IsRemote(s string) bool {
	return pv.IsGitURL(s) || pv.IsArchiveURL(s)
}

// NormalizePath normalizes a path for comparison by expanding ~ and converting to absolute path.
func (pv *PathValidator) NormalizePath(path string) (string, error) {
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return "", errors.Wrap("normalize path", path, err)
	}

	// Only relative values that look like paths are made absolute, so that
	// repository names pass through unchanged.
	if !filepath.IsAbs(expandedPath) && (strings.Contains(expandedPath, "/") || strings.HasPrefix(expandedPath, ".")) {
		absPath, err := filepath.Abs(expandedPath)
		if err != nil {
			return "", errors.Wrap("get absolute path", expandedPath, err)
		}
		return absPath, nil
	}

	return expandedPath, nil
}

// ValidateLocalPath validates that a path exists and is a directory.
func (pv *PathValidator) ValidateLocalPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		return fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// ExpandPath expands ~ and environment variables and makes the result absolute.
func (pv *PathValidator) ExpandPath(path string) (string, error) {
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return "", errors.Wrap("expand path", path, err)
	}

	if !filepath.IsAbs(expandedPath) {
		absPath, err := filepath.Abs(expandedPath)
		if err != nil {
			return "", errors.Wrap("get absolute path", expandedPath, err)
		}
		return absPath, nil
	}

	return expandedPath, nil
}

// DirExists checks if a path exists and is a directory.
func (pv *PathValidator) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ExtractRepoName extracts a repository name from a git or archive URL.
// For example: https://git.example.com/jdoe/spring-packs.git => spring-packs
func ExtractRepoName(rawURL string) string {
	name := rawURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "/")
	for _, suffix := range append([]string{".git"}, archiveSuffixes...) {
		name = strings.TrimSuffix(name, suffix)
	}

	// git@github.com:user/repo has no slash before the host separator.
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "templates"
	}

	return name
}

// ExpandPath expands environment variables and a leading ~ in path.
//
// Examples:
//   - "~/packs" -> "/home/user/packs"
//   - "${HOME}/work" -> "/home/user/work"
//   - "~" -> "/home/user"
func ExpandPath(path string) (string, error) {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}
