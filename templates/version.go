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
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cowdogmoo/archgen/logging"
)

// LatestRef asks the git fetcher for the highest semantic version tag.
const LatestRef = "latest"

// VersionManager handles pack version validation and compatibility checking
type VersionManager struct {
	toolVersion *semver.Version
}

// NewVersionManager returns a [VersionManager] that resolves pack
// compatibility against the given archgen version.
func NewVersionManager(toolVersion string) (*VersionManager, error) {
	ver, err := semver.NewVersion(toolVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid archgen version: %w", err)
	}

	return &VersionManager{
		toolVersion: ver,
	}, nil
}

// ParseVersion parses a semantic version string. Empty and "latest" parse
// to nil.
func ParseVersion(version string) (*semver.Version, error) {
	if version == "" || version == LatestRef {
		return nil, nil
	}

	ver, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %w", err)
	}

	return ver, nil
}

// IsPinnedRef reports whether ref names a fixed release. Pinned refs never
// go stale in the cache; branches do.
func IsPinnedRef(ref string) bool {
	ver, err := ParseVersion(ref)
	return err == nil && ver != nil
}

// CheckCompatibility checks whether the running archgen satisfies a pack's
// requires constraint. An empty constraint is always compatible.
func (vm *VersionManager) CheckCompatibility(requires string) (bool, []string, error) {
	warnings := []string{}

	if requires == "" {
		return true, warnings, nil
	}

	constraint, err := semver.NewConstraint(requires)
	if err != nil {
		return false, warnings, fmt.Errorf("invalid archgen version constraint: %w", err)
	}

	compatible := constraint.Check(vm.toolVersion)
	if !compatible {
		warnings = append(warnings, fmt.Sprintf(
			"pack requires archgen %s, but current version is %s",
			requires, vm.toolVersion.String(),
		))
	}

	return compatible, warnings, nil
}

// CompareVersions returns -1 if v1 < v2, 0 if equal, or 1 if v1 > v2.
// "latest" compares greater than any release.
func CompareVersions(v1, v2 string) (int, error) {
	ver1, err := ParseVersion(v1)
	if err != nil {
		return 0, err
	}

	ver2, err := ParseVersion(v2)
	if err != nil {
		return 0, err
	}

	switch {
	case ver1 == nil && ver2 == nil:
		return 0, nil
	case ver1 == nil:
		return 1, nil
	case ver2 == nil:
		return -1, nil
	}

	return ver1.Compare(ver2), nil
}

// GetLatestVersion returns the highest semantic version in versions,
// skipping values that do not parse.
func GetLatestVersion(ctx context.Context, versions []string) (string, error) {
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions provided")
	}

	var latest *semver.Version
	latestStr := ""

	for _, v := range versions {
		ver, err := ParseVersion(v)
		if err != nil {
			logging.DebugContext(ctx, "Skipping non-version tag: %s", v)
			continue
		}
		if ver == nil {
			continue
		}

		if latest == nil || ver.GreaterThan(latest) {
			latest = ver
			latestStr = v
		}
	}

	if latestStr == "" {
		return "", fmt.Errorf("no semantic version among %d tags", len(versions))
	}

	return latestStr, nil
}
