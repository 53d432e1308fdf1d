//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/l50/goutils/v2/git"

	// mage utility functions
	"github.com/magefile/mage/sh"
)

// binaries are the commands built by Compile, relative to the repo root.
var binaries = []string{"cmd/archgen", "cmd/schema-gen"}

var repoRoot string

func init() {
	var err error
	repoRoot, err = git.RepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get repo root: %v\n", err)
		os.Exit(1)
	}
}

type compileParams struct {
	GOOS    string
	GOARCH  string
	Version string
}

func (p *compileParams) populateFromEnv() error {
	p.GOOS = envOr("GOOS", runtime.GOOS)
	p.GOARCH = envOr("GOARCH", runtime.GOARCH)
	p.Version = os.Getenv("VERSION")
	if p.Version != "" {
		return nil
	}
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return fmt.Errorf("failed to describe version: %v", err)
	}
	p.Version = strings.TrimSpace(out)
	return nil
}

func (p *compileParams) ldflags() (string, error) {
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read commit: %v", err)
	}
	date, err := sh.Output("date", "-u", "+%Y-%m-%dT%H:%M:%SZ")
	if err != nil {
		return "", fmt.Errorf("failed to read build date: %v", err)
	}
	return fmt.Sprintf("-s -w -X main.version=%s -X main.commit=%s -X main.date=%s",
		p.Version, strings.TrimSpace(commit), strings.TrimSpace(date)), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Compile builds archgen and schema-gen into bin/<GOOS>_<GOARCH>/.
//
// **Environment Variables:**
//
// GOOS, GOARCH: target platform. Default to the current system.
//
// VERSION: version stamped into archgen. Defaults to `git describe`.
//
// Example usage:
//
// ```go
// mage compile
// GOOS=darwin GOARCH=arm64 mage compile
// VERSION=v0.3.0 mage compile
// ```
//
// **Returns:**
//
// error: An error if any issue occurs during compilation.
func Compile() error {
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	var p compileParams
	if err := p.populateFromEnv(); err != nil {
		return err
	}
	flags, err := p.ldflags()
	if err != nil {
		return err
	}

	outDir := filepath.Join("bin", p.GOOS+"_"+p.GOARCH)
	env := map[string]string{"GOOS": p.GOOS, "GOARCH": p.GOARCH, "CGO_ENABLED": "0"}
	for _, pkg := range binaries {
		out := filepath.Join(outDir, filepath.Base(pkg))
		if p.GOOS == "windows" {
			out += ".exe"
		}
		fmt.Printf("Compiling %s %s for %s/%s\n", filepath.Base(pkg), p.Version, p.GOOS, p.GOARCH)
		if err := sh.RunWithV(env, "go", "build", "-trimpath", "-ldflags", flags, "-o", out, "./"+pkg); err != nil {
			return fmt.Errorf("failed to compile %s: %v", pkg, err)
		}
	}
	return nil
}

func changeToRepoRoot() (originalCwd string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}

	if cwd != repoRoot {
		if err := os.Chdir(repoRoot); err != nil {
			return "", fmt.Errorf("failed to change directory to repo root: %v", err)
		}
	}

	return cwd, nil
}

// RunTests executes all unit tests.
//
// Example usage:
//
// ```go
// mage runtests
// ```
//
// **Returns:**
//
// error: An error if any issue occurs while running the tests.
func RunTests() error {
	fmt.Println("Running unit tests.")
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	if err := sh.RunV("go", "test", "-race", "-count=1", "./..."); err != nil {
		return fmt.Errorf("failed to run unit tests: %v", err)
	}
	return nil
}
