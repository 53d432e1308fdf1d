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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/archgen/cli"
	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/generator"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/resolver"
	"github.com/spf13/cobra"
)

var (
	initOpts   cli.InitCLIOptions
	initFormat string
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new project",
	Long: `Create the project skeleton of a new clean architecture project and record
its settings in archgen.yaml.

Examples:
  # Hexagonal Spring project in ./shop
  archgen init shop --base-package com.example.shop --architecture hexagonal

  # Reactive project from a local pack
  archgen init --base-package com.example.shop -a onion --paradigm reactive --source ~/packs/clean

  # Show what would be created
  archgen init shop --base-package com.example.shop -a hexagonal --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	f := initCmd.Flags()
	f.StringVar(&initOpts.Name, "name", "", "Project name (default is the directory name)")
	f.StringVar(&initOpts.BasePackage, "base-package", "", "Root Java package, e.g. com.example.shop")
	f.StringVarP(&initOpts.Architecture, "architecture", "a", "", "Architecture style, e.g. hexagonal or onion")
	f.StringVar(&initOpts.Framework, "framework", "spring", "Framework")
	f.StringVar(&initOpts.Paradigm, "paradigm", "imperative", "Programming paradigm declared by the pack, e.g. imperative or reactive")
	f.StringArrayVar(&initOpts.Versions, "version", nil, "Dependency version in key=value format (can be specified multiple times)")
	f.StringArrayVar(&initOpts.Variables, "var", nil, "Template variable in key=value format (can be specified multiple times)")
	addTemplateFlags(initCmd, &initOpts.TemplateCLIOptions)
	addWriteFlags(initCmd, &initOpts.Force, &initOpts.DryRun, &initFormat)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}

	opts := initOpts
	opts.Dir = "."
	if len(args) == 1 {
		opts.Dir = args[0]
	}
	if err := cli.NewValidator().ValidateInitOptions(opts); err != nil {
		return err
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.ProjectFileName)); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists in %s (use --force to initialize again)", config.ProjectFileName, dir)
	}

	settings, err := projectSettings(opts, dir)
	if err != nil {
		return err
	}

	pack, err := loadPack(ctx, cfg, opts.TemplateCLIOptions, nil)
	if err != nil {
		return err
	}
	src := pack.Source()
	settings.Templates = config.ProjectTemplates{Source: src.Location}
	if !src.IsLocal() {
		settings.Templates.Ref = src.Ref
	}

	if !opts.DryRun {
		if err := os.MkdirAll(dir, config.DirPermReadWriteExec); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	logging.InfoContext(ctx, "Initializing %s project %s in %s", settings.Architecture, settings.Name, dir)
	res, err := newGenerator(ctx, cfg, dir).Generate(ctx, generator.Request{
		Selectors: resolver.Selectors{
			Target:       resolver.TargetInitProject,
			Architecture: settings.Architecture,
			Framework:    settings.Framework,
			Paradigm:     settings.Paradigm,
		},
		Root:    dir,
		Options: generator.Options{Force: opts.Force, DryRun: opts.DryRun},
		Pack:    pack,
		Project: settings,
	})
	if err != nil {
		return err
	}

	if !opts.DryRun && len(res.Failed()) == 0 {
		if err := config.SaveProject(dir, settings); err != nil {
			return err
		}
	}
	return report(cmd, res, initFormat, opts.DryRun)
}

// projectSettings builds archgen.yaml from the init flags.
func projectSettings(opts cli.InitCLIOptions, dir string) (*config.ProjectSettings, error) {
	parser := cli.NewParser()
	settings := config.DefaultProjectSettings()
	settings.Name = opts.Name
	if settings.Name == "" {
		settings.Name = filepath.Base(dir)
	}
	settings.BasePackage = opts.BasePackage
	settings.Architecture = opts.Architecture
	if opts.Framework != "" {
		settings.Framework = opts.Framework
	}
	if opts.Paradigm != "" {
		settings.Paradigm = opts.Paradigm
	}

	versions, err := parser.ParseKeyValuePairs(opts.Versions)
	if err != nil {
		return nil, err
	}
	settings.Versions = versions
	vars, err := parser.ParseVariables(opts.Variables)
	if err != nil {
		return nil, err
	}
	settings.Variables = vars
	return settings, settings.Validate()
}
