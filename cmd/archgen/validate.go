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

	"github.com/cowdogmoo/archgen/cli"
	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/generator"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/spf13/cobra"
)

var (
	validateOpts   cli.TemplateCLIOptions
	validateDir    string
	validateFormat string
)

var validateCmd = &cobra.Command{
	Use:   "validate [source]",
	Short: "Check a template pack for problems",
	Long: `Check a template pack without rendering it.

Reported are unreadable front matter, template syntax errors, variables
that are neither built in nor declared in pack.yaml, architectures without
project templates, adapter types missing a declared paradigm and a requires
constraint this archgen does not satisfy.

Without a source the pack of the project in --dir is checked, then the
configured default.

Examples:
  archgen validate ./my-pack
  archgen validate official --ref v2.0.0
  archgen validate --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", ".", "Project directory whose pack is checked when no source is given")
	validateCmd.Flags().StringVar(&validateOpts.Ref, "ref", "", "Branch, tag or version of a remote source")
	validateCmd.Flags().BoolVar(&validateOpts.Refresh, "refresh", false, "Fetch the template source even when the cache is fresh")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", cli.FormatTable, "Output format (table, json)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}

	opts := validateOpts
	var project *config.ProjectSettings
	if len(args) == 1 {
		opts.Source = args[0]
	} else if p, err := config.LoadProject(validateDir); err == nil {
		project = p
	}

	// The requires constraint is reported with the other problems instead
	// of failing the load.
	pack, err := resolvePack(ctx, cfg, opts, project, nil)
	if err != nil {
		return err
	}

	report := generator.Validate(pack, versionManager())
	formatter := cli.NewOutputFormatter(validateFormat).WithWriter(cmd.OutOrStdout())
	if err := formatter.DisplayValidationReport(report); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("pack %s has %d problems", report.Pack, len(report.Problems))
	}
	logging.DebugContext(ctx, "Pack %s validated with %d entries", pack.ID(), pack.Len())
	return nil
}
