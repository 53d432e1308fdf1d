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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/archgen/cli"
	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/generator"
	"github.com/cowdogmoo/archgen/git"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/render"
	"github.com/cowdogmoo/archgen/resolver"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "g"},
	Short:   "Add a component to a project",
	Long: `Generate an entity, a use case or an adapter in an archgen project.

The project is read from archgen.yaml in --dir. Several names generate
several components in parallel.`,
}

// generateTarget describes one generate subcommand.
type generateTarget struct {
	use     string
	short   string
	example string
	target  resolver.Target
	opts    cli.GenerateCLIOptions
	format  string
}

var generateTargets = []*generateTarget{
	{
		use:     "entity [name...]",
		short:   "Generate a domain entity",
		example: "  archgen generate entity User --field name:String --field email:String",
		target:  resolver.TargetEntity,
	},
	{
		use:     "usecase [name...]",
		short:   "Generate a use case",
		example: "  archgen generate usecase \"place order\" --entity Order",
		target:  resolver.TargetUseCase,
	},
	{
		use:     "output-adapter [name...]",
		short:   "Generate a driven adapter, e.g. a repository or a cache",
		example: "  archgen generate output-adapter user-cache --type redis --entity User --field name:String",
		target:  resolver.TargetOutputAdapter,
	},
	{
		use:     "input-adapter [name...]",
		short:   "Generate a driving adapter, e.g. a REST controller",
		example: "  archgen generate input-adapter users --type rest --entity User",
		target:  resolver.TargetInputAdapter,
	},
}

func init() {
	for _, t := range generateTargets {
		cmd := &cobra.Command{
			Use:     t.use,
			Short:   t.short,
			Example: t.example,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGenerate(cmd, t, args)
			},
		}
		f := cmd.Flags()
		f.StringVarP(&t.opts.Dir, "dir", "d", ".", "Project directory holding archgen.yaml")
		f.StringVar(&t.opts.Paradigm, "paradigm", "", "Paradigm override, e.g. imperative or reactive")
		f.StringArrayVar(&t.opts.Variables, "var", nil, "Template variable in key=value format (can be specified multiple times)")
		if t.target != resolver.TargetEntity {
			f.StringVarP(&t.opts.Entity, "entity", "e", "", "Entity the component works with")
		}
		if t.target != resolver.TargetUseCase {
			f.StringArrayVar(&t.opts.Fields, "field", nil, "Entity field in name:type format (can be specified multiple times)")
		}
		if t.target.IsAdapter() {
			f.StringVarP(&t.opts.AdapterType, "type", "t", "", "Adapter type, e.g. redis, mongo or rest")
		}
		addTemplateFlags(cmd, &t.opts.TemplateCLIOptions)
		addWriteFlags(cmd, &t.opts.Force, &t.opts.DryRun, &t.format)
		generateCmd.AddCommand(cmd)
	}
}

func runGenerate(cmd *cobra.Command, t *generateTarget, names []string) error {
	ctx := cmd.Context()
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}

	validator := cli.NewValidator()
	reqOpts := make([]cli.GenerateCLIOptions, 0, len(names))
	for _, name := range names {
		opts := t.opts
		opts.Name = name
		if err := validator.ValidateGenerateOptions(opts, t.target.IsAdapter()); err != nil {
			return err
		}
		reqOpts = append(reqOpts, opts)
	}

	dir, err := filepath.Abs(t.opts.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}
	project, err := config.LoadProject(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s is not an archgen project (run 'archgen init' first)", dir)
		}
		return err
	}

	pack, err := loadPack(ctx, cfg, t.opts.TemplateCLIOptions, project)
	if err != nil {
		return err
	}

	reqs := make([]generator.Request, 0, len(reqOpts))
	for _, opts := range reqOpts {
		vars, err := requestContext(t.target, opts)
		if err != nil {
			return err
		}
		reqs = append(reqs, generator.Request{
			Selectors: resolver.Selectors{
				Target:      t.target,
				Paradigm:    opts.Paradigm,
				AdapterType: opts.AdapterType,
			},
			Context: vars,
			Root:    dir,
			Options: generator.Options{Force: opts.Force, DryRun: opts.DryRun},
			Pack:    pack,
			Project: project,
		})
	}

	logging.InfoContext(ctx, "Generating %d %s in %s", len(reqs), t.target.Component(), dir)
	results, err := newGenerator(ctx, cfg, dir).GenerateAll(ctx, reqs, cfg.Generation.Parallelism)
	if err != nil {
		return err
	}
	return report(cmd, mergeResults(results), t.format, t.opts.DryRun)
}

// requestContext maps the flags of one component onto render variables.
func requestContext(target resolver.Target, opts cli.GenerateCLIOptions) (render.Context, error) {
	parser := cli.NewParser()
	vars, err := parser.ParseVariables(opts.Variables)
	if err != nil {
		return nil, err
	}
	ctx := render.Context(vars)

	switch target {
	case resolver.TargetEntity:
		ctx["entityName"] = opts.Name
	case resolver.TargetUseCase:
		ctx["useCaseName"] = opts.Name
	default:
		ctx["adapterName"] = opts.Name
	}
	if opts.Entity != "" {
		ctx["entityName"] = opts.Entity
	}
	if target != resolver.TargetUseCase {
		fields, err := parser.ParseFields(opts.Fields)
		if err != nil {
			return nil, err
		}
		ctx["fields"] = fields
	}
	return ctx, nil
}

func mergeResults(results []*generator.Result) *generator.Result {
	out := &generator.Result{Artifacts: []generator.Artifact{}}
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Artifacts = append(out.Artifacts, r.Artifacts...)
		out.Conflicts = append(out.Conflicts, r.Conflicts...)
	}
	return out
}

// newGenerator writes to the OS filesystem with the author read from git.
func newGenerator(ctx context.Context, cfg *config.Config, dir string) *generator.Generator {
	author := git.NewConfigReader().Author(ctx, dir)
	logging.DebugContext(ctx, "Author: %q", author)
	return generator.New(afero.NewOsFs(),
		generator.WithLockDir(cfg.Generation.LockDir),
		generator.WithAuthor(author),
	)
}

// report prints res and fails when an artifact could not be written.
func report(cmd *cobra.Command, res *generator.Result, format string, dryRun bool) error {
	formatter := cli.NewOutputFormatter(format).WithWriter(cmd.OutOrStdout())
	if err := formatter.DisplayResult(res, dryRun); err != nil {
		return err
	}
	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d artifacts failed", len(failed), len(res.Artifacts))
	}
	return nil
}

func addTemplateFlags(cmd *cobra.Command, opts *cli.TemplateCLIOptions) {
	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Template source: repository name, git or archive URL, or local path")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Branch, tag or version of a remote source")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Fetch the template source even when the cache is fresh")
}

func addWriteFlags(cmd *cobra.Command, force, dryRun *bool, format *string) {
	cmd.Flags().BoolVar(force, "force", false, "Overwrite existing files that cannot be merged")
	cmd.Flags().BoolVar(dryRun, "dry-run", false, "Show what would be written without touching the filesystem")
	cmd.Flags().StringVarP(format, "format", "f", cli.FormatTable, "Output format (table, json)")
}
