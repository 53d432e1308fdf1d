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
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/templates"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage template sources",
	Long:  `List, inspect, add, remove and refresh template pack sources.`,
}

var templatesAddCmd = &cobra.Command{
	Use:   "add [url-or-path] or add [name] [url]",
	Short: "Add a template source",
	Long: `Add a template source (git URL, archive URL or local directory).

For remote URLs:
  - Auto-generate name: archgen templates add https://github.com/user/my-packs.git
  - Custom name: archgen templates add my-packs https://github.com/user/my-packs.git

For local paths (name is not supported):
  - archgen templates add ~/archgen-packs
  - archgen templates add ../packs`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTemplatesAdd,
}

var templatesRemoveCmd = &cobra.Command{
	Use:   "remove [path-or-name]",
	Short: "Remove a template source",
	Long: `Remove a template source by path or repository name.

Examples:
  archgen templates remove ~/archgen-packs
  archgen templates remove my-packs`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesRemove,
}

var templatesListFormat string

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured template sources",
	RunE:  runTemplatesList,
}

var (
	templatesShowOpts   cli.TemplateCLIOptions
	templatesShowFormat string
	templatesShowLevel  string
	templatesShowKind   string
	templatesShowName   string
)

var templatesShowCmd = &cobra.Command{
	Use:   "show [source]",
	Short: "List the templates of a pack",
	Long: `List the templates of a pack with their kind and variables.

Examples:
  # Templates of the default source
  archgen templates show

  # Adapter templates mentioning redis
  archgen templates show ~/packs/clean --level adapters --name redis`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplatesShow,
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update template cache",
	Long:  `Fetch every configured remote source into the local cache.`,
	RunE:  runTemplatesUpdate,
}

func init() {
	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesRemoveCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesUpdateCmd)

	templatesListCmd.Flags().StringVarP(&templatesListFormat, "format", "f", cli.FormatTable, "Output format (table, json)")

	f := templatesShowCmd.Flags()
	f.StringVar(&templatesShowOpts.Ref, "ref", "", "Branch, tag or version of a remote source")
	f.BoolVar(&templatesShowOpts.Refresh, "refresh", false, "Fetch the template source even when the cache is fresh")
	f.StringVarP(&templatesShowFormat, "format", "f", cli.FormatTable, "Output format (table, json)")
	f.StringVar(&templatesShowLevel, "level", "all", "Filter by level (all, architectures, frameworks, adapters)")
	f.StringVar(&templatesShowKind, "kind", "", "Filter by entry kind (project-file, structure-definition, component-file, metadata)")
	f.StringVar(&templatesShowName, "name", "", "Filter by path substring")
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name, urlOrPath := "", args[0]
	if len(args) == 2 {
		name, urlOrPath = args[0], args[1]
	}
	if err := cli.NewValidator().ValidateTemplateAddOptions(name, urlOrPath); err != nil {
		return err
	}

	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}

	manager := templates.NewManager(cfg)
	if templates.NewPathValidator().IsRemote(urlOrPath) {
		return manager.AddGitRepository(ctx, name, urlOrPath)
	}
	return manager.AddLocalPath(ctx, urlOrPath)
}

func runTemplatesRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pathOrName := args[0]

	logging.InfoContext(ctx, "Removing template source: %s", pathOrName)

	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}
	return templates.NewManager(cfg).RemoveSource(ctx, pathOrName)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}
	formatter := cli.NewOutputFormatter(templatesListFormat).WithWriter(cmd.OutOrStdout())
	return formatter.DisplaySources(templates.NewManager(cfg).Sources())
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}

	opts := templatesShowOpts
	if len(args) == 1 {
		opts.Source = args[0]
	}
	pack, err := resolvePack(ctx, cfg, opts, nil, nil)
	if err != nil {
		return err
	}

	filter := templates.NewFilter()
	entries := filter.Collect(pack.Entries(""))
	entries = filter.ByLevel(entries, templatesShowLevel)
	entries = filter.ByKind(entries, templatesShowKind)
	entries = filter.ByName(entries, templatesShowName)

	formatter := cli.NewOutputFormatter(templatesShowFormat).WithWriter(cmd.OutOrStdout())
	return formatter.DisplayEntries(pack, entries)
}

func runTemplatesUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("config not available in context")
	}

	accessor, err := newAccessor(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to open template cache: %w", err)
	}

	logging.InfoContext(ctx, "Updating template cache...")
	var failed int
	for _, s := range templates.NewManager(cfg).Sources() {
		if s.Source.IsLocal() {
			continue
		}
		pack, err := accessor.ResolvePack(ctx, s.Source, templates.Refresh)
		switch {
		case err != nil:
			failed++
			logging.ErrorContext(ctx, "Failed to update %s: %v", s.Name, err)
		case pack.State() == templates.StateStale:
			failed++
			logging.WarnContext(ctx, "Could not refresh %s, keeping the cached copy", s.Name)
		default:
			logging.InfoContext(ctx, "Updated %s (%s, %d templates)", s.Name, pack.ID(), pack.Len())
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to update %d template sources", failed)
	}

	logging.InfoContext(ctx, "Template cache updated successfully")
	return nil
}
