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

	"github.com/cowdogmoo/archgen/cli"
	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/cowdogmoo/archgen/templates"
)

// newAccessor wires the pack cache and the credentialed fetchers from cfg.
// A nil vm accepts packs regardless of their requires constraint.
func newAccessor(cfg *config.Config, vm *templates.VersionManager) (*templates.Accessor, error) {
	dir, err := config.GetCacheDir(cfg, "")
	if err != nil {
		return nil, err
	}
	t := cfg.Templates
	opts := []templates.AccessorOption{
		templates.WithFetcher(templates.SourceGit, templates.NewGitFetcher(t.Token, t.SSHKeyFile)),
		templates.WithFetcher(templates.SourceArchive, templates.NewArchiveFetcher(t.Token)),
	}
	if vm != nil {
		opts = append(opts, templates.WithVersionManager(vm))
	}
	return templates.NewAccessor(templates.NewCache(dir, t.CacheTTL), opts...), nil
}

// templateSource picks the pack a command uses: the --source flag, then the
// project's recorded source, then the configured default.
func templateSource(cfg *config.Config, opts cli.TemplateCLIOptions, project *config.ProjectSettings) (templates.Source, error) {
	name, ref := opts.Source, opts.Ref
	if name == "" && project != nil {
		name = project.Templates.Source
		if ref == "" {
			ref = project.Templates.Ref
		}
	}
	return templates.NewManager(cfg).Lookup(name, ref)
}

// loadPack resolves the pack for a command and rejects packs this build
// does not satisfy.
func loadPack(ctx context.Context, cfg *config.Config, opts cli.TemplateCLIOptions, project *config.ProjectSettings) (*templates.Pack, error) {
	return resolvePack(ctx, cfg, opts, project, versionManager())
}

func resolvePack(ctx context.Context, cfg *config.Config, opts cli.TemplateCLIOptions, project *config.ProjectSettings, vm *templates.VersionManager) (*templates.Pack, error) {
	src, err := templateSource(cfg, opts, project)
	if err != nil {
		return nil, err
	}
	accessor, err := newAccessor(cfg, vm)
	if err != nil {
		return nil, fmt.Errorf("failed to open template cache: %w", err)
	}
	policy := templates.UseCache
	if opts.Refresh {
		policy = templates.Refresh
	}
	pack, err := accessor.ResolvePack(ctx, src, policy)
	if err != nil {
		return nil, err
	}
	if pack.State() == templates.StateStale {
		logging.WarnContext(ctx, "Using a stale copy of %s", src)
	}
	logging.DebugContext(ctx, "Using pack %s from %s (%s)", pack.ID(), src, pack.State())
	return pack, nil
}
