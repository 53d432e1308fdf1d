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
	"os"
	"strings"

	"github.com/cowdogmoo/archgen/logging"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Fetcher materializes a remote source into dest. dest does not exist when
// Fetch is called. It returns the ref that was actually checked out.
type Fetcher interface {
	Fetch(ctx context.Context, src Source, dest string) (string, error)
}

// GitFetcher clones pack repositories with go-git.
type GitFetcher struct {
	// Token authenticates HTTPS clones.
	Token string
	// SSHKeyFile authenticates SSH clones. Empty uses the SSH agent.
	SSHKeyFile string
}

// NewGitFetcher creates a git fetcher.
func NewGitFetcher(token, sshKeyFile string) *GitFetcher {
	return &GitFetcher{Token: token, SSHKeyFile: sshKeyFile}
}

// isSpecificVersion checks if the ref is a specific tag/branch (not main/master)
func isSpecificVersion(ref string) bool {
	return ref != "" && ref != "main" && ref != "master"
}

// Fetch clones src into dest at src.Ref. A "latest" ref is resolved to the
// highest semantic version tag first.
func (g *GitFetcher) Fetch(ctx context.Context, src Source, dest string) (string, error) {
	auth, err := g.auth(src.Location)
	if err != nil {
		return "", err
	}

	ref := src.Ref
	if ref == LatestRef {
		ref, err = g.latestTag(ctx, src.Location, auth)
		if err != nil {
			return "", err
		}
		logging.DebugContext(ctx, "Resolved latest tag of %s to %s", logging.RedactURL(src.Location), ref)
	}

	cloneOpts := &git.CloneOptions{
		URL:  src.Location,
		Auth: auth,
	}

	// Only show progress if not in quiet mode
	if !logging.FromContext(ctx).IsQuiet() {
		cloneOpts.Progress = os.Stderr
	}

	if isSpecificVersion(ref) {
		cloneOpts.ReferenceName = plumbing.NewTagReferenceName(ref)
		cloneOpts.SingleBranch = true
	}

	logging.InfoContext(ctx, "Cloning template pack from %s", logging.RedactURL(src.Location))
	repo, err := g.cloneWithRetry(ctx, dest, cloneOpts, ref)
	if err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}

	if head, err := repo.Head(); err == nil {
		logging.DebugContext(ctx, "Cloned %s at %s", logging.RedactURL(src.Location), head.Hash().String()[:8])
	}
	if ref == "" {
		return "HEAD", nil
	}
	return ref, nil
}

// cloneWithRetry clones as a tag first and falls back to a branch of the same
// name.
func (g *GitFetcher) cloneWithRetry(ctx context.Context, dest string, cloneOpts *git.CloneOptions, ref string) (*git.Repository, error) {
	repo, err := git.PlainCloneContext(ctx, dest, false, cloneOpts)
	if err != nil && isSpecificVersion(ref) && ctx.Err() == nil {
		logging.DebugContext(ctx, "Tag %s not found, trying as branch", ref)
		_ = os.RemoveAll(dest)
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(ref)
		return git.PlainCloneContext(ctx, dest, false, cloneOpts)
	}
	return repo, err
}

// latestTag lists the remote's tags and picks the highest semantic version.
func (g *GitFetcher) latestTag(ctx context.Context, location string, auth transport.AuthMethod) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{location},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: auth})
	if err != nil {
		return "", fmt.Errorf("failed to list remote tags: %w", err)
	}

	var tags []string
	for _, r := range refs {
		if r.Name().IsTag() {
			tags = append(tags, r.Name().Short())
		}
	}
	return GetLatestVersion(ctx, tags)
}

// auth picks credentials for location: a token for HTTPS, a key file or the
// agent for SSH.
func (g *GitFetcher) auth(location string) (transport.AuthMethod, error) {
	switch {
	case strings.HasPrefix(location, "https://") || strings.HasPrefix(location, "http://"):
		if g.Token == "" {
			return nil, nil
		}
		return &http.BasicAuth{Username: "x-access-token", Password: g.Token}, nil
	case strings.HasPrefix(location, "git@") || strings.HasPrefix(location, "ssh://"):
		if g.SSHKeyFile != "" {
			keyPath, err := ExpandPath(g.SSHKeyFile)
			if err != nil {
				return nil, err
			}
			keys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
			if err != nil {
				return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
			}
			return keys, nil
		}
		return nil, nil
	}
	return nil, nil
}
