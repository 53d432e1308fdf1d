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
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initPackRepo creates a git repository holding a pack with tags v1.0.0
// and v1.1.0 and a develop branch.
func initPackRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit := func(version string) plumbing.Hash {
		files := testPackFiles()
		files[ManifestFile] = "name: spring-clean\nversion: " + version + "\n"
		writeOSPack(t, dir, files)
		_, err := wt.Add(".")
		require.NoError(t, err)
		hash, err := wt.Commit("release "+version, &git.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@example.test", When: time.Now()},
		})
		require.NoError(t, err)
		return hash
	}

	first := commit("1.0.0")
	_, err = repo.CreateTag("v1.0.0", first, nil)
	require.NoError(t, err)

	second := commit("1.1.0")
	_, err = repo.CreateTag("v1.1.0", second, nil)
	require.NoError(t, err)
	_, err = repo.CreateTag("nightly", second, nil)
	require.NoError(t, err)

	third := commit("1.2.0-dev")
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("develop"), third)))

	return dir
}

func manifestVersion(t *testing.T, dir string) string {
	t.Helper()
	m, err := NewLoader(nil).CheckShape(dir)
	require.NoError(t, err)
	return m.Version
}

func TestGitFetcherFetch(t *testing.T) {
	repoDir := initPackRepo(t)
	location := "file://" + repoDir

	tests := []struct {
		name        string
		ref         string
		wantRef     string
		wantVersion string
	}{
		{name: "default branch", ref: "", wantRef: "HEAD", wantVersion: "1.2.0-dev"},
		{name: "tag", ref: "v1.0.0", wantRef: "v1.0.0", wantVersion: "1.0.0"},
		{name: "branch fallback", ref: "develop", wantRef: "develop", wantVersion: "1.2.0-dev"},
		{name: "latest semver tag", ref: LatestRef, wantRef: "v1.1.0", wantVersion: "1.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "pack")
			resolved, err := NewGitFetcher("", "").Fetch(context.Background(), Source{Location: location, Ref: tt.ref}, dest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRef, resolved)
			assert.Equal(t, tt.wantVersion, manifestVersion(t, dest))
		})
	}
}

func TestGitFetcherUnknownRef(t *testing.T) {
	repoDir := initPackRepo(t)
	dest := filepath.Join(t.TempDir(), "pack")

	_, err := NewGitFetcher("", "").Fetch(context.Background(), Source{Location: "file://" + repoDir, Ref: "v9.9.9"}, dest)
	assert.ErrorContains(t, err, "failed to clone repository")
}

func TestGitFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()

	dest := filepath.Join(t.TempDir(), "pack")
	_, err := NewGitFetcher("", "").Fetch(context.Background(), Source{Location: srv.URL + "/acme/packs.git", Ref: "main"}, dest)
	assert.Error(t, err)
}

func TestGitFetcherAuth(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "id_missing")

	tests := []struct {
		name     string
		fetcher  *GitFetcher
		location string
		check    func(t *testing.T, auth transport.AuthMethod, err error)
	}{
		{
			name:     "https with token",
			fetcher:  NewGitFetcher("ghp_token", ""),
			location: "https://git.example.test/acme/packs.git",
			check: func(t *testing.T, auth transport.AuthMethod, err error) {
				require.NoError(t, err)
				basic, ok := auth.(*githttp.BasicAuth)
				require.True(t, ok)
				assert.Equal(t, "x-access-token", basic.Username)
				assert.Equal(t, "ghp_token", basic.Password)
			},
		},
		{
			name:     "https without token",
			fetcher:  NewGitFetcher("", ""),
			location: "https://git.example.test/acme/packs.git",
			check: func(t *testing.T, auth transport.AuthMethod, err error) {
				require.NoError(t, err)
				assert.Nil(t, auth)
			},
		},
		{
			name:     "ssh with missing key",
			fetcher:  NewGitFetcher("", keyFile),
			location: "git@git.example.test:acme/packs.git",
			check: func(t *testing.T, _ transport.AuthMethod, err error) {
				assert.ErrorContains(t, err, "failed to load SSH key")
			},
		},
		{
			name:     "file transport",
			fetcher:  NewGitFetcher("ghp_token", ""),
			location: "file:///srv/packs",
			check: func(t *testing.T, auth transport.AuthMethod, err error) {
				require.NoError(t, err)
				assert.Nil(t, auth)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := tt.fetcher.auth(tt.location)
			tt.check(t, auth, err)
		})
	}
}

func TestIsSpecificVersion(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"", false},
		{"main", false},
		{"master", false},
		{"develop", true},
		{"v1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, isSpecificVersion(tt.ref))
		})
	}
}
