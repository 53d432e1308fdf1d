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
	"archive/tar"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tarball builds an uncompressed tar holding files under prefix.
func tarball(t *testing.T, prefix string, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if prefix != "" {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: prefix + "/", Typeflag: tar.TypeDir, Mode: 0o755}))
	}
	for name, content := range files {
		if prefix != "" {
			name = prefix + "/" + name
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "link", Typeflag: tar.TypeSymlink, Linkname: "/etc/passwd"}))
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serveArchives(t *testing.T, archives map[string][]byte) (*httptest.Server, *string) {
	t.Helper()
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &authHeader
}

func TestArchiveFetcherFetch(t *testing.T) {
	pack := map[string]string{
		ManifestFile: "name: archived\n",
		"architectures/hexagonal/entity/Entity.java.tmpl": "class ${.entityName} {}",
	}
	raw := tarball(t, "spring-packs-1.0.0", pack)
	srv, auth := serveArchives(t, map[string][]byte{
		"/packs.tar.gz":  gzipped(t, raw),
		"/packs.tar.zst": zstded(t, raw),
		"/flat.tgz":      gzipped(t, tarball(t, "", pack)),
	})

	for _, name := range []string{"packs.tar.gz", "packs.tar.zst", "flat.tgz"} {
		t.Run(name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "pack")
			f := NewArchiveFetcher("tok")

			resolved, err := f.Fetch(context.Background(), Source{Location: srv.URL + "/" + name, Ref: "1.0.0"}, dest)
			require.NoError(t, err)
			assert.Equal(t, "1.0.0", resolved)
			assert.Equal(t, "Bearer tok", *auth)

			data, err := os.ReadFile(filepath.Join(dest, "architectures", "hexagonal", "entity", "Entity.java.tmpl"))
			require.NoError(t, err)
			assert.Equal(t, "class ${.entityName} {}", string(data))
			assert.True(t, fileExists(filepath.Join(dest, ManifestFile)))
			assert.False(t, fileExists(filepath.Join(dest, "link")))
			assert.False(t, fileExists(dest+".extract"))

			m, err := NewLoader(nil).CheckShape(dest)
			require.NoError(t, err)
			assert.Equal(t, "archived", m.Name)
		})
	}
}

func TestArchiveFetcherErrors(t *testing.T) {
	srv, _ := serveArchives(t, map[string][]byte{
		"/garbage.tar.gz": []byte("not gzip"),
	})

	tests := []struct {
		name     string
		location string
		wantErr  string
	}{
		{name: "not found", location: srv.URL + "/missing.tar.gz", wantErr: "unexpected status"},
		{name: "corrupt stream", location: srv.URL + "/garbage.tar.gz", wantErr: "gzip"},
		{name: "not served", location: srv.URL + "/pack.zip", wantErr: "404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "pack")
			_, err := NewArchiveFetcher("").Fetch(context.Background(), Source{Location: tt.location}, dest)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.False(t, fileExists(dest))
		})
	}
}

func TestExtractTarSizeLimit(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: 10}))
		_, err := tw.Write([]byte("0123456789"))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	data := buf.Bytes()

	// One header block and one data block: the cut lands on the header of b.txt.
	const firstEntry = 1024

	tests := []struct {
		name    string
		limit   int64
		wantErr error
	}{
		{name: "cut on entry boundary", limit: firstEntry, wantErr: ErrArchiveTooLarge},
		{name: "cut inside entry", limit: firstEntry + 100, wantErr: ErrArchiveTooLarge},
		{name: "whole archive", limit: int64(len(data))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			err := extractTar(context.Background(), newCappedReader(bytes.NewReader(data), tt.limit), dir)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.FileExists(t, filepath.Join(dir, "b.txt"))
		})
	}
}

func TestCappedReaderExactSize(t *testing.T) {
	out, err := io.ReadAll(newCappedReader(bytes.NewReader([]byte("pack")), 4))
	require.NoError(t, err)
	assert.Equal(t, "pack", string(out))

	_, err = io.ReadAll(newCappedReader(bytes.NewReader([]byte("packs")), 4))
	assert.ErrorIs(t, err, ErrArchiveTooLarge)
}

func TestDecompressorUnsupported(t *testing.T) {
	_, err := decompressor("https://dl.example.test/pack.zip", bytes.NewReader(nil))
	assert.ErrorContains(t, err, "unsupported archive format")
}

func TestExtractTarRejectsTraversal(t *testing.T) {
	for _, name := range []string{"../escape.txt", "/abs/escape.txt", "a/../../escape.txt"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			tw := tar.NewWriter(&buf)
			require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0o644, Size: 1}))
			_, err := tw.Write([]byte("x"))
			require.NoError(t, err)
			require.NoError(t, tw.Close())

			dir := filepath.Join(t.TempDir(), "out")
			err = extractTar(context.Background(), io.Reader(&buf), dir)
			assert.ErrorContains(t, err, "escapes the extraction directory")
			assert.False(t, fileExists(filepath.Join(filepath.Dir(dir), "escape.txt")))
		})
	}
}

func TestExtractTarCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := extractTar(ctx, bytes.NewReader(tarball(t, "", map[string]string{"a": "b"})), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
