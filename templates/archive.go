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
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cowdogmoo/archgen/errors"
	"github.com/cowdogmoo/archgen/logging"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxArchiveBytes caps the decompressed size of a pack archive.
const maxArchiveBytes = 512 << 20

// ErrArchiveTooLarge is returned when a pack archive decompresses to more
// than the size cap.
var ErrArchiveTooLarge = errors.New("archive exceeds the size limit")

// ArchiveFetcher downloads packed template packs (.tar.gz, .tgz, .tar.zst,
// .tzst) over HTTP and unpacks them.
type ArchiveFetcher struct {
	// Client performs the download. nil means http.DefaultClient.
	Client *http.Client
	// Token is sent as a bearer token when set.
	Token string
}

// NewArchiveFetcher creates an archive fetcher.
func NewArchiveFetcher(token string) *ArchiveFetcher {
	return &ArchiveFetcher{Token: token}
}

// Fetch downloads src.Location and extracts it into dest. An archive whose
// entries all live under one top-level directory is unpacked from inside
// that directory.
func (a *ArchiveFetcher) Fetch(ctx context.Context, src Source, dest string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
	if err != nil {
		return "", errors.Wrap("build archive request", logging.RedactURL(src.Location), err)
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	logging.InfoContext(ctx, "Downloading template pack from %s", logging.RedactURL(src.Location))
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap("download archive", logging.RedactURL(src.Location), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", logging.RedactURL(src.Location), resp.Status)
	}

	stream, err := decompressor(src.Location, resp.Body)
	if err != nil {
		return "", err
	}
	defer func() { _ = stream.Close() }()

	extractDir := dest + ".extract"
	defer func() { _ = os.RemoveAll(extractDir) }()

	if err := extractTar(ctx, newCappedReader(stream, maxArchiveBytes), extractDir); err != nil {
		return "", err
	}

	root, err := archiveRoot(extractDir)
	if err != nil {
		return "", err
	}
	if err := os.Rename(root, dest); err != nil {
		return "", errors.Wrap("move extracted pack", dest, err)
	}
	return src.Ref, nil
}

// cappedReader reads at most limit bytes from r and fails with
// ErrArchiveTooLarge if r holds more, so a cut archive is never mistaken for
// a complete one.
type cappedReader struct {
	r    io.Reader
	left int64
}

func newCappedReader(r io.Reader, limit int64) *cappedReader {
	return &cappedReader{r: r, left: limit}
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		var probe [1]byte
		n, err := c.r.Read(probe[:])
		if n > 0 {
			return 0, ErrArchiveTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}

// decompressor picks the codec from the archive name.
func decompressor(location string, r io.Reader) (io.ReadCloser, error) {
	name := strings.ToLower(location)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap("open gzip stream", "", err)
		}
		return gz, nil
	case strings.HasSuffix(name, ".tar.zst"), strings.HasSuffix(name, ".tzst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap("open zstd stream", "", err)
		}
		return dec.IOReadCloser(), nil
	}
	return nil, fmt.Errorf("unsupported archive format: %s", location)
}

// extractTar unpacks regular files and directories from r into dir. Entries
// that would land outside dir are rejected; links and devices are skipped.
func extractTar(ctx context.Context, r io.Reader, dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrap("create extraction directory", dir, err)
	}

	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap("read archive", "", err)
		}

		name := filepath.FromSlash(strings.TrimPrefix(hdr.Name, "./"))
		if name == "" || name == "." {
			continue
		}
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes the extraction directory", hdr.Name)
		}
		target := filepath.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirPerm); err != nil {
				return errors.Wrap("create directory", target, err)
			}
		case tar.TypeReg:
			if err := writeArchiveFile(tr, target); err != nil {
				return err
			}
		default:
			logging.DebugContext(ctx, "Skipping archive entry %s of type %c", hdr.Name, hdr.Typeflag)
		}
	}
}

func writeArchiveFile(r io.Reader, target string) (retErr error) {
	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return errors.Wrap("create directory", filepath.Dir(target), err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return errors.Wrap("create file", target, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && retErr == nil {
			retErr = errors.Wrap("close file", target, closeErr)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return errors.Wrap("write file", target, err)
	}
	return nil
}

// archiveRoot returns dir, or its only child when dir holds exactly one
// directory and nothing else.
func archiveRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap("read extracted archive", dir, err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}
