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

package generator

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cowdogmoo/archgen/config"
	"github.com/cowdogmoo/archgen/errors"
	"github.com/opencontainers/go-digest"
)

// pathLocks serializes work on a target path. Inside the process a keyed
// mutex is held; when dir is set an advisory file lock named after the
// digest of the path is taken as well, so separate archgen processes
// writing into the same tree wait for each other. Lock files live in dir,
// never in the target tree.
type pathLocks struct {
	dir string

	mu   sync.Mutex
	held map[string]*keyedMutex
}

type keyedMutex struct {
	sync.Mutex
	refs int
}

func newPathLocks(dir string) *pathLocks {
	return &pathLocks{dir: dir, held: map[string]*keyedMutex{}}
}

// Lock blocks until target is exclusively held and returns the release
// function. The release function must be called exactly once.
func (l *pathLocks) Lock(target string) (func(), error) {
	// One key per file however the path was spelled.
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	km := l.acquire(target)
	km.Lock()

	unlock := func() {
		km.Unlock()
		l.forget(target, km)
	}
	if l.dir == "" {
		return unlock, nil
	}

	f, err := l.lockFile(target)
	if err != nil {
		unlock()
		return nil, err
	}
	return func() {
		_ = unlockFile(f)
		_ = f.Close()
		unlock()
	}, nil
}

func (l *pathLocks) acquire(target string) *keyedMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	km, ok := l.held[target]
	if !ok {
		km = &keyedMutex{}
		l.held[target] = km
	}
	km.refs++
	return km
}

// forget drops km once nobody holds or waits on it.
func (l *pathLocks) forget(target string, km *keyedMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	km.refs--
	if km.refs == 0 {
		delete(l.held, target)
	}
}

func (l *pathLocks) lockFile(target string) (*os.File, error) {
	if err := os.MkdirAll(l.dir, config.DirPermReadWriteExec); err != nil {
		return nil, errors.Wrap("create lock directory", l.dir, err)
	}
	name := filepath.Join(l.dir, digest.FromString(target).Encoded()+".lock")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, config.FilePermReadWrite)
	if err != nil {
		return nil, errors.Wrap("open lock file", name, err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, errors.Wrap("lock", target, err)
	}
	return f, nil
}
