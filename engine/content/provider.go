package content

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// Provider opens content files. Names use '/' separators and already include
// the root directory and extension. A missing file must be reported with an
// error matching core.ErrNotFound; any other failure with core.ErrIO.
type Provider interface {
	Open(name string) (io.ReadCloser, error)
}

// LocalProvider is implemented by providers backed by the local file system.
// Some raw loaders need a real path.
type LocalProvider interface {
	Provider
	LocalPath(name string) (string, bool)
}

// FileProvider opens files from the operating system, relative to the
// working directory unless names are absolute.
type FileProvider struct{}

func (FileProvider) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, classifyOpenError(err, name)
	}
	return f, nil
}

func (FileProvider) LocalPath(name string) (string, bool) {
	p := filepath.FromSlash(name)
	if fi, err := os.Stat(p); err != nil || fi.IsDir() {
		return "", false
	}
	return p, true
}

// FSProvider opens files from an fs.FS, e.g. an embedded content tree.
type FSProvider struct {
	FS fs.FS
}

func (p FSProvider) Open(name string) (io.ReadCloser, error) {
	f, err := p.FS.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, classifyOpenError(err, name)
	}
	return f, nil
}

func classifyOpenError(err error, name string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Mark(errors.Wrapf(err, "open %s", name), core.ErrNotFound)
	}
	return core.AsIOError(errors.Wrapf(err, "open %s", name))
}
