package store

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/vango-dev/urlkit/internal/errors"
)

// FileStore stores objects as files under a root directory.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore creates a FileStore rooted at root inside fs.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: afero.NewBasePathFs(fs, root)}
}

// OpenDir creates a FileStore on the OS filesystem, creating dir if needed.
func OpenDir(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("U062").Wrap(err)
	}
	return NewFileStore(afero.NewOsFs(), dir), nil
}

// Get opens the file for key.
func (s *FileStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(filepath.FromSlash(k))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(key, nil)
		}
		return nil, errors.New("U061").Wrap(err)
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, notFound(key, nil)
	}
	return f, nil
}

// Put writes r to a temp file next to key and renames it into place.
func (s *FileStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	name := filepath.FromSlash(k)
	if err := s.fs.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return errors.New("U062").Wrap(err)
	}

	tmp := name + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return errors.New("U062").Wrap(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return errors.New("U062").Wrap(err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return errors.New("U062").Wrap(err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		s.fs.Remove(tmp)
		return errors.New("U062").Wrap(err)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(filepath.FromSlash(k)); err != nil && !os.IsNotExist(err) {
		return errors.New("U062").Wrap(err)
	}
	return nil
}

// List walks the root and returns the keys starting with prefix.
func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := afero.Walk(s.fs, string(filepath.Separator), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		key := strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New("U061").Wrap(err)
	}
	sort.Strings(keys)
	return keys, nil
}
