package storage

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
)

// DiskStore keys are paths relative to its directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Get(k Key) (io.ReadCloser, error) {
	f, err := os.Open(s.pathFor(k))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "%q", s.pathFor(k))
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}

// Put replaces the file atomically, so that an output may be written over
// its own input.
func (s *DiskStore) Put(k Key, v []byte) error {
	p := s.pathFor(k)
	pnew := p + ".new"
	err := os.WriteFile(pnew, v, 0666)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.WithStack(err)
		}
		if err = os.MkdirAll(filepath.Dir(pnew), 0777); err != nil {
			return errors.WithStack(err)
		}
		err = os.WriteFile(pnew, v, 0666)
	}
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(syscall.Rename(pnew, p))
}

func (s *DiskStore) pathFor(key Key) string {
	return filepath.Join(s.dir, filepath.FromSlash(string(key)))
}
