package storage

import (
	"bytes"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// InMemory implements Store, meant to be used in unit tests in other packages.
type InMemory struct {
	sync.Mutex
	m map[Key][]byte
}

func (s *InMemory) Get(k Key) (io.ReadCloser, error) {
	s.Lock()
	defer s.Unlock()
	v, ok := s.m[k]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", k)
	}
	return io.NopCloser(bytes.NewReader(v)), nil
}

func (s *InMemory) Put(k Key, v []byte) error {
	s.Lock()
	defer s.Unlock()
	if s.m == nil {
		s.m = make(map[Key][]byte)
	}
	s.m[k] = append([]byte(nil), v...)
	return nil
}
