// Package storage reads diffs from and writes results to locations: a file
// on disk, an S3 object, or the standard streams.
package storage

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/nicolagi/hintful/internal/config"
)

var ErrNotFound = errors.New("not found")

type Key string

type Store interface {
	Get(Key) (io.ReadCloser, error)
	Put(Key, []byte) error
}

// StdioLocation denotes standard input when reading and standard output
// when writing.
const StdioLocation = "-"

const s3Scheme = "s3://"

// Locate returns the store and key for a location given on the command
// line: "-" (the given standard streams), "s3://bucket/key", or a path.
func Locate(location string, c *config.C, stdio Stdio) (Store, Key, error) {
	const method = "Locate"
	switch {
	case location == StdioLocation:
		return stdio, "", nil
	case strings.HasPrefix(location, s3Scheme):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
		if !ok || bucket == "" || key == "" {
			return nil, "", errorf(method, "%q: want s3://bucket/key", location)
		}
		s, err := newS3Store(c, bucket)
		if err != nil {
			return nil, "", err
		}
		return s, Key(key), nil
	case location == "":
		return nil, "", errorf(method, "empty location")
	default:
		return NewDiskStore(filepath.Dir(location)), Key(filepath.Base(location)), nil
	}
}
