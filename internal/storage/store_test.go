package storage

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/nicolagi/hintful/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Generate implements quick.Generator.
// Intended for unit tests in this package.
func (Key) Generate(rand *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(generateKey(rand, size))
}

func generateKey(r *rand.Rand, size int) Key {
	if size < 0 {
		size = -size
	}
	// Keys are also file names, so never empty.
	b := make([]byte, size+1)
	if _, err := r.Read(b); err != nil {
		panic(err)
	}
	return Key(fmt.Sprintf("%02x.diff", b))
}

var s3params string

func TestStoreImplementations(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*testing.T) Store
	}{
		{
			"disk",
			func(t *testing.T) Store {
				return NewDiskStore(t.TempDir())
			},
		},
		{
			"inmemory",
			func(t *testing.T) Store {
				return &InMemory{}
			},
		},
		{
			"s3",
			func(t *testing.T) Store {
				if s3params == "" {
					t.Skip()
				}
				args := strings.Split(s3params, ",")
				if got, want := len(args), 4; got != want {
					t.Fatalf("got %d, want %d args for S3 store", got, want)
				}
				impl, err := newS3Store(&config.C{
					S3Region:    args[0],
					S3AccessKey: args[2],
					S3SecretKey: args[3],
				}, args[1])
				if err != nil {
					t.Fatal(err)
				}
				return impl
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			testStore(t, c.setup(t))
		})
	}
}

func get(t *testing.T, s Store, k Key) ([]byte, error) {
	t.Helper()
	rc, err := s.Get(k)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}

func testStore(t *testing.T, impl Store) {
	t.Run("you get what you put", func(t *testing.T) {
		f := func(key Key, value []byte) bool {
			if err := impl.Put(key, value); err != nil {
				t.Fatal(err)
			}
			v, err := get(t, impl, key)
			if err != nil {
				t.Fatal(err)
			}
			return bytes.Equal(v, value)
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("put replaces", func(t *testing.T) {
		f := func(key Key, v1, v2 []byte) bool {
			if err := impl.Put(key, v1); err != nil {
				t.Fatal(err)
			}
			if err := impl.Put(key, v2); err != nil {
				t.Fatal(err)
			}
			v, err := get(t, impl, key)
			if err != nil {
				t.Fatal(err)
			}
			return bytes.Equal(v, v2)
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("missing key is not found", func(t *testing.T) {
		_, err := impl.Get("never-put/" + Key(fmt.Sprint(rand.Int63())))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v of type %T, want wrapper of %v", err, err, ErrNotFound)
		}
	})
}

func TestDiskStoreCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir)
	require.NoError(t, store.Put("a/b/c.diff", []byte("@@ -1 +1 @@\n x\n")))
	b, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.diff"))
	require.NoError(t, err)
	assert.Equal(t, "@@ -1 +1 @@\n x\n", string(b))
	_, err = os.Stat(filepath.Join(dir, "a", "b", "c.diff.new"))
	assert.True(t, os.IsNotExist(err))
}

func TestStdio(t *testing.T) {
	var out bytes.Buffer
	s := Stdio{In: strings.NewReader("in"), Out: &out}
	b, err := get(t, s, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "in", string(b))
	require.NoError(t, s.Put("ignored", []byte("out")))
	assert.Equal(t, "out", out.String())
}

func TestLocate(t *testing.T) {
	c := config.Default()
	c.S3Region = "eu-west-2"
	c.S3AccessKey = "AKIA"
	c.S3SecretKey = "secret"

	stdio := Stdio{In: strings.NewReader(""), Out: io.Discard}
	s, k, err := Locate("-", c, stdio)
	require.NoError(t, err)
	assert.Equal(t, stdio, s)
	assert.Equal(t, Key(""), k)

	s, k, err = Locate("s3://diffs/2024/fix.diff", c, stdio)
	require.NoError(t, err)
	require.IsType(t, &s3Store{}, s)
	assert.Equal(t, "diffs", s.(*s3Store).bucket)
	assert.Equal(t, Key("2024/fix.diff"), k)

	s, k, err = Locate("patches/fix.diff", c, stdio)
	require.NoError(t, err)
	require.IsType(t, &DiskStore{}, s)
	assert.Equal(t, "patches", s.(*DiskStore).dir)
	assert.Equal(t, Key("fix.diff"), k)

	for _, bad := range []string{"", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := Locate(bad, c, stdio)
		assert.Error(t, err, bad)
	}
}

func TestMain(m *testing.M) {
	flag.StringVar(&s3params, "s3", "", "region, bucket, access key, and secret key for S3 store testing")
	flag.Parse()
	os.Exit(m.Run())
}
