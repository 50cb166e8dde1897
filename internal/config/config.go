package config

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPath is where the configuration is looked for. It defaults to
// $HINTFUL_CONFIG if it is set, otherwise to $HOME/lib/hintful/config.
var DefaultPath string

func init() {
	if p := os.Getenv("HINTFUL_CONFIG"); p != "" {
		DefaultPath = p
	} else {
		DefaultPath = os.ExpandEnv("$HOME/lib/hintful/config")
	}
}

type C struct {
	// A logrus level name.
	Verbosity string
	// "json" or "text".
	LogFormat string

	// Maximum number of inputs processed at once.
	Parallelism int

	// Where snippet names are unique: "global" (the whole input) or
	// "file" (each file comparison).
	SnippetScope string

	// Used for s3:// locations. Without keys, credentials come from the
	// shared credentials file, for the given profile.
	S3Region    string
	S3Profile   string
	S3AccessKey string
	S3SecretKey string
}

// Default returns the configuration used when there is no file.
func Default() *C {
	return &C{
		Verbosity:    "warning",
		LogFormat:    "json",
		Parallelism:  runtime.NumCPU(),
		SnippetScope: "global",
	}
}

// Load loads the configuration from the named file. A missing file yields
// the default configuration. A file holding an S3 secret key must not be
// accessible by group or others.
func Load(filename string) (*C, error) {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	c, err := load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config.Load %q", filename)
	}
	if c.S3SecretKey != "" {
		fi, err := f.Stat()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if fi.Mode()&0077 != 0 {
			return nil, errorf("Load", "%q: mode is %#o, want at most %#o",
				filename, fi.Mode()&0777, fi.Mode()&0700)
		}
	}
	return c, nil
}

func load(f io.Reader) (*C, error) {
	const method = "load"
	c := Default()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " 	")
		if i == -1 {
			return nil, errorf(method, "no separator in %q", line)
		}
		switch key, val := line[:i], strings.TrimSpace(line[i:]); key {
		case "verbosity":
			c.Verbosity = val
		case "log-format":
			if val != "json" && val != "text" {
				return nil, errorf(method, "log-format: got %q, want json or text", val)
			}
			c.LogFormat = val
		case "parallelism":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return nil, errorf(method, "parallelism: got %q, want a positive integer", val)
			}
			c.Parallelism = n
		case "snippet-scope":
			c.SnippetScope = val
		case "s3-region":
			c.S3Region = val
		case "s3-profile":
			c.S3Profile = val
		case "s3-access-key":
			c.S3AccessKey = val
		case "s3-secret-key":
			c.S3SecretKey = val
		default:
			return nil, errorf(method, "unknown key %q", key)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "config.load")
	}
	return c, nil
}
