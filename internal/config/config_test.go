package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/nicolagi/hintful/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string, mode os.FileMode) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(p, []byte(contents), mode))
	// WriteFile is subject to the umask.
	require.NoError(t, os.Chmod(p, mode))
	return p
}

func TestLoadMissingFile(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
	assert.Equal(t, "warning", c.Verbosity)
	assert.Equal(t, runtime.NumCPU(), c.Parallelism)
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
# Comments and blank lines are ignored.
verbosity	debug
log-format text
parallelism 3
snippet-scope file
s3-region eu-west-2
s3-profile diffs
`, 0644)
	c, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, &config.C{
		Verbosity:    "debug",
		LogFormat:    "text",
		Parallelism:  3,
		SnippetScope: "file",
		S3Region:     "eu-west-2",
		S3Profile:    "diffs",
	}, c)
}

func TestLoadErrors(t *testing.T) {
	for _, contents := range []string{
		"verbosity\n",
		"colour always\n",
		"parallelism 0\n",
		"parallelism many\n",
		"log-format xml\n",
	} {
		_, err := config.Load(writeConfig(t, contents, 0600))
		assert.Error(t, err, contents)
	}
}

func TestLoadChecksSecretsArePrivate(t *testing.T) {
	secrets := "s3-access-key AKIA\ns3-secret-key shh\n"
	_, err := config.Load(writeConfig(t, secrets, 0644))
	assert.Error(t, err)

	c, err := config.Load(writeConfig(t, secrets, 0600))
	require.NoError(t, err)
	assert.Equal(t, "shh", c.S3SecretKey)
}

func TestLoadKeepsReadErrorCause(t *testing.T) {
	dir := t.TempDir()
	_, err := config.Load(dir)
	assert.ErrorIs(t, err, syscall.EISDIR)
	assert.Contains(t, err.Error(), dir)
}
