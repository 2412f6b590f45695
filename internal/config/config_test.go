package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLoadFull(t *testing.T) {
	root := t.TempDir()
	content := `scan:
  include-hidden: true
  exclude-dirs: dist,coverage
  workers: 4
  max-files: 5000
pack:
  max-tokens: 8000
  format: markdown
  tokenizer: exact
distill:
  max-tokens: 4000
  level: 2
  anchors: true
`
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultName), []byte(content), 0o644))

	f := Load("", root, testLogger())

	assert.True(t, f.Scan.IncludeHidden)
	assert.Equal(t, "dist,coverage", f.Scan.ExcludeDirs)
	assert.Equal(t, 4, f.Scan.Workers)
	assert.Equal(t, 5000, f.Scan.MaxFiles)
	assert.Equal(t, 8000, f.Pack.MaxTokens)
	assert.Equal(t, "markdown", f.Pack.Format)
	assert.Equal(t, "exact", f.Pack.Tokenizer)
	assert.Equal(t, 4000, f.Distill.MaxTokens)
	assert.Equal(t, 2, f.Distill.Level)
	assert.True(t, f.Distill.Anchors)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("pack:\n  max-tokens: 123\n"), 0o644))

	f := Load(path, t.TempDir(), testLogger())
	assert.Equal(t, 123, f.Pack.MaxTokens)
}

func TestLoadMissing(t *testing.T) {
	f := Load("", t.TempDir(), testLogger())
	assert.Equal(t, &File{}, f)
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultName), []byte("scan: [not: a map\n"), 0o644))

	f := Load("", root, testLogger())
	assert.Equal(t, &File{}, f)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, 10, Resolve(10, true, 99))
	assert.Equal(t, 99, Resolve(10, false, 99))
	assert.Equal(t, 10, Resolve(10, false, 0))
	assert.Equal(t, "flag", Resolve("flag", true, "file"))
	assert.Equal(t, "file", Resolve("flag", false, "file"))
	assert.False(t, Resolve(false, true, true))
	assert.True(t, Resolve(false, false, true))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a , b "))
	assert.Equal(t, []string{"a"}, SplitList("a,,"))
}
