package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/sentsim/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"sentsim", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	_, err := runApp(t, "--log-level", "verbose", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRegisterListDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db")
	common := []string{"--db", db, "--backend", "openai"}

	out, err := runApp(t, append(append([]string{"register"}, common...), "I love cats", "I love dogs")...)
	require.NoError(t, err)
	assert.Contains(t, out, "registered: I love cats")

	_, err = runApp(t, append(append([]string{"register"}, common...), "I love cats")...)
	assert.ErrorIs(t, err, core.ErrDuplicateSentence)

	out, err = runApp(t, append([]string{"list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "1  I love cats")
	assert.Contains(t, out, "2  I love dogs")

	_, err = runApp(t, append(append([]string{"delete"}, common...), "I love cats")...)
	require.NoError(t, err)

	out, err = runApp(t, append([]string{"export"}, append(common, "-")...)...)
	require.NoError(t, err)
	assert.Equal(t, "I love dogs\n", out)
}

func TestRegisterRequiresArguments(t *testing.T) {
	_, err := runApp(t, "register", "--in-memory", "--backend", "openai")
	assert.Error(t, err)
}

func TestKeywordsCommand(t *testing.T) {
	out, err := runApp(t, "keywords", "I love cats, I don't like dogs.")
	require.NoError(t, err)
	assert.Contains(t, out, "text: I love cats,")
	assert.Contains(t, out, "love cats")
	assert.NotContains(t, out, "dogs")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sentsim.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("in_memory: true\nmax_words_length: 1\n"), 0o644))

	out, err := runApp(t, "--config", cfgPath, "keywords", "stock market crash. cats")
	require.NoError(t, err)
	assert.NotContains(t, out, "stock market crash")
	assert.Contains(t, out, "cats")

	out, err = runApp(t, "--config", cfgPath, "keywords", "--max-words-length", "3", "stock market crash")
	require.NoError(t, err)
	assert.Contains(t, out, "stock market crash")
}

// memoryRegistrar collects sentences and rejects duplicates.
type memoryRegistrar struct {
	sentences []string
}

func (m *memoryRegistrar) Register(_ context.Context, sentence string) error {
	for _, s := range m.sentences {
		if s == sentence {
			return core.StoreError(core.ErrDuplicateSentence, sentence)
		}
	}
	m.sentences = append(m.sentences, sentence)
	return nil
}

func TestImportSentences(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("I love cats\n\nI love dogs\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.txt"), []byte("I love cats\r\nstock market\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("nope\n"), 0o644))

	r := &memoryRegistrar{}
	var progress bytes.Buffer
	stats, err := importSentences(context.Background(), r, []string{filepath.Join(dir, "**", "*.txt")}, &progress, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.files)
	assert.Equal(t, 3, stats.imported)
	assert.Equal(t, 1, stats.skipped)
	assert.ElementsMatch(t, []string{"I love cats", "I love dogs", "stock market"}, r.sentences)
	assert.Contains(t, progress.String(), "4/4")
}

func TestImportStopsWhenFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "many.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0o644))

	db := filepath.Join(t.TempDir(), "db")
	_, err := runApp(t, "import", "--db", db, "--backend", "openai", "--capacity", "2", path)
	assert.ErrorIs(t, err, core.ErrStoreFull)

	out, err := runApp(t, "list", "--db", db, "--backend", "openai")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestWriteSentences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, writeSentences(f, []string{"one", "two"}))
	require.NoError(t, f.Close())

	lines, err := readSentenceFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}
