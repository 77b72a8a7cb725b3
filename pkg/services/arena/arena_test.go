package arena

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t))
}

func TestOpen_IssueUniquePaths(t *testing.T) {
	root := t.TempDir()
	a, err := Open(testLogger(t), Options{Root: root, TTL: time.Hour})
	require.NoError(t, err)
	defer a.CloseAll()

	assert.DirExists(t, a.Dir())

	p1, err := a.Issue("chart_", ".png")
	require.NoError(t, err)
	p2, err := a.Issue("chart_", ".png")
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Equal(t, a.Dir(), filepath.Dir(p1))
	assert.Equal(t, a.Dir(), filepath.Dir(p2))
}

func TestCloseAll_Idempotent(t *testing.T) {
	root := t.TempDir()
	a, err := Open(testLogger(t), Options{Root: root, TTL: time.Hour})
	require.NoError(t, err)

	p1, err := a.Issue("chart_", ".png")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p1, []byte("png"), 0o644))

	// one issued path intentionally never created on disk
	_, err = a.Issue("chart_", ".png")
	require.NoError(t, err)

	a.CloseAll()
	assert.NoFileExists(t, p1)
	assert.NoDirExists(t, a.Dir())

	// second teardown must not panic or recreate anything
	a.CloseAll()
	assert.NoDirExists(t, a.Dir())
}

func TestIssue_AfterCloseFails(t *testing.T) {
	a, err := Open(testLogger(t), Options{Root: t.TempDir(), TTL: time.Hour})
	require.NoError(t, err)

	a.CloseAll()
	_, err = a.Issue("chart_", ".png")
	assert.Error(t, err)
}

func TestSweepStale(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, DirPrefix+"stale")
	fresh := filepath.Join(root, DirPrefix+"fresh")
	unrelated := filepath.Join(root, "keepme")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.MkdirAll(fresh, 0o755))
	require.NoError(t, os.MkdirAll(unrelated, 0o755))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	require.NoError(t, SweepStale(testLogger(t), Options{Root: root, TTL: 24 * time.Hour}))

	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, unrelated)
}
