package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
)

var testLoc = time.FixedZone("EET", 2*60*60)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	artifact := filepath.Join(t.TempDir(), "journal_entries.csv.enc")
	m := NewManager(artifact, testLoc, nil)
	m.now = func() time.Time {
		return time.Date(2024, 5, 10, 12, 0, 0, 0, testLoc)
	}
	return m
}

func writeArtifact(t *testing.T, m *Manager, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(m.artifactPath, []byte(content), 0o600))
}

func TestSnapshotNameForToday(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, "journal_entries_2024-05-10.csv.enc", m.SnapshotNameForToday())
}

func TestSnapshotNameForDate_CanonicalZone(t *testing.T) {
	m := newTestManager(t)
	// 23:30 UTC on the 9th is already the 10th in the canonical zone.
	utc := time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "journal_entries_2024-05-10.csv.enc", m.SnapshotNameForDate(utc))
}

func TestCreateIfMissing_NoArtifact(t *testing.T) {
	m := newTestManager(t)
	created, err := m.CreateIfMissing(context.Background())
	require.NoError(t, err)
	assert.False(t, created)

	_, err = os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(err), "no backup dir should be created")
}

func TestCreateIfMissing_Idempotent(t *testing.T) {
	m := newTestManager(t)
	writeArtifact(t, m, "encrypted-blob-v1")

	for i := 0; i < 3; i++ {
		created, err := m.CreateIfMissing(context.Background())
		require.NoError(t, err)
		assert.True(t, created)
	}

	snaps, err := m.List()
	require.NoError(t, err)
	require.Len(t, snaps, 1, "N calls on the same day must produce exactly one snapshot")

	// Byte-for-byte copy of the encrypted artifact.
	b, err := os.ReadFile(snaps[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "encrypted-blob-v1", string(b))
}

func TestCreateIfMissing_DoesNotOverwriteTodaysSnapshot(t *testing.T) {
	m := newTestManager(t)
	writeArtifact(t, m, "v1")

	created, err := m.CreateIfMissing(context.Background())
	require.NoError(t, err)
	require.True(t, created)

	// Artifact changes later the same day; the morning snapshot stays.
	writeArtifact(t, m, "v2")
	created, err = m.CreateIfMissing(context.Background())
	require.NoError(t, err)
	require.True(t, created)

	snaps, err := m.List()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	b, err := os.ReadFile(snaps[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))
}

func seedSnapshots(t *testing.T, m *Manager, days ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(m.Dir(), 0o700))
	for _, d := range days {
		name := fmt.Sprintf("journal_entries_%s.csv.enc", d)
		require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), name), []byte(d), 0o600))
	}
}

func TestList_SortedOldestFirst(t *testing.T) {
	m := newTestManager(t)
	seedSnapshots(t, m, "2024-05-03", "2024-05-01", "2024-05-02")

	// Noise that must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), "notes.txt"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), "journal_entries_garbage.csv.enc"), nil, 0o600))

	snaps, err := m.List()
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "journal_entries_2024-05-01.csv.enc", snaps[0].Name)
	assert.Equal(t, "journal_entries_2024-05-02.csv.enc", snaps[1].Name)
	assert.Equal(t, "journal_entries_2024-05-03.csv.enc", snaps[2].Name)
}

func TestList_NoDir(t *testing.T) {
	m := newTestManager(t)
	snaps, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestLatest(t *testing.T) {
	m := newTestManager(t)

	latest, err := m.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	seedSnapshots(t, m, "2024-05-01", "2024-05-07", "2024-05-03")
	latest, err = m.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "journal_entries_2024-05-07.csv.enc", latest.Name)
}

func TestEnforceRetention(t *testing.T) {
	m := newTestManager(t)
	seedSnapshots(t, m,
		"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04", "2024-05-05")

	results, err := m.EnforceRetention(3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, "journal_entries_2024-05-01.csv.enc", results[0].Name)
	assert.Equal(t, "journal_entries_2024-05-02.csv.enc", results[1].Name)

	snaps, err := m.List()
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "journal_entries_2024-05-03.csv.enc", snaps[0].Name)
	assert.Equal(t, "journal_entries_2024-05-05.csv.enc", snaps[2].Name)
}

func TestEnforceRetention_UnderBound(t *testing.T) {
	m := newTestManager(t)
	seedSnapshots(t, m, "2024-05-01", "2024-05-02")

	results, err := m.EnforceRetention(14)
	require.NoError(t, err)
	assert.Empty(t, results)

	snaps, err := m.List()
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestRestore(t *testing.T) {
	m := newTestManager(t)
	writeArtifact(t, m, "live")
	seedSnapshots(t, m, "2024-05-01")

	require.NoError(t, m.Restore(context.Background(), "journal_entries_2024-05-01.csv.enc"))

	b, err := os.ReadFile(m.artifactPath)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", string(b))
}

func TestRestore_MissingSnapshot(t *testing.T) {
	m := newTestManager(t)
	err := m.Restore(context.Background(), "journal_entries_1999-01-01.csv.enc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRestore_RejectsPathTraversal(t *testing.T) {
	m := newTestManager(t)
	err := m.Restore(context.Background(), "../journal_entries.csv.enc")
	assert.Error(t, err)
}

func TestEnsureDailyBackup(t *testing.T) {
	m := newTestManager(t)
	writeArtifact(t, m, "blob")
	seedSnapshots(t, m,
		"2024-04-20", "2024-04-21", "2024-04-22")

	m.EnsureDailyBackup(context.Background(), 3)

	snaps, err := m.List()
	require.NoError(t, err)
	require.Len(t, snaps, 3, "today's snapshot added, oldest pruned")
	assert.Equal(t, "journal_entries_2024-04-21.csv.enc", snaps[0].Name)
	assert.Equal(t, "journal_entries_2024-05-10.csv.enc", snaps[2].Name)
}

func TestEnsureDailyBackup_NothingToBackUp(t *testing.T) {
	m := newTestManager(t)
	assert.NotPanics(t, func() { m.EnsureDailyBackup(context.Background(), 14) })
}
