// Package backup maintains daily snapshots of the encrypted journal
// artifact: creation, enumeration, retention pruning and restore-by-copy.
//
// Snapshots are verbatim copies of the encrypted blob; no key is ever
// needed here. All copies in and out of the live artifact run under the
// same lock resource the store uses, so a snapshot never captures a
// half-written artifact.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
	"github.com/dmitrijs2005/journalkeeper/internal/filex"
	"github.com/dmitrijs2005/journalkeeper/internal/lockx"
	"github.com/dmitrijs2005/journalkeeper/internal/logging"
)

const (
	// Dirname is the snapshot subdirectory beside the artifact.
	Dirname = "backups"

	// DefaultRetentionDays is the default retention window.
	DefaultRetentionDays = 14

	snapshotPrefix = "journal_entries_"
	snapshotSuffix = ".csv.enc"
	dateLayout     = "2006-01-02"
)

// Snapshot is one daily backup file.
type Snapshot struct {
	Name string
	Date time.Time
	Path string
}

// PruneResult reports the outcome of deleting one snapshot during a
// retention sweep. Err is nil on success.
type PruneResult struct {
	Name string
	Err  error
}

// Manager owns the snapshot directory of one journal artifact.
type Manager struct {
	artifactPath string
	dir          string
	loc          *time.Location
	log          logging.Logger
	now          func() time.Time // test seam
}

func NewManager(artifactPath string, loc *time.Location, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Manager{
		artifactPath: artifactPath,
		dir:          filepath.Join(filepath.Dir(artifactPath), Dirname),
		loc:          loc,
		log:          log.With("component", "backup"),
		now:          time.Now,
	}
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string { return m.dir }

// SnapshotNameForDate returns the deterministic snapshot name for the
// calendar date of t in the canonical zone.
func (m *Manager) SnapshotNameForDate(t time.Time) string {
	return snapshotPrefix + t.In(m.loc).Format(dateLayout) + snapshotSuffix
}

// SnapshotNameForToday returns the snapshot name for the current date.
func (m *Manager) SnapshotNameForToday() string {
	return m.SnapshotNameForDate(m.now())
}

// CreateIfMissing snapshots the current artifact for today:
//
//   - no artifact on disk → (false, nil), nothing to back up;
//   - today's snapshot already exists → (true, nil), idempotent;
//   - otherwise the encrypted blob is copied byte-for-byte under the
//     store's lock and (true, nil) is returned.
func (m *Manager) CreateIfMissing(ctx context.Context) (bool, error) {
	if _, err := os.Stat(m.artifactPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact: %w", err)
	}

	dest := filepath.Join(m.dir, m.SnapshotNameForToday())
	if _, err := os.Stat(dest); err == nil {
		return true, nil
	}

	if err := filex.EnsureDir(m.dir); err != nil {
		return false, err
	}

	guard, err := lockx.Acquire(ctx, lockx.PathFor(m.artifactPath))
	if err != nil {
		return false, err
	}
	defer guard.Release()

	if err := filex.CopyFile(m.artifactPath, dest, 0o600); err != nil {
		return false, fmt.Errorf("copy snapshot: %w", err)
	}

	m.log.Info(ctx, "daily snapshot created", "snapshot", filepath.Base(dest))
	return true, nil
}

// List returns all snapshots sorted by their embedded date, oldest first.
// This ordering is load-bearing: retention prunes the head, Latest takes
// the tail. Files that do not match the snapshot naming scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		ds := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
		d, err := time.ParseInLocation(dateLayout, ds, m.loc)
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{Name: name, Date: d, Path: filepath.Join(m.dir, name)})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	return snaps, nil
}

// Latest returns the most recent snapshot, or nil when none exist.
func (m *Manager) Latest() (*Snapshot, error) {
	snaps, err := m.List()
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[len(snaps)-1], nil
}

// EnforceRetention deletes the oldest snapshots so that at most maxCount
// remain. Individual delete failures do not abort the sweep; every
// attempted deletion is reported in the returned results.
func (m *Manager) EnforceRetention(maxCount int) ([]PruneResult, error) {
	snaps, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(snaps) <= maxCount {
		return nil, nil
	}

	results := make([]PruneResult, 0, len(snaps)-maxCount)
	for _, s := range snaps[:len(snaps)-maxCount] {
		results = append(results, PruneResult{Name: s.Name, Err: os.Remove(s.Path)})
	}
	return results, nil
}

// Restore copies the named snapshot over the live artifact, replacing it
// wholesale, under the store's lock. The snapshot is not decrypted first:
// if it was written under a different passphrase, the next unlock will fail
// with a wrong-key error. Collaborators must warn the user before calling.
func (m *Manager) Restore(ctx context.Context, name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	src := filepath.Join(m.dir, name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snapshot %s: %w", name, common.ErrNotFound)
		}
		return fmt.Errorf("stat snapshot: %w", err)
	}

	guard, err := lockx.Acquire(ctx, lockx.PathFor(m.artifactPath))
	if err != nil {
		return err
	}
	defer guard.Release()

	if err := filex.CopyFile(src, m.artifactPath, 0o600); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	m.log.Info(ctx, "snapshot restored over live artifact", "snapshot", name)
	return nil
}

// EnsureDailyBackup runs the on-entry policy: create today's snapshot if
// missing, then prune beyond the retention window. This path is
// best-effort; every failure degrades to a warning and the primary
// workflow is never blocked.
func (m *Manager) EnsureDailyBackup(ctx context.Context, retention int) {
	created, err := m.CreateIfMissing(ctx)
	if err != nil {
		m.log.Warn(ctx, "automatic backup attempt failed", "error", err)
		return
	}
	if !created {
		return
	}

	results, err := m.EnforceRetention(retention)
	if err != nil {
		m.log.Warn(ctx, "retention sweep failed", "error", err)
		return
	}
	for _, r := range results {
		if r.Err != nil {
			m.log.Warn(ctx, "could not prune snapshot", "snapshot", r.Name, "error", r.Err)
		}
	}
}
