// Package cli implements the interactive collaborator around the locked
// encrypted store: it prompts for input, holds the session key, and calls
// the core with the key passed explicitly on every operation.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
	"github.com/dmitrijs2005/journalkeeper/internal/config"
	"github.com/dmitrijs2005/journalkeeper/internal/cryptox"
	"github.com/dmitrijs2005/journalkeeper/internal/filex"
	"github.com/dmitrijs2005/journalkeeper/internal/journal/backup"
	"github.com/dmitrijs2005/journalkeeper/internal/journal/export"
	"github.com/dmitrijs2005/journalkeeper/internal/journal/models"
	"github.com/dmitrijs2005/journalkeeper/internal/journal/store"
	"github.com/dmitrijs2005/journalkeeper/internal/logging"
)

// App wires the store, the backup manager and the terminal together. The
// session key lives only here, never inside the core, and is wiped on
// lock and exit.
type App struct {
	cfg     *config.Config
	log     logging.Logger
	store   *store.Store
	backups *backup.Manager
	loc     *time.Location
	reader  *bufio.Reader
	out     io.Writer

	sessionKey cryptox.Key
	unlocked   bool
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.NewDiscardLogger()
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
	}

	artifact := cfg.ArtifactPath()
	if err := filex.EnsureDir(filepath.Dir(artifact)); err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		store:   store.New(artifact, log),
		backups: backup.NewManager(artifact, loc, log),
		loc:     loc,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run performs the on-entry daily backup (best-effort), then hands control
// to the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	opCtx, cancel := a.opCtx(ctx)
	a.backups.EnsureDailyBackup(opCtx, a.cfg.RetentionDays)
	cancel()

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	_ = a.Lock(ctx)
}

// opCtx derives a context bounding lock acquisition time per configuration.
// With a zero LockTimeout, operations wait for the lock indefinitely.
func (a *App) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.LockTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.LockTimeout)
}

func (a *App) status() string {
	if a.unlocked {
		return a.cfg.Account
	}
	return a.cfg.Account + " (locked)"
}

func (a *App) isUnlocked() bool { return a.unlocked }

// Unlock prompts for the passphrase and verifies it against the artifact.
// A fresh journal (nothing saved yet) accepts any passphrase; it becomes
// the encryption key on first save.
func (a *App) Unlock(ctx context.Context) error {
	pass, err := GetPassphrase("Enter your encryption key", a.out)
	if err != nil {
		return err
	}
	key := cryptox.Derive(string(pass))
	common.Wipe(pass)

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	table, err := a.store.Load(opCtx, key)
	switch {
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "No journal saved yet. This key will encrypt your first save.")
	case err != nil:
		fmt.Fprintln(a.out, "Wrong key or corrupted file.")
		return err
	default:
		fmt.Fprintf(a.out, "Journal unlocked: %d entries.\n", len(table))
	}

	a.sessionKey = key
	a.unlocked = true
	return nil
}

// Lock forgets the session key.
func (a *App) Lock(_ context.Context) error {
	common.Wipe(a.sessionKey[:])
	a.sessionKey = cryptox.Key{}
	a.unlocked = false
	return nil
}

func (a *App) requireUnlocked() error {
	if !a.unlocked {
		fmt.Fprintln(a.out, "Unlock the journal first.")
		return errors.New("journal locked")
	}
	return nil
}

// Add prompts for a new entry, appends it to the table and saves the whole
// table back. Date and time default to "now" in the canonical zone.
func (a *App) Add(ctx context.Context) error {
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	mood, err := GetSimpleText(a.reader, "Mood (e.g., calm, anxious)", a.out)
	if err != nil {
		return err
	}
	stress, err := GetScale(a.reader, "Stress", a.out)
	if err != nil {
		return a.report(err)
	}
	energy, err := GetScale(a.reader, "Energy", a.out)
	if err != nil {
		return a.report(err)
	}
	focus, err := GetScale(a.reader, "Focus", a.out)
	if err != nil {
		return a.report(err)
	}
	notes, err := GetMultiline(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}
	tags, err := GetSimpleText(a.reader, "Tags (comma-separated)", a.out)
	if err != nil {
		return err
	}

	rec := models.NewRecord(time.Now().In(a.loc), mood, stress, energy, focus, notes, tags)
	if err := rec.Validate(); err != nil {
		return a.report(err)
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	table, err := a.store.Load(opCtx, a.sessionKey)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return a.report(err)
	}
	table = append(table, rec)

	if err := a.store.Save(opCtx, table, a.sessionKey); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Entry saved securely.")

	// First save of the day deserves a snapshot.
	a.backups.EnsureDailyBackup(opCtx, a.cfg.RetentionDays)
	return nil
}

// List prints all entries in insertion order.
func (a *App) List(ctx context.Context) error {
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	table, err := a.store.Load(opCtx, a.sessionKey)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return a.report(err)
	}
	if len(table) == 0 {
		fmt.Fprintln(a.out, "No entries yet.")
		return nil
	}

	for i, r := range table {
		fmt.Fprintf(a.out, "%3d  %s %s  mood=%s stress=%s energy=%s focus=%s tags=%s\n",
			i+1, r.Date, r.TimeLocal, r.Mood,
			scaleStr(r.Stress), scaleStr(r.Energy), scaleStr(r.Focus), r.Tags)
		if r.Notes != "" {
			fmt.Fprintf(a.out, "     %s\n", strings.ReplaceAll(r.Notes, "\n", " / "))
		}
	}
	return nil
}

// Export writes a zip archive with the decrypted CSV to path and prints the
// integrity digests of both representations.
func (a *App) Export(ctx context.Context, path string) error {
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	table, err := a.store.Load(opCtx, a.sessionKey)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return a.report(err)
	}

	archive, err := export.Zip(table)
	if err != nil {
		return a.report(err)
	}
	if err := os.WriteFile(path, archive, 0o600); err != nil {
		return a.report(err)
	}

	csvBytes, err := export.CSV(table)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Exported %d entries to %s\n", len(table), path)
	fmt.Fprintf(a.out, "SHA-256 (decrypted CSV): %s\n", cryptox.DigestHex(csvBytes))
	return nil
}

// BackupNow creates today's snapshot if there is anything to back up.
func (a *App) BackupNow(ctx context.Context) error {
	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	created, err := a.backups.CreateIfMissing(opCtx)
	if err != nil {
		return a.report(err)
	}
	if created {
		fmt.Fprintln(a.out, "Backup created (encrypted).")
	} else {
		fmt.Fprintln(a.out, "Nothing to back up yet.")
	}
	return nil
}

// Backups lists available snapshots, oldest first.
func (a *App) Backups(_ context.Context) error {
	snaps, err := a.backups.List()
	if err != nil {
		return a.report(err)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(a.out, "No backups available yet.")
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintln(a.out, s.Name)
	}
	fmt.Fprintf(a.out, "Latest: %s\n", snaps[len(snaps)-1].Name)
	return nil
}

// Restore overwrites the live artifact with the named snapshot after an
// explicit confirmation. The snapshot is not validated against the session
// key: if it was written under a different passphrase, the next unlock
// fails and the user must enter that passphrase instead.
func (a *App) Restore(ctx context.Context, name string) error {
	fmt.Fprintln(a.out, "Restoring replaces your current journal with the snapshot.")
	fmt.Fprintln(a.out, "If the snapshot used a different key, unlocking afterwards will require it.")
	answer, err := GetSimpleText(a.reader, "Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.backups.Restore(opCtx, name); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Restored. Unlock again with the snapshot's key.")
	return a.Lock(ctx)
}

// Rotate re-encrypts the artifact under a new passphrase in one atomic
// sequence. The current passphrase is always asked for, even while
// unlocked, mirroring the original re-encryption flow.
func (a *App) Rotate(ctx context.Context) error {
	oldPass, err := GetPassphrase("Current encryption key", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(oldPass)

	newPass, err := GetPassphrase("New encryption key", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(newPass)

	confirm, err := GetPassphrase("Confirm new encryption key", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(confirm)

	if string(newPass) != string(confirm) {
		fmt.Fprintln(a.out, "New keys do not match.")
		return errors.New("confirmation mismatch")
	}

	oldKey := cryptox.Derive(string(oldPass))
	newKey := cryptox.Derive(string(newPass))

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.store.Rotate(opCtx, oldKey, newKey); err != nil {
		if errors.Is(err, common.ErrWrongKeyOrCorrupt) {
			fmt.Fprintln(a.out, "Incorrect old key; nothing was changed.")
		}
		return a.report(err)
	}

	if a.unlocked {
		a.sessionKey = newKey
	}
	fmt.Fprintln(a.out, "File re-encrypted with your new key.")
	return nil
}

// Checksum prints integrity digests of the decrypted serialization and the
// raw encrypted artifact.
func (a *App) Checksum(ctx context.Context) error {
	if err := a.requireUnlocked(); err != nil {
		return err
	}

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	sums, err := a.store.Checksums(opCtx, a.sessionKey)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "SHA-256 (decrypted CSV): %s\n", sums.Plaintext)
	fmt.Fprintf(a.out, "SHA-256 (encrypted artifact): %s\n", sums.Ciphertext)
	return nil
}

// report prints an error to the user and passes it through.
func (a *App) report(err error) error {
	fmt.Fprintf(a.out, "Error: %v\n", err)
	return err
}

func scaleStr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
