// Package store implements the locked encrypted journal store: one
// symmetrically-encrypted artifact per account, with crash-safe writes and
// atomic key rotation.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
	"github.com/dmitrijs2005/journalkeeper/internal/cryptox"
	"github.com/dmitrijs2005/journalkeeper/internal/filex"
	"github.com/dmitrijs2005/journalkeeper/internal/journal/models"
	"github.com/dmitrijs2005/journalkeeper/internal/lockx"
	"github.com/dmitrijs2005/journalkeeper/internal/logging"
)

const artifactMode = os.FileMode(0o600)

// Store persists a journal table as one encrypted artifact at a fixed path.
// It holds no key: every operation takes the session key explicitly.
//
// All read-modify-write sequences run under a single acquisition of the
// artifact's lock resource, so concurrent processes (and the backup
// manager, which targets the same lock) never interleave mid-sequence.
// Callers control lock wait time through ctx deadlines.
type Store struct {
	path string
	log  logging.Logger
}

// Checksums carries integrity digests of the store's two byte
// representations, for external verification.
type Checksums struct {
	Plaintext  string // sha256 hex of the decrypted CSV serialization
	Ciphertext string // sha256 hex of the raw encrypted artifact
}

func New(path string, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Store{path: path, log: log.With("component", "store")}
}

// Path returns the artifact path.
func (s *Store) Path() string { return s.path }

// LockPath returns the lock resource shared by Store and Backup.
func (s *Store) LockPath() string { return lockx.PathFor(s.path) }

// Exists reports whether an artifact has been saved yet.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads, decrypts and deserializes the artifact.
//
// When no artifact exists yet, Load returns an empty, correctly-columned
// table together with common.ErrNotFound, so callers can distinguish
// "nothing saved yet" (no passphrase confirmation needed) from "saved but
// unreadable" (common.ErrWrongKeyOrCorrupt, always surfaced).
func (s *Store) Load(ctx context.Context, key cryptox.Key) (models.Table, error) {
	guard, err := lockx.Acquire(ctx, s.LockPath())
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	blob, ok, err := filex.ReadFileIfExists(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if !ok {
		return models.NewTable(), common.ErrNotFound
	}

	plaintext, err := cryptox.Decrypt(blob, key)
	if err != nil {
		return nil, err
	}

	table, err := models.UnmarshalCSV(plaintext)
	if err != nil {
		return nil, fmt.Errorf("deserialize journal: %w", err)
	}

	s.log.Debug(ctx, "journal loaded", "records", len(table))
	return table, nil
}

// Save serializes and encrypts the full table and replaces the artifact
// atomically (temp file + rename). An interrupted save never corrupts a
// previously valid artifact.
func (s *Store) Save(ctx context.Context, table models.Table, key cryptox.Key) error {
	guard, err := lockx.Acquire(ctx, s.LockPath())
	if err != nil {
		return err
	}
	defer guard.Release()

	plaintext, err := table.MarshalCSV()
	if err != nil {
		return fmt.Errorf("serialize journal: %w", err)
	}

	blob, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return fmt.Errorf("encrypt journal: %w", err)
	}

	if err := filex.WriteFileAtomic(s.path, blob, artifactMode); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	s.log.Debug(ctx, "journal saved", "records", len(table))
	return nil
}

// Rotate re-encrypts the artifact under newKey in one locked, all-or-nothing
// sequence. A wrong oldKey fails with common.ErrWrongKeyOrCorrupt before any
// mutation; any failure before the atomic rename leaves the artifact exactly
// as it was.
func (s *Store) Rotate(ctx context.Context, oldKey, newKey cryptox.Key) error {
	guard, err := lockx.Acquire(ctx, s.LockPath())
	if err != nil {
		return err
	}
	defer guard.Release()

	blob, ok, err := filex.ReadFileIfExists(s.path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if !ok {
		return common.ErrNotFound
	}

	plaintext, err := cryptox.Decrypt(blob, oldKey)
	if err != nil {
		return err
	}

	reblob, err := cryptox.Encrypt(plaintext, newKey)
	if err != nil {
		return fmt.Errorf("re-encrypt journal: %w", err)
	}

	if err := filex.WriteFileAtomic(s.path, reblob, artifactMode); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	s.log.Info(ctx, "encryption key rotated")
	return nil
}

// Checksums computes integrity digests over the raw encrypted artifact and
// its decrypted serialization.
func (s *Store) Checksums(ctx context.Context, key cryptox.Key) (Checksums, error) {
	guard, err := lockx.Acquire(ctx, s.LockPath())
	if err != nil {
		return Checksums{}, err
	}
	defer guard.Release()

	blob, ok, err := filex.ReadFileIfExists(s.path)
	if err != nil {
		return Checksums{}, fmt.Errorf("read artifact: %w", err)
	}
	if !ok {
		return Checksums{}, common.ErrNotFound
	}

	plaintext, err := cryptox.Decrypt(blob, key)
	if err != nil {
		return Checksums{}, err
	}

	return Checksums{
		Plaintext:  cryptox.DigestHex(plaintext),
		Ciphertext: cryptox.DigestHex(blob),
	}, nil
}
