// Package models defines the journal record shape, the canonical column
// set and the CSV codec used as the artifact's plaintext serialization.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
)

// Columns is the canonical, ordered field set of a journal table. Every
// table handed to callers contains exactly these fields in this order, no
// matter what historical shape the file on disk had.
var Columns = []string{
	"date", "time_local", "datetime_iso",
	"mood", "stress", "energy", "focus",
	"notes", "tags",
}

// Record is a single journal entry. Scales are nullable: nil means the
// field was absent in the file the table was loaded from.
type Record struct {
	Date        string // calendar date, 2006-01-02
	TimeLocal   string // wall-clock time, 15:04:05, no zone
	DatetimeISO string // zoned timestamp, RFC 3339, canonical zone
	Mood        string
	Stress      *int // 0–10
	Energy      *int // 0–10
	Focus       *int // 0–10
	Notes       string
	Tags        string // comma-separated by convention, not parsed
}

// Scale is a convenience for building scale pointers in literals.
func Scale(n int) *int { return &n }

// NewRecord builds a record from an instant (already in the canonical zone)
// and the user-entered fields.
func NewRecord(at time.Time, mood string, stress, energy, focus int, notes, tags string) Record {
	return Record{
		Date:        at.Format("2006-01-02"),
		TimeLocal:   at.Format("15:04:05"),
		DatetimeISO: at.Format(time.RFC3339),
		Mood:        mood,
		Stress:      Scale(stress),
		Energy:      Scale(energy),
		Focus:       Scale(focus),
		Notes:       notes,
		Tags:        tags,
	}
}

// Validate checks the bounded-integer domains. Loading does not validate
// (historical files are returned as-is); collaborators validate on input.
func (r Record) Validate() error {
	for _, s := range []struct {
		name string
		v    *int
	}{
		{"stress", r.Stress},
		{"energy", r.Energy},
		{"focus", r.Focus},
	} {
		if s.v != nil && (*s.v < 0 || *s.v > 10) {
			return fmt.Errorf("%s=%d: %w", s.name, *s.v, common.ErrScaleOutOfRange)
		}
	}
	return nil
}
