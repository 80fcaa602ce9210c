// Package export renders a decrypted journal table into portable formats
// for download: plain CSV and a zip archive. This is collaborator-side
// plumbing; the store itself only guarantees the table round-trips.
package export

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/journalkeeper/internal/journal/models"
)

// CSVFilename is the member name used inside archives.
const CSVFilename = "journal_entries.csv"

// CSV returns the table's plaintext CSV serialization.
func CSV(t models.Table) ([]byte, error) {
	return t.MarshalCSV()
}

// Zip packages the table's CSV into a deflated zip archive with a single
// member named CSVFilename.
func Zip(t models.Table) ([]byte, error) {
	csvBytes, err := t.MarshalCSV()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(CSVFilename)
	if err != nil {
		return nil, fmt.Errorf("create archive member: %w", err)
	}
	if _, err := w.Write(csvBytes); err != nil {
		return nil, fmt.Errorf("write archive member: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
