package models

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Table is an ordered sequence of records. There is no primary key;
// identity is positional and insertion order is preserved across
// load/modify/save cycles.
type Table []Record

// NewTable returns an empty table with the canonical column set.
func NewTable() Table { return Table{} }

// MarshalCSV serializes the table as CSV with the canonical header row.
func (t Table) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range t {
		row := []string{
			r.Date, r.TimeLocal, r.DatetimeISO,
			r.Mood, scaleCell(r.Stress), scaleCell(r.Energy), scaleCell(r.Focus),
			r.Notes, r.Tags,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCSV parses CSV bytes into a table, back-filling columns that the
// file predates as empty and dropping columns the current set does not
// know. Empty input yields an empty table.
func UnmarshalCSV(b []byte) (Table, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return NewTable(), nil
	}

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1 // historical files may differ; handled per column

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return NewTable(), nil
	}

	// Map each canonical column to its index in this file, -1 when absent.
	idx := make([]int, len(Columns))
	for i, col := range Columns {
		idx[i] = -1
		for j, name := range rows[0] {
			if strings.TrimSpace(name) == col {
				idx[i] = j
				break
			}
		}
	}

	table := NewTable()
	for n, row := range rows[1:] {
		cell := func(col int) string {
			if idx[col] < 0 || idx[col] >= len(row) {
				return ""
			}
			return row[idx[col]]
		}

		rec := Record{
			Date:        cell(0),
			TimeLocal:   cell(1),
			DatetimeISO: cell(2),
			Mood:        cell(3),
			Notes:       cell(7),
			Tags:        cell(8),
		}
		for i, dst := range []**int{&rec.Stress, &rec.Energy, &rec.Focus} {
			v, err := parseScale(cell(4 + i))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", n+1, Columns[4+i], err)
			}
			*dst = v
		}
		table = append(table, rec)
	}
	return table, nil
}

func scaleCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// parseScale reads a scale cell. Files written by the original system may
// carry float renderings like "5.0" once a column held missing values, so
// whole floats are accepted too.
func parseScale(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil, fmt.Errorf("invalid scale value %q", s)
	}
	n := int(f)
	return &n, nil
}
