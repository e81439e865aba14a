// Package vendorio reads the vendor extract files (CSV) into domain
// records. Unparseable files are logged, skipped and counted; a corrupt
// file never aborts a batch run, it only marks the output partial.
package vendorio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
)

// Audit accumulates what a loader excluded across a run.
type Audit struct {
	FilesRead   int
	FilesFailed int
	RowsRead    int
	RowsSkipped int
}

// Partial reports whether any input was excluded, marking downstream
// outputs as built from an incomplete extract.
func (a Audit) Partial() bool {
	return a.FilesFailed > 0 || a.RowsSkipped > 0
}

// Loader reads vendor files and keeps the running audit.
type Loader struct {
	log   zerolog.Logger
	audit Audit
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

func (l *Loader) Audit() Audit { return l.audit }

// decode unmarshals one CSV file into rows of T. A failure counts the
// file and returns nil; callers treat that as an empty table.
func decode[T any](l *Loader, path string) []T {
	f, err := os.Open(path)
	if err != nil {
		l.audit.FilesFailed++
		l.log.Error().Err(err).Str("path", path).Msg("vendor file unreadable, skipped")
		return nil
	}
	defer f.Close()

	var rows []T
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		l.audit.FilesFailed++
		l.log.Error().Err(err).Str("path", path).Msg("vendor file unparseable, skipped")
		return nil
	}
	l.audit.FilesRead++
	l.audit.RowsRead += len(rows)
	return rows
}

func (l *Loader) skipRow(path, reason string) {
	l.audit.RowsSkipped++
	l.log.Debug().Str("path", path).Str("reason", reason).Msg("vendor row skipped")
}

// Date is a calendar date CSV cell, format 2006-01-02. Empty cells stay
// zero.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format("2006-01-02"), nil
}

// Timestamp is a UTC timestamp CSV cell. Both the vendor space-separated
// format and RFC 3339 are accepted.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}

func (t Timestamp) MarshalCSV() (string, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.UTC().Format("2006-01-02 15:04:05"), nil
}

// Float is a nullable numeric CSV cell. gocsv decodes an empty cell
// into a non-nil zero-valued *float64, which is indistinguishable from
// a genuine zero; this type keeps the missing/zero distinction.
type Float struct {
	Value float64
	Valid bool
}

func (f *Float) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = Float{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = Float{Value: v, Valid: true}
	return nil
}

func (f Float) MarshalCSV() (string, error) {
	if !f.Valid {
		return "", nil
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64), nil
}

// Ptr returns the cell as a pointer, nil when the cell was empty.
func (f Float) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
