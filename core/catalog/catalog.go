// Package catalog maintains a SQLite index of ingested documents.
//
// Every ingested document gets one Record keyed by a random UUID. The
// record carries the content hash of the source bytes (see core/cas),
// the document version, entity counts, and the number of diagnostics
// reported at build time. The catalog never stores document content;
// the blob store does that.
//
// Two SQLite drivers are supported, selected at build time:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (-tags cgo_sqlite): mattn/go-sqlite3
package catalog

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/instrumatics/animl-go/core/animl"
	"github.com/instrumatics/animl-go/core/errors"
)

// DriverName returns the SQL driver name used by Open.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo" depending on the build.
func DriverType() string {
	return driverType
}

// IsCGO reports whether the CGO implementation is in use.
func IsCGO() bool {
	return driverType == "cgo"
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	source_hash TEXT NOT NULL,
	version     TEXT NOT NULL,
	samples     INTEGER NOT NULL,
	steps       INTEGER NOT NULL,
	series      INTEGER NOT NULL,
	diagnostics INTEGER NOT NULL,
	ingested_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(source_hash);
`

// Record describes one ingested document.
type Record struct {
	ID          string    `json:"id"`
	SourceHash  string    `json:"source_hash"`
	Version     string    `json:"version"`
	Samples     int       `json:"samples"`
	Steps       int       `json:"steps"`
	Series      int       `json:"series"`
	Diagnostics int       `json:"diagnostics"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// Summarize builds a Record for a document that was stored under the
// given content hash with the given number of build diagnostics.
func Summarize(doc *animl.Document, sourceHash string, diagnostics int) Record {
	stats := doc.Stats()
	return Record{
		ID:          uuid.NewString(),
		SourceHash:  sourceHash,
		Version:     doc.Version,
		Samples:     stats.Samples,
		Steps:       stats.Steps,
		Series:      stats.Series,
		Diagnostics: diagnostics,
		IngestedAt:  time.Now().UTC(),
	}
}

// Catalog is a SQLite-backed document index.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if necessary) the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open catalog %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize catalog schema")
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Insert stores a record. Inserting an ID that already exists fails.
func (c *Catalog) Insert(rec Record) error {
	_, err := c.db.Exec(
		`INSERT INTO documents (id, source_hash, version, samples, steps, series, diagnostics, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceHash, rec.Version,
		rec.Samples, rec.Steps, rec.Series, rec.Diagnostics,
		rec.IngestedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrapf(err, "insert record %s", rec.ID)
	}
	return nil
}

// Get returns the record with the given ID.
func (c *Catalog) Get(id string) (Record, error) {
	row := c.db.QueryRow(
		`SELECT id, source_hash, version, samples, steps, series, diagnostics, ingested_at
		 FROM documents WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, errors.NewNotFound("record", id)
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "get record %s", id)
	}
	return rec, nil
}

// FindByHash returns all records whose source hash matches.
func (c *Catalog) FindByHash(sourceHash string) ([]Record, error) {
	return c.query(
		`SELECT id, source_hash, version, samples, steps, series, diagnostics, ingested_at
		 FROM documents WHERE source_hash = ? ORDER BY ingested_at`, sourceHash)
}

// List returns all records, newest first.
func (c *Catalog) List() ([]Record, error) {
	return c.query(
		`SELECT id, source_hash, version, samples, steps, series, diagnostics, ingested_at
		 FROM documents ORDER BY ingested_at DESC`)
}

func (c *Catalog) query(q string, args ...any) ([]Record, error) {
	rows, err := c.db.Query(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query catalog")
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate records")
	}
	return recs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var ingested string
	err := s.Scan(&rec.ID, &rec.SourceHash, &rec.Version,
		&rec.Samples, &rec.Steps, &rec.Series, &rec.Diagnostics, &ingested)
	if err != nil {
		return Record{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, ingested)
	if err != nil {
		return Record{}, err
	}
	rec.IngestedAt = ts
	return rec, nil
}
