package match

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Journal records per-row lookup outcomes in a local sqlite file so an
// interrupted run can be resumed without re-querying names that already
// resolved. Unresolved names are recorded too, but a rerun tries them again.
type Journal struct {
	db *sql.DB
}

// Outcome is one recorded lookup result.
type Outcome struct {
	QCode    string
	Label    string
	DOB      string
	Resolved bool
}

// OpenJournal opens or creates the journal file.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	row_idx  INTEGER NOT NULL,
	name     TEXT    NOT NULL,
	qcode    TEXT    NOT NULL DEFAULT '',
	label    TEXT    NOT NULL DEFAULT '',
	dob      TEXT    NOT NULL DEFAULT '',
	resolved INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (row_idx, name)
)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Lookup returns the recorded outcome for a row, if any.
func (j *Journal) Lookup(rowIdx int, name string) (Outcome, bool, error) {
	var o Outcome
	var resolved int
	err := j.db.QueryRow(
		`SELECT qcode, label, dob, resolved FROM lookups WHERE row_idx = ? AND name = ?`,
		rowIdx, name,
	).Scan(&o.QCode, &o.Label, &o.DOB, &resolved)
	if err == sql.ErrNoRows {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, fmt.Errorf("journal lookup: %w", err)
	}
	o.Resolved = resolved != 0
	return o, true, nil
}

// Record stores or replaces the outcome for a row.
func (j *Journal) Record(rowIdx int, name string, o Outcome) error {
	resolved := 0
	if o.Resolved {
		resolved = 1
	}
	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO lookups (row_idx, name, qcode, label, dob, resolved)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rowIdx, name, o.QCode, o.Label, o.DOB, resolved,
	)
	if err != nil {
		return fmt.Errorf("journal record: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
