package persistence

import (
	"database/sql"
	"errors"
	"strings"
)

// SQLiteInstanceStore is an InstanceStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteInstanceStore struct {
	db *sql.DB
}

var _ InstanceStore = (*SQLiteInstanceStore)(nil)

// NewSQLiteInstanceStore initializes the required schema in the given
// database and returns a new SQLiteInstanceStore.
func NewSQLiteInstanceStore(db *sql.DB) (*SQLiteInstanceStore, error) {
	s := &SQLiteInstanceStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteInstanceStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS instances (
			id TEXT PRIMARY KEY,
			model_name TEXT NOT NULL,
			done INTEGER NOT NULL,
			events BLOB
		);`,
	)
	return err
}

func (s *SQLiteInstanceStore) SaveInstance(rec *InstanceRecord) error {
	events, err := EncodeEvents(rec.Events)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO instances (id, model_name, done, events)
		VALUES (?, ?, ?, ?)`,
		rec.ID,
		rec.ModelName,
		boolToInt(rec.Done),
		events,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrInstanceExists
	}
	return err
}

func (s *SQLiteInstanceStore) UpdateInstance(rec *InstanceRecord) error {
	events, err := EncodeEvents(rec.Events)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE instances
		SET model_name = ?, done = ?, events = ?
		WHERE id = ?`,
		rec.ModelName,
		boolToInt(rec.Done),
		events,
		rec.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInstanceNotFound
	}

	return nil
}

func (s *SQLiteInstanceStore) GetInstance(id string) (*InstanceRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, model_name, done, events
		FROM instances
		WHERE id = ?`,
		id,
	)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstanceNotFound
	}
	return rec, err
}

func (s *SQLiteInstanceStore) ListInstances(filter InstanceFilter) ([]*InstanceRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, model_name, done, events
		FROM instances
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*InstanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		if filter.matches(rec) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

func scanRecord(scan func(...any) error) (*InstanceRecord, error) {
	var rec InstanceRecord
	var done int
	var events []byte
	if err := scan(&rec.ID, &rec.ModelName, &done, &events); err != nil {
		return nil, err
	}
	rec.Done = done != 0
	evs, err := DecodeEvents(events)
	if err != nil {
		return nil, err
	}
	rec.Events = evs
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint violations as plain errors;
	// the message is the only portable signal via database/sql.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
