package triggers

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed Sink, the reference persistence adapter for
// trigger consumers that outlive the process.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) a trigger database at path. Use
// ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trigger store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS triggers (
			time DOUBLE NOT NULL,
			time_start DOUBLE NOT NULL,
			time_end DOUBLE NOT NULL,
			frequency DOUBLE NOT NULL,
			frequency_start DOUBLE NOT NULL,
			frequency_end DOUBLE NOT NULL,
			q DOUBLE NOT NULL,
			snr DOUBLE NOT NULL,
			amplitude DOUBLE NOT NULL,
			phase DOUBLE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_triggers_time ON triggers(time);
		CREATE TABLE IF NOT EXISTS processed_segments (
			segment_start DOUBLE NOT NULL,
			segment_end DOUBLE NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create trigger tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Append implements Sink.
func (s *Store) Append(t Trigger) error {
	_, err := s.db.Exec(
		`INSERT INTO triggers
		 (time, time_start, time_end, frequency, frequency_start, frequency_end, q, snr, amplitude, phase)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Time, t.TimeStart, t.TimeEnd,
		t.Frequency, t.FrequencyStart, t.FrequencyEnd,
		t.Q, t.SNR, t.Amplitude, t.Phase,
	)
	if err != nil {
		return fmt.Errorf("insert trigger: %w", err)
	}
	return nil
}

// AddProcessedSegment implements Sink.
func (s *Store) AddProcessedSegment(start, end float64) error {
	_, err := s.db.Exec(
		`INSERT INTO processed_segments (segment_start, segment_end) VALUES (?, ?)`,
		start, end,
	)
	if err != nil {
		return fmt.Errorf("insert processed segment: %w", err)
	}
	return nil
}

// CountTriggers returns the number of stored triggers.
func (s *Store) CountTriggers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM triggers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count triggers: %w", err)
	}
	return n, nil
}

// TriggersBetween returns the stored triggers with central time in
// [start, end), ordered by time.
func (s *Store) TriggersBetween(start, end float64) ([]Trigger, error) {
	rows, err := s.db.Query(
		`SELECT time, time_start, time_end, frequency, frequency_start, frequency_end, q, snr, amplitude, phase
		 FROM triggers WHERE time >= ? AND time < ? ORDER BY time`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query triggers: %w", err)
	}
	defer rows.Close()

	var out []Trigger
	for rows.Next() {
		var t Trigger
		if err := rows.Scan(&t.Time, &t.TimeStart, &t.TimeEnd,
			&t.Frequency, &t.FrequencyStart, &t.FrequencyEnd,
			&t.Q, &t.SNR, &t.Amplitude, &t.Phase); err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
