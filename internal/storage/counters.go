package storage

import "fmt"

// ServeCount pairs a joke position with the number of times it was served
type ServeCount struct {
	Position int   `json:"position"`
	Count    int64 `json:"count"`
}

// CounterStore tracks how often each joke position has been served.
// Counters are best-effort operational data, not part of the lookup contract.
type CounterStore struct {
	db *DB
}

// NewCounterStore creates a counter store over the given database
func NewCounterStore(db *DB) *CounterStore {
	return &CounterStore{db: db}
}

// RecordServe increments the serve counter for a joke position
func (s *CounterStore) RecordServe(position int) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO serve_counts (position, count) VALUES (?, 1)
		ON CONFLICT(position) DO UPDATE SET count = count + 1`, position)
	if err != nil {
		return fmt.Errorf("record serve: %w", err)
	}
	return nil
}

// TopServed returns the most-served joke positions, highest count first
func (s *CounterStore) TopServed(limit int) ([]ServeCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.conn.Query(`
		SELECT position, count FROM serve_counts
		ORDER BY count DESC, position ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top served: %w", err)
	}
	defer rows.Close()

	var counts []ServeCount
	for rows.Next() {
		var sc ServeCount
		if err := rows.Scan(&sc.Position, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan serve count: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate serve counts: %w", err)
	}
	return counts, nil
}

// TotalServed returns the sum of all serve counters
func (s *CounterStore) TotalServed() (int64, error) {
	var total int64
	err := s.db.conn.QueryRow(`SELECT COALESCE(SUM(count), 0) FROM serve_counts`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total served: %w", err)
	}
	return total, nil
}
