// Package store persists netlist submissions and their validation reports
// in SQLite. The report is stored verbatim next to the original document,
// the submission timestamp, and the caller identity.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/circuitsmith/boardlint/engine/rules"
)

// ErrNotFound marks lookups for absent or foreign submissions.
var ErrNotFound = errors.New("submission not found")

// Submission is one stored netlist with its validation report.
type Submission struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	CreatedAt string          `json:"createdAt"`
	Netlist   json.RawMessage `json:"netlist"`
	Report    rules.Report    `json:"validation"`
}

// Summary is a listing row.
type Summary struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	Status    string `json:"status"`
}

// SQLiteStore implements submission persistence on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for tests.
func Open(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert stores a new submission and returns it with id and timestamp set.
func (s *SQLiteStore) Insert(ctx context.Context, userID string, netlist json.RawMessage, report rules.Report) (Submission, error) {
	sub := Submission{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Netlist:   netlist,
		Report:    report,
	}
	validation, err := json.Marshal(report)
	if err != nil {
		return Submission{}, fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, user_id, created_at, netlist, validation) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.CreatedAt, string(netlist), string(validation),
	)
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// List returns the caller's submissions, newest first, plus the total count.
func (s *SQLiteStore) List(ctx context.Context, userID string, limit, skip int) (int, []Summary, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count submissions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, validation FROM submissions
		 WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		userID, limit, skip,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	items := []Summary{}
	for rows.Next() {
		var (
			item       Summary
			validation string
		)
		if err := rows.Scan(&item.ID, &item.CreatedAt, &validation); err != nil {
			return 0, nil, fmt.Errorf("scan submission: %w", err)
		}
		item.Status = decodeReport([]byte(validation)).Status
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return total, items, nil
}

// Get returns one submission, only when it belongs to the caller.
func (s *SQLiteStore) Get(ctx context.Context, id, userID string) (Submission, error) {
	var (
		sub        Submission
		netlist    string
		validation string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, netlist, validation FROM submissions
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&sub.ID, &sub.UserID, &sub.CreatedAt, &netlist, &validation)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, fmt.Errorf("get submission: %w", err)
	}
	sub.Netlist = json.RawMessage(netlist)
	sub.Report = decodeReport([]byte(validation))
	return sub, nil
}
