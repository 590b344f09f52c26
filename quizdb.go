package timedquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the sqlite-backed question bank and result history
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenDB opens the sqlite database at dbPath and creates the tables
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	qdb := &DB{db: db, now: time.Now}
	if err := qdb.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}
	return qdb, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			answer TEXT NOT NULL,
			explanation TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			attempt_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_results_attempt_id ON results(attempt_id)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateQuestion creates a new question in the database
func (db *DB) CreateQuestion(ctx context.Context, q *Question) error {
	if err := ValidateQuestion(q); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	optionsJSON, err := OptionsToJSON(q.Options)
	if err != nil {
		return err
	}

	_, err = db.db.ExecContext(ctx,
		"INSERT INTO questions (id, text, options, answer, explanation) VALUES (?, ?, ?, ?, ?)",
		q.ID, q.Text, optionsJSON, q.Answer, q.Explanation,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// ListQuestions returns the whole question bank in insertion order
func (db *DB) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, text, options, answer, explanation FROM questions ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		var optionsJSON string
		if err := rows.Scan(&q.ID, &q.Text, &optionsJSON, &q.Answer, &q.Explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if q.Options, err = JSONToOptions(optionsJSON); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// CreateResult appends a submitted attempt. Repeated submissions of the same
// attempt are ignored and the stored result is returned.
func (db *DB) CreateResult(ctx context.Context, attemptID string, score, total int) (*Result, error) {
	if err := checkResult(attemptID, score, total); err != nil {
		return nil, err
	}

	_, err := db.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO results (id, attempt_id, score, total, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), attemptID, score, total, db.now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create result: %w", err)
	}

	var r Result
	err = db.db.QueryRowContext(ctx,
		"SELECT id, attempt_id, score, total, created_at FROM results WHERE attempt_id = ?", attemptID,
	).Scan(&r.ID, &r.AttemptID, &r.Score, &r.Total, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	return &r, nil
}

// ListResults returns every result, newest first
func (db *DB) ListResults(ctx context.Context) ([]Result, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, attempt_id, score, total, created_at FROM results ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.AttemptID, &r.Score, &r.Total, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return results, nil
}

// Helper function to convert options slice to JSON string
func OptionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// Helper function to convert JSON string to options slice
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}
