package timedquiz

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
)

// QuestionStore holds the question bank
type QuestionStore interface {
	ListQuestions(ctx context.Context) ([]Question, error)
	// CreateQuestion validates q, assigns an id when it has none and stores it.
	CreateQuestion(ctx context.Context, q *Question) error
}

// ResultStore holds submitted attempts, newest first on listing
type ResultStore interface {
	// CreateResult stores the result of attempt attemptID. A second call for the
	// same attempt stores nothing and returns the result saved first.
	CreateResult(ctx context.Context, attemptID string, score, total int) (*Result, error)
	ListResults(ctx context.Context) ([]Result, error)
}

// Store is a question bank and result history backed by one database
type Store interface {
	QuestionStore
	ResultStore
	Close() error
}

// OpenStore opens the store selected by cfg.Driver
func OpenStore(cfg DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		db, err := OpenDB(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		return OpenGormStore(postgres.Open(cfg.DSN))
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

func checkResult(attemptID string, score, total int) error {
	if attemptID == "" {
		return fmt.Errorf("result has no attempt id")
	}
	if score < 0 || total < 0 || score > total {
		return fmt.Errorf("invalid result %d/%d", score, total)
	}
	return nil
}
