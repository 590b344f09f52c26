package timedquiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type questionRecord struct {
	ID          string   `gorm:"primaryKey;size:64"`
	Text        string   `gorm:"type:text;not null"`
	Options     []string `gorm:"serializer:json;type:text;not null"`
	Answer      string   `gorm:"type:text;not null"`
	Explanation string   `gorm:"type:text;not null;default:''"`
	Seq         int64    `gorm:"autoIncrement:false;index;not null"`
}

func (questionRecord) TableName() string {
	return "questions"
}

type resultRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	AttemptID string    `gorm:"size:64;not null;uniqueIndex"`
	Score     int       `gorm:"not null"`
	Total     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
	Seq       int64     `gorm:"autoIncrement:false;not null"`
}

func (rec resultRecord) toResult() *Result {
	return &Result{ID: rec.ID, AttemptID: rec.AttemptID, Score: rec.Score, Total: rec.Total, CreatedAt: rec.CreatedAt}
}

func (resultRecord) TableName() string {
	return "results"
}

// GormStore is the question bank and result history on any gorm dialect.
// Production uses postgres; tests use sqlite.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenGormStore opens dialector and migrates the schema
func OpenGormStore(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{PrepareStmt: false})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&questionRecord{}, &resultRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

// Close closes the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateQuestion(ctx context.Context, q *Question) error {
	if err := ValidateQuestion(q); err != nil {
		return err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Model(&questionRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&seq).Error; err != nil {
			return fmt.Errorf("failed to get question sequence: %w", err)
		}
		rec := questionRecord{
			ID:          q.ID,
			Text:        q.Text,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
			Seq:         seq + 1,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		return nil
	})
}

func (s *GormStore) ListQuestions(ctx context.Context) ([]Question, error) {
	var recs []questionRecord
	if err := s.db.WithContext(ctx).Order("seq").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	questions := make([]Question, 0, len(recs))
	for _, rec := range recs {
		questions = append(questions, Question{
			ID:          rec.ID,
			Text:        rec.Text,
			Options:     rec.Options,
			Answer:      rec.Answer,
			Explanation: rec.Explanation,
		})
	}
	return questions, nil
}

// CreateResult stores the result unless attemptID already has one. Seq breaks
// ties between results created at the same instant.
func (s *GormStore) CreateResult(ctx context.Context, attemptID string, score, total int) (*Result, error) {
	if err := checkResult(attemptID, score, total); err != nil {
		return nil, err
	}

	var stored resultRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Model(&resultRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&seq).Error; err != nil {
			return fmt.Errorf("failed to get result sequence: %w", err)
		}
		rec := resultRecord{
			ID:        uuid.NewString(),
			AttemptID: attemptID,
			Score:     score,
			Total:     total,
			CreatedAt: s.now().UTC(),
			Seq:       seq + 1,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}},
			DoNothing: true,
		}).Create(&rec).Error
		if err != nil {
			return fmt.Errorf("failed to create result: %w", err)
		}
		if err := tx.Where("attempt_id = ?", attemptID).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to read result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored.toResult(), nil
}

func (s *GormStore) ListResults(ctx context.Context) ([]Result, error) {
	var recs []resultRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("seq DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	results := make([]Result, 0, len(recs))
	for _, rec := range recs {
		results = append(results, *rec.toResult())
	}
	return results, nil
}
