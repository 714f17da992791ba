package transcript

import (
	"context"
	"time"

	"github.com/kbukum/scribe/database"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

const defaultListLimit = 50

// record is the row shape of a persisted result.
type record struct {
	ID           string `gorm:"primaryKey;size:36"`
	Text         string `gorm:"not null"`
	EnhancedText *string
	Duration     float64
	AudioRef     string
	Backend      string    `gorm:"size:16;index"`
	Language     string    `gorm:"size:16"`
	CreatedAt    time.Time `gorm:"index"`
}

func (record) TableName() string { return "transcriptions" }

func fromResult(r *transcription.Result) record {
	return record{
		ID:           r.ID,
		Text:         r.Text,
		EnhancedText: r.EnhancedText,
		Duration:     r.Duration,
		AudioRef:     r.AudioRef,
		Backend:      r.Backend,
		Language:     r.Language,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func (rec record) toResult() *transcription.Result {
	return &transcription.Result{
		ID:           rec.ID,
		Text:         rec.Text,
		EnhancedText: rec.EnhancedText,
		Duration:     rec.Duration,
		AudioRef:     rec.AudioRef,
		Backend:      rec.Backend,
		Language:     rec.Language,
		CreatedAt:    rec.CreatedAt.UTC(),
	}
}

// Store persists transcription results in SQLite.
type Store struct {
	db *database.DB
}

// NewStore migrates the schema and returns a Store on db.
func NewStore(db *database.DB) (*Store, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, database.FromDatabase(err, "migrate")
	}
	return &Store{db: db}, nil
}

// Save inserts r. Saving the same ID twice fails.
func (s *Store) Save(ctx context.Context, r *transcription.Result) error {
	if r == nil || r.ID == "" {
		return apperrors.Validation("result id is required")
	}
	rec := fromResult(r)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return database.FromDatabase(err, "save")
	}
	return nil
}

// Get loads the result with id.
func (s *Store) Get(ctx context.Context, id string) (*transcription.Result, error) {
	var rec record
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, database.FromDatabase(err, "get")
	}
	return rec.toResult(), nil
}

// List returns up to limit results, newest first. A non-positive limit uses
// the default.
func (s *Store) List(ctx context.Context, limit int) ([]*transcription.Result, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var recs []record
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, database.FromDatabase(err, "list")
	}
	out := make([]*transcription.Result, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toResult())
	}
	return out, nil
}
