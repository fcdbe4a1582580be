package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/chapterize/internal/domain/model"
	"github.com/hszk-dev/chapterize/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VideoRepository implements repository.VideoRepository using PostgreSQL.
// Chapters are stored as a JSONB column; frequency increments are a single
// UPDATE so concurrent lookups for the same video never lose counts.
type VideoRepository struct {
	db DBTX
}

// NewVideoRepository creates a new VideoRepository instance.
func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create persists a new video record.
func (r *VideoRepository) Create(ctx context.Context, record *model.VideoRecord) error {
	const query = `
		INSERT INTO videos (video_id, frequency, chapters, transcript, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	chapters, err := json.Marshal(record.Chapters)
	if err != nil {
		return fmt.Errorf("failed to marshal chapters: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		record.VideoID,
		record.Frequency,
		chapters,
		record.Transcript,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateVideo
		}
		return fmt.Errorf("failed to create video record: %w", err)
	}

	return nil
}

// GetByID retrieves a video record by its video ID.
func (r *VideoRepository) GetByID(ctx context.Context, videoID string) (*model.VideoRecord, error) {
	const query = `
		SELECT video_id, frequency, chapters, transcript, created_at
		FROM videos
		WHERE video_id = $1
	`

	record, err := scanVideoRecord(r.db.QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video record: %w", err)
	}

	return record, nil
}

// IncrementFrequency atomically increments a record's access counter.
// The increment happens inside the UPDATE statement, so concurrent calls
// for the same video ID serialize on the row and none are lost.
func (r *VideoRepository) IncrementFrequency(ctx context.Context, videoID string) error {
	const query = `
		UPDATE videos
		SET frequency = frequency + 1
		WHERE video_id = $1
	`

	tag, err := r.db.Exec(ctx, query, videoID)
	if err != nil {
		return fmt.Errorf("failed to increment frequency: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// ListByFrequency retrieves all records ordered by popularity.
// created_at ascending breaks frequency ties so the ranking is deterministic.
func (r *VideoRepository) ListByFrequency(ctx context.Context) ([]*model.VideoRecord, error) {
	const query = `
		SELECT video_id, frequency, chapters, transcript, created_at
		FROM videos
		ORDER BY frequency DESC, created_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query video records: %w", err)
	}
	defer rows.Close()

	var records []*model.VideoRecord
	for rows.Next() {
		record, err := scanVideoRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video records: %w", err)
	}

	return records, nil
}

// scanVideoRecord scans a single row into a VideoRecord model.
func scanVideoRecord(row pgx.Row) (*model.VideoRecord, error) {
	var (
		record   model.VideoRecord
		chapters []byte
	)

	err := row.Scan(
		&record.VideoID,
		&record.Frequency,
		&chapters,
		&record.Transcript,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(chapters, &record.Chapters); err != nil {
		return nil, fmt.Errorf("unmarshal chapters: %w", err)
	}

	return &record, nil
}

// Compile-time verification that VideoRepository implements repository.VideoRepository.
var _ repository.VideoRepository = (*VideoRepository)(nil)
