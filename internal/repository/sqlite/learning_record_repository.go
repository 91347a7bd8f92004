package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
)

type learningRecordRepository struct {
	db *sql.DB
}

// NewLearningRecordRepository creates a new LearningRecordRepository implementation
func NewLearningRecordRepository(db *sql.DB) repository.LearningRecordRepository {
	return &learningRecordRepository{db: db}
}

func (r *learningRecordRepository) Get(ctx context.Context, wordID string) (*models.LearningRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")

	var rec models.LearningRecord
	err := r.db.QueryRowContext(ctx, `
SELECT word_id, is_memorized, review_count, last_reviewed, synced
FROM learning_records
WHERE word_id = ?
`, wordID).Scan(&rec.WordID, &rec.IsMemorized, &rec.ReviewCount, &rec.LastReviewed, &rec.Synced)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learning record not found: word_id=%s", wordID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learning record: %v", err)
		return nil, err
	}
	return &rec, nil
}

func (r *learningRecordRepository) Upsert(ctx context.Context, wordID string, isMemorized bool, reviewedAt time.Time) (*models.LearningRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	log.Debug("upserting learning record: word_id=%s, memorized=%v", wordID, isMemorized)

	var rec models.LearningRecord
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		// review_count starts at 1 and increments on every subsequent response;
		// any local change resets synced until the queue delivers it.
		if _, err := t.ExecContext(ctx, `
INSERT INTO learning_records (word_id, is_memorized, review_count, last_reviewed, synced)
VALUES (?, ?, 1, ?, 0)
ON CONFLICT(word_id) DO UPDATE SET
    is_memorized = excluded.is_memorized,
    review_count = review_count + 1,
    last_reviewed = excluded.last_reviewed,
    synced = 0
`, wordID, isMemorized, reviewedAt); err != nil {
			return err
		}
		return t.QueryRowContext(ctx, `
SELECT word_id, is_memorized, review_count, last_reviewed, synced
FROM learning_records
WHERE word_id = ?
`, wordID).Scan(&rec.WordID, &rec.IsMemorized, &rec.ReviewCount, &rec.LastReviewed, &rec.Synced)
	})
	if err != nil {
		log.Error("failed to upsert learning record: %v", err)
		return nil, err
	}
	log.Debug("learning record upserted: word_id=%s, review_count=%d", rec.WordID, rec.ReviewCount)
	return &rec, nil
}

func (r *learningRecordRepository) List(ctx context.Context) ([]models.LearningRecord, error) {
	return r.list(ctx, `
SELECT word_id, is_memorized, review_count, last_reviewed, synced
FROM learning_records
ORDER BY last_reviewed DESC
`)
}

func (r *learningRecordRepository) ListUnsynced(ctx context.Context) ([]models.LearningRecord, error) {
	return r.list(ctx, `
SELECT word_id, is_memorized, review_count, last_reviewed, synced
FROM learning_records
WHERE synced = 0
ORDER BY last_reviewed ASC
`)
}

func (r *learningRecordRepository) list(ctx context.Context, query string) ([]models.LearningRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query learning records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.LearningRecord
	for rows.Next() {
		var rec models.LearningRecord
		if err := rows.Scan(&rec.WordID, &rec.IsMemorized, &rec.ReviewCount, &rec.LastReviewed, &rec.Synced); err != nil {
			log.Error("failed to scan learning record row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d learning records", len(records))
	return records, rows.Err()
}

func (r *learningRecordRepository) MarkSynced(ctx context.Context, wordIDs []string) error {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	if len(wordIDs) == 0 {
		return nil
	}
	log.Debug("marking %d records synced", len(wordIDs))

	// Unknown word ids are a no-op, not an error.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(wordIDs)), ",")
	_, err := r.db.ExecContext(ctx,
		`UPDATE learning_records SET synced = 1 WHERE word_id IN (`+placeholders+`)`,
		stringArgs(wordIDs)...)
	if err != nil {
		log.Error("failed to mark records synced: %v", err)
	}
	return err
}

func (r *learningRecordRepository) Statistics(ctx context.Context) (*models.ProgressStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("record_repo")

	// Single query so a concurrent upsert cannot produce partial counts.
	var stats models.ProgressStatistics
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*),
    COALESCE(SUM(CASE WHEN is_memorized = 1 THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN is_memorized = 0 THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(review_count), 0)
FROM learning_records
`).Scan(&stats.TotalWords, &stats.MemorizedWords, &stats.NotMemorizedWords, &stats.TotalReviews)
	if err != nil {
		log.Error("failed to compute statistics: %v", err)
		return nil, err
	}
	log.Debug("statistics: total=%d, memorized=%d, reviews=%d", stats.TotalWords, stats.MemorizedWords, stats.TotalReviews)
	return &stats, nil
}

func (r *learningRecordRepository) DeleteByWords(ctx context.Context, wordIDs []string) error {
	log := logger.FromContext(ctx).WithPrefix("record_repo")
	if len(wordIDs) == 0 {
		return nil
	}
	log.Debug("deleting learning records for %d words", len(wordIDs))

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(wordIDs)), ",")
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM learning_records WHERE word_id IN (`+placeholders+`)`,
		stringArgs(wordIDs)...)
	if err != nil {
		log.Error("failed to delete learning records: %v", err)
	}
	return err
}
