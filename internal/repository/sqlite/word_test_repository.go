package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
)

type wordTestRepository struct {
	db *sql.DB
}

// NewWordTestRepository creates a new WordTestRepository implementation
func NewWordTestRepository(db *sql.DB) repository.WordTestRepository {
	return &wordTestRepository{db: db}
}

func (r *wordTestRepository) Get(ctx context.Context, id string) (*models.WordTest, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	var w models.WordTest
	err := r.db.QueryRowContext(ctx, `
SELECT id, source_id, word, meaning, example, difficulty, created_at
FROM word_tests
WHERE id = ?
`, id).Scan(&w.ID, &w.SourceID, &w.Word, &w.Meaning, &w.Example, &w.Difficulty, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("word test not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get word test: %v", err)
		return nil, err
	}
	return &w, nil
}

func (r *wordTestRepository) UpsertBatch(ctx context.Context, tests []models.WordTest) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	if len(tests) == 0 {
		return nil
	}
	log.Debug("upserting %d word tests", len(tests))

	return tx(ctx, r.db, func(t *sql.Tx) error {
		stmt, err := t.PrepareContext(ctx, `
INSERT INTO word_tests (id, source_id, word, meaning, example, difficulty, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    word = excluded.word,
    meaning = excluded.meaning,
    example = excluded.example,
    difficulty = excluded.difficulty
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, w := range tests {
			if _, err := stmt.ExecContext(ctx, w.ID, w.SourceID, w.Word, w.Meaning, w.Example, w.Difficulty, w.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *wordTestRepository) List(ctx context.Context, filter models.WordTestFilter) ([]models.WordTest, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("listing word tests: source_id=%s, difficulty=%s", filter.SourceID, filter.Difficulty)

	qb := sqlBuilder.
		Select("id", "source_id", "word", "meaning", "example", "difficulty", "created_at").
		From("word_tests")

	// Dynamic WHERE clauses
	if filter.SourceID != "" {
		qb = qb.Where(squirrel.Eq{"source_id": filter.SourceID})
	}
	if filter.Difficulty != "" {
		qb = qb.Where(squirrel.Eq{"difficulty": filter.Difficulty})
	}
	qb = qb.OrderBy("created_at ASC", "id ASC")

	query, args, err := qb.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query word tests: %v", err)
		return nil, err
	}
	defer rows.Close()

	var tests []models.WordTest
	for rows.Next() {
		var w models.WordTest
		if err := rows.Scan(&w.ID, &w.SourceID, &w.Word, &w.Meaning, &w.Example, &w.Difficulty, &w.CreatedAt); err != nil {
			log.Error("failed to scan word test row: %v", err)
			return nil, err
		}
		tests = append(tests, w)
	}
	log.Debug("found %d word tests", len(tests))
	return tests, rows.Err()
}

func (r *wordTestRepository) IDsBySource(ctx context.Context, sourceID string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM word_tests WHERE source_id = ?`, sourceID)
	if err != nil {
		log.Error("failed to query word ids: %v", err)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *wordTestRepository) CountDistinctSources(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT source_id) FROM word_tests`).Scan(&n); err != nil {
		log.Error("failed to count sources: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *wordTestRepository) DeleteBySource(ctx context.Context, sourceID string) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("deleting word tests for source: %s", sourceID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM word_tests WHERE source_id = ?`, sourceID)
	if err != nil {
		log.Error("failed to delete word tests: %v", err)
	}
	return err
}
