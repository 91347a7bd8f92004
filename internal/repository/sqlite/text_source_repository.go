package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
)

type textSourceRepository struct {
	db *sql.DB
}

// NewTextSourceRepository creates a new TextSourceRepository implementation
func NewTextSourceRepository(db *sql.DB) repository.TextSourceRepository {
	return &textSourceRepository{db: db}
}

func (r *textSourceRepository) Insert(ctx context.Context, src models.TextSource) error {
	log := logger.FromContext(ctx).WithPrefix("source_repo")
	log.Debug("inserting text source: id=%s, title=%s", src.ID, src.Title)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO text_sources (id, title, content, uploaded, created_at)
VALUES (?, ?, ?, ?, ?)
`, src.ID, src.Title, src.Content, src.Uploaded, src.CreatedAt)
	if err != nil {
		log.Error("failed to insert text source: %v", err)
	}
	return err
}

func (r *textSourceRepository) Get(ctx context.Context, id string) (*models.TextSource, error) {
	log := logger.FromContext(ctx).WithPrefix("source_repo")

	var src models.TextSource
	err := r.db.QueryRowContext(ctx, `
SELECT id, title, content, uploaded, created_at
FROM text_sources
WHERE id = ?
`, id).Scan(&src.ID, &src.Title, &src.Content, &src.Uploaded, &src.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("text source not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get text source: %v", err)
		return nil, err
	}
	return &src, nil
}

func (r *textSourceRepository) List(ctx context.Context) ([]models.TextSource, error) {
	log := logger.FromContext(ctx).WithPrefix("source_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, content, uploaded, created_at
FROM text_sources
ORDER BY created_at DESC
`)
	if err != nil {
		log.Error("failed to query text sources: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sources []models.TextSource
	for rows.Next() {
		var src models.TextSource
		if err := rows.Scan(&src.ID, &src.Title, &src.Content, &src.Uploaded, &src.CreatedAt); err != nil {
			log.Error("failed to scan text source row: %v", err)
			return nil, err
		}
		sources = append(sources, src)
	}
	log.Debug("found %d text sources", len(sources))
	return sources, rows.Err()
}

func (r *textSourceRepository) MarkUploaded(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("source_repo")
	log.Debug("marking text source uploaded: id=%s", id)

	_, err := r.db.ExecContext(ctx, `UPDATE text_sources SET uploaded = 1 WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to mark text source uploaded: %v", err)
	}
	return err
}

func (r *textSourceRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("source_repo")
	log.Debug("deleting text source: id=%s", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM text_sources WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete text source: %v", err)
	}
	return err
}
