package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
)

type syncOperationRepository struct {
	db *sql.DB
}

// NewSyncOperationRepository creates a new SyncOperationRepository implementation
func NewSyncOperationRepository(db *sql.DB) repository.SyncOperationRepository {
	return &syncOperationRepository{db: db}
}

const syncOperationColumns = "id, kind, payload, related_id, created_at, retry_count, processed, processed_at, last_retry_at"

func (r *syncOperationRepository) Insert(ctx context.Context, op models.SyncOperation) error {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")
	log.Debug("inserting sync operation: id=%s, kind=%s, related_id=%s", op.ID, op.Kind, op.RelatedID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sync_operations (id, kind, payload, related_id, created_at, retry_count, processed)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, op.ID, op.Kind, []byte(op.Payload), op.RelatedID, op.CreatedAt, op.RetryCount, op.Processed)
	if err != nil {
		log.Error("failed to insert sync operation: %v", err)
	}
	return err
}

func (r *syncOperationRepository) Get(ctx context.Context, id string) (*models.SyncOperation, error) {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+syncOperationColumns+` FROM sync_operations WHERE id = ?`, id)
	op, err := scanSyncOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("sync operation not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get sync operation: %v", err)
		return nil, err
	}
	return op, nil
}

func (r *syncOperationRepository) List(ctx context.Context) ([]models.SyncOperation, error) {
	return r.query(ctx, sqlBuilder.
		Select(syncOperationColumns).
		From("sync_operations").
		OrderBy("created_at ASC"))
}

// DrainCandidates returns unprocessed operations below the retry ceiling,
// oldest first. Generation order is processing order.
func (r *syncOperationRepository) DrainCandidates(ctx context.Context, maxRetries int) ([]models.SyncOperation, error) {
	return r.query(ctx, sqlBuilder.
		Select(syncOperationColumns).
		From("sync_operations").
		Where(squirrel.Eq{"processed": false}).
		Where(squirrel.Lt{"retry_count": maxRetries}).
		OrderBy("created_at ASC"))
}

func (r *syncOperationRepository) ListExhausted(ctx context.Context, maxRetries int) ([]models.SyncOperation, error) {
	return r.query(ctx, sqlBuilder.
		Select(syncOperationColumns).
		From("sync_operations").
		Where(squirrel.Eq{"processed": false}).
		Where(squirrel.GtOrEq{"retry_count": maxRetries}).
		OrderBy("created_at ASC"))
}

func (r *syncOperationRepository) query(ctx context.Context, qb squirrel.SelectBuilder) ([]models.SyncOperation, error) {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")

	query, args, err := qb.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query sync operations: %v", err)
		return nil, err
	}
	defer rows.Close()

	var ops []models.SyncOperation
	for rows.Next() {
		op, err := scanSyncOperation(rows)
		if err != nil {
			log.Error("failed to scan sync operation row: %v", err)
			return nil, err
		}
		ops = append(ops, *op)
	}
	log.Debug("found %d sync operations", len(ops))
	return ops, rows.Err()
}

func (r *syncOperationRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")
	log.Debug("marking sync operation processed: id=%s", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE sync_operations SET processed = 1, processed_at = ? WHERE id = ?
`, at, id)
	if err != nil {
		log.Error("failed to mark sync operation processed: %v", err)
	}
	return err
}

func (r *syncOperationRepository) MarkFailed(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")
	log.Debug("marking sync operation failed: id=%s", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE sync_operations SET retry_count = retry_count + 1, last_retry_at = ? WHERE id = ?
`, at, id)
	if err != nil {
		log.Error("failed to mark sync operation failed: %v", err)
	}
	return err
}

func (r *syncOperationRepository) CountPending(ctx context.Context, maxRetries int) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM sync_operations WHERE processed = 0 AND retry_count < ?`, maxRetries)
}

func (r *syncOperationRepository) CountExhausted(ctx context.Context, maxRetries int) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM sync_operations WHERE processed = 0 AND retry_count >= ?`, maxRetries)
}

func (r *syncOperationRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count sync operations: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *syncOperationRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")
	log.Debug("deleting processed sync operations before %v", cutoff)

	res, err := r.db.ExecContext(ctx, `
DELETE FROM sync_operations WHERE processed = 1 AND processed_at < ?
`, cutoff)
	if err != nil {
		log.Error("failed to delete processed sync operations: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("deleted %d processed sync operations", n)
	return n, nil
}

func (r *syncOperationRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("syncop_repo")
	log.Warn("deleting all sync operations")

	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_operations`)
	if err != nil {
		log.Error("failed to delete sync operations: %v", err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncOperation(row rowScanner) (*models.SyncOperation, error) {
	var op models.SyncOperation
	var payload []byte
	var processedAt, lastRetryAt sql.NullTime
	if err := row.Scan(&op.ID, &op.Kind, &payload, &op.RelatedID, &op.CreatedAt,
		&op.RetryCount, &op.Processed, &processedAt, &lastRetryAt); err != nil {
		return nil, err
	}
	op.Payload = payload
	if processedAt.Valid {
		op.ProcessedAt = &processedAt.Time
	}
	if lastRetryAt.Valid {
		op.LastRetryAt = &lastRetryAt.Time
	}
	return &op, nil
}
