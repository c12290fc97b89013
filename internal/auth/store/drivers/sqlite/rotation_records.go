package sqlite

import (
	"context"
	"time"
)

// rotationRecordsRepo keeps one row per subject. Expired rows are invisible
// to Get and removed by DeleteExpired.
type rotationRecordsRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *rotationRecordsRepo) Put(ctx context.Context, subjectID, hashedSecret string, ttl time.Duration) error {
	expiresAt := r.now().Add(ttl).UnixMilli()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO rotation_records (subject_id, secret_hash, expires_at)
VALUES (?, ?, ?)
ON CONFLICT (subject_id) DO UPDATE SET
    secret_hash = excluded.secret_hash,
    expires_at  = excluded.expires_at`,
		subjectID, hashedSecret, expiresAt,
	)
	return err
}

func (r *rotationRecordsRepo) Get(ctx context.Context, subjectID string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT secret_hash FROM rotation_records WHERE subject_id = ? AND expires_at > ?`,
		subjectID, r.now().UnixMilli(),
	).Scan(&hash)
	if err != nil {
		return "", mapNotFound(err)
	}
	return hash, nil
}

func (r *rotationRecordsRepo) Delete(ctx context.Context, subjectID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rotation_records WHERE subject_id = ?`, subjectID)
	return err
}

func (r *rotationRecordsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM rotation_records WHERE expires_at <= ?`,
		r.now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
