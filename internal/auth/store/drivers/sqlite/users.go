package sqlite

import (
	"context"
	"time"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/store"
)

type usersRepo struct {
	db  dbtx
	now func() time.Time
}

const selectPrincipal = `
SELECT id, username, nickname, role, password_hash, created_at, updated_at
FROM principals`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.Principal, error) {
	return r.scanOne(ctx, selectPrincipal+` WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.Principal, error) {
	return r.scanOne(ctx, selectPrincipal+` WHERE username = ?`, username)
}

func (r *usersRepo) scanOne(ctx context.Context, query string, arg string) (domain.Principal, error) {
	var p domain.Principal
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&p.Username,
		&p.Nickname,
		&p.Role,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, p domain.Principal) error {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO principals (id, username, nickname, role, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.Nickname, p.Role, p.PasswordHash, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM principals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE principals SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, r.now().UTC(), id,
	)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
