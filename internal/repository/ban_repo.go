package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mercado-api/internal/domain"
)

// BanRepository define el contrato de persistencia para suspensiones.
type BanRepository interface {
	Create(ctx context.Context, ban domain.Ban) error
	GetByUserID(ctx context.Context, userID string) (domain.Ban, error)
	DeleteByUserID(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.Ban, error)
}

// PgBanRepository implementa BanRepository usando pgxpool.
type PgBanRepository struct {
	pool *pgxpool.Pool
}

func NewPgBanRepository(pool *pgxpool.Pool) *PgBanRepository {
	return &PgBanRepository{pool: pool}
}

func (r *PgBanRepository) Create(ctx context.Context, ban domain.Ban) error {
	const query = `
		INSERT INTO bans (id, user_id, email, name, reason, banned_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		ban.ID,
		ban.UserID,
		ban.Email,
		ban.Name,
		ban.Reason,
		ban.BannedUntil,
		ban.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgBanRepository) GetByUserID(ctx context.Context, userID string) (domain.Ban, error) {
	const query = `
		SELECT id, user_id, email, name, reason, banned_until, created_at
		FROM bans
		WHERE user_id = $1
	`
	var b domain.Ban
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&b.ID,
		&b.UserID,
		&b.Email,
		&b.Name,
		&b.Reason,
		&b.BannedUntil,
		&b.CreatedAt,
	)
	if err != nil {
		return domain.Ban{}, err
	}
	return b, nil
}

func (r *PgBanRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM bans WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgBanRepository) List(ctx context.Context) ([]domain.Ban, error) {
	const query = `
		SELECT id, user_id, email, name, reason, banned_until, created_at
		FROM bans
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []domain.Ban
	for rows.Next() {
		var b domain.Ban
		if err := rows.Scan(&b.ID, &b.UserID, &b.Email, &b.Name, &b.Reason, &b.BannedUntil, &b.CreatedAt); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}
