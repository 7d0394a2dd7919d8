package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mercado-api/internal/domain"
)

// ErrDuplicate señala una violación de unicidad en la base.
// La existencia previa se detecta por el constraint, no con check-then-create.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmailAndRole(ctx context.Context, email, role string) (domain.User, error)
	ListByEmail(ctx context.Context, email string) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id, name, profilePicture string) error
	GetTokenEpoch(ctx context.Context, id string) (int, error)
	BumpTokenEpoch(ctx context.Context, id string) (int, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role, profile_picture, token_epoch, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ProfilePicture,
		user.TokenEpoch,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = userSelect + ` WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmailAndRole(ctx context.Context, email, role string) (domain.User, error) {
	const query = userSelect + ` WHERE email = $1 AND role = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, email, role))
}

func (r *PgUserRepository) ListByEmail(ctx context.Context, email string) ([]domain.User, error) {
	const query = userSelect + ` WHERE email = $1 ORDER BY created_at`
	return r.queryMany(ctx, query, email)
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = userSelect + ` ORDER BY created_at`
	return r.queryMany(ctx, query)
}

func (r *PgUserRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id, name, profilePicture string) error {
	const query = `
		UPDATE users SET name = $2, profile_picture = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, name, profilePicture)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) GetTokenEpoch(ctx context.Context, id string) (int, error) {
	const query = `SELECT token_epoch FROM users WHERE id = $1`
	var epoch int
	err := r.pool.QueryRow(ctx, query, id).Scan(&epoch)
	return epoch, err
}

// BumpTokenEpoch invalida los tokens emitidos hasta ahora para el usuario.
func (r *PgUserRepository) BumpTokenEpoch(ctx context.Context, id string) (int, error) {
	const query = `
		UPDATE users SET token_epoch = token_epoch + 1, updated_at = now()
		WHERE id = $1
		RETURNING token_epoch
	`
	var epoch int
	err := r.pool.QueryRow(ctx, query, id).Scan(&epoch)
	return epoch, err
}

const userSelect = `
	SELECT id, name, email, password_hash, role, profile_picture, token_epoch, created_at, updated_at
	FROM users`

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.ProfilePicture,
		&u.TokenEpoch,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
