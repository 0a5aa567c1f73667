package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, email, password_hash, role, name, delivery_address, location, background,
		profile_image_url, background_image_url, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario y asigna el ID generado.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, name, delivery_address, location, background,
			profile_image_url, background_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role.String(), user.Name, user.DeliveryAddress,
		user.Location, user.Background, user.ProfileImageURL, user.BackgroundImageURL,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return wrapErr("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get user")
}

// GetByLogin obtiene un usuario por username o email (email sin distinguir mayúsculas).
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR lower(email) = lower($1) LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, login), "get user by login")
}

// ExistsByUsernameOrEmail indica si ya hay un usuario con ese username o email.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR lower(email) = lower($2))`
	var exists bool
	if err := r.q.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, wrapErr("exists user", err)
	}
	return exists, nil
}

// UpdateProfile actualiza los datos de perfil. El rol y el hash no se tocan.
func (r *UserRepo) UpdateProfile(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET name = $2, delivery_address = $3, location = $4, background = $5,
			profile_image_url = $6, background_image_url = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Name, user.DeliveryAddress, user.Location, user.Background,
		user.ProfileImageURL, user.BackgroundImageURL, user.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update user profile", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row pgx.Row, op string) (*entity.User, error) {
	var u entity.User
	var role string
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Name, &u.DeliveryAddress, &u.Location,
		&u.Background, &u.ProfileImageURL, &u.BackgroundImageURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	if u.Role, err = entity.ParseRole(role); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
