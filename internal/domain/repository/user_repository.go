package repository

import (
	"context"

	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas devuelven (nil, nil) cuando no hay fila.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// GetByLogin busca por username o email (login acepta cualquiera).
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// UpdateProfile actualiza datos de perfil; nunca el rol ni la contraseña.
	UpdateProfile(ctx context.Context, user *entity.User) error
}
