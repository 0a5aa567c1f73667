package profile

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/application/auth"
	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/access"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
)

// ProfileUseCase perfil del usuario autenticado.
type ProfileUseCase struct {
	repo repository.UserRepository
}

// NewProfileUseCase construye el caso de uso con el puerto de persistencia.
func NewProfileUseCase(repo repository.UserRepository) *ProfileUseCase {
	return &ProfileUseCase{repo: repo}
}

// Get devuelve el perfil del actor.
func (uc *ProfileUseCase) Get(ctx context.Context, actor access.Actor) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

// Update aplica los campos presentes. Solo los compradores tienen dirección de entrega.
func (uc *ProfileUseCase) Update(ctx context.Context, actor access.Actor, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.DeliveryAddress != nil {
		if user.Role != entity.RoleBuyer {
			return nil, domain.ErrInvalidInput
		}
		user.DeliveryAddress = strings.TrimSpace(*in.DeliveryAddress)
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.Background != nil {
		user.Background = *in.Background
	}
	if in.ProfileImageURL != nil {
		user.ProfileImageURL = *in.ProfileImageURL
	}
	if in.BackgroundImageURL != nil {
		user.BackgroundImageURL = *in.BackgroundImageURL
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

func (uc *ProfileUseCase) load(ctx context.Context, actor access.Actor) (*entity.User, error) {
	if actor.UserID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
