package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/agrimarket-api/internal/application/dto"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/jhoicas/agrimarket-api/internal/domain/repository"
	"github.com/jhoicas/agrimarket-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	hashCost int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, hashCost: bcrypt.DefaultCost}
}

// WithHashCost cambia el costo de bcrypt (los tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithHashCost(cost int) *AuthUseCase {
	uc.hashCost = cost
	return uc
}

// Register crea un comprador o vendedor: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el username o el email ya existen.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil || role == entity.RoleAdmin {
		return nil, domain.ErrInvalidInput
	}
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || len(in.Password) < 6 {
		return nil, domain.ErrInvalidInput
	}
	exists, err := uc.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.hashCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Login verifica username/email y password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecto responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByLogin(ctx, strings.TrimSpace(in.Login))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role.String(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  ToUserResponse(user),
	}, nil
}

// ToUserResponse convierte la entidad en su salida HTTP (sin hash).
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		Role:               u.Role.String(),
		Name:               u.Name,
		DeliveryAddress:    u.DeliveryAddress,
		Location:           u.Location,
		Background:         u.Background,
		ProfileImageURL:    u.ProfileImageURL,
		BackgroundImageURL: u.BackgroundImageURL,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
