package dto

import "time"

// RegisterRequest entrada para registro (auth). El rol solo puede ser buyer o seller.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=buyer seller"`
}

// LoginRequest entrada para login: username o email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	Name               string    `json:"name"`
	DeliveryAddress    string    `json:"delivery_address,omitempty"`
	Location           string    `json:"location"`
	Background         string    `json:"background"`
	ProfileImageURL    string    `json:"profile_image_url"`
	BackgroundImageURL string    `json:"background_image_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateProfileRequest actualización parcial del perfil (campos nil no cambian).
type UpdateProfileRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=1,max=120"`
	Location           *string `json:"location" validate:"omitempty,max=200"`
	Background         *string `json:"background" validate:"omitempty,max=1000"`
	ProfileImageURL    *string `json:"profile_image_url" validate:"omitempty,max=300"`
	BackgroundImageURL *string `json:"background_image_url" validate:"omitempty,max=300"`
	DeliveryAddress    *string `json:"delivery_address" validate:"omitempty,max=300"`
}
