package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPRequest solicita um código de redefinição de senha.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordReset redefine a senha com um código OTP válido.
type PasswordReset struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// OTPResponse confirma a emissão do código. OTP só é preenchido fora de produção.
type OTPResponse struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// MessageResponse é uma confirmação simples.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse é devolvido por registro e login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
