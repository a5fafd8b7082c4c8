package dto

import "time"

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse token JWT más el usuario autenticado.
type LoginResponse struct {
	Token string       `json:"access_token"`
	User  UserResponse `json:"user"`
}

// RegisterUserRequest alta de usuario (solo admin). El código USR-NNN se asigna
// en el servidor.
type RegisterUserRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// ResetPasswordRequest reseteo de contraseña por un admin.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UserResponse usuario sin campos sensibles.
type UserResponse struct {
	Code       string     `json:"code"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	Department string     `json:"department,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}
