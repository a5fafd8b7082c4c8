package auth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
	"github.com/jhoicas/Fabrica-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase autenticación y administración de usuarios.
// La verificación de contraseñas usa bcrypt; el esquema de hash es un
// colaborador opaco para el resto del sistema.
type UseCase struct {
	txRunner TxRunner
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(txRunner TxRunner, userRepo repository.UserRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{txRunner: txRunner, userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login verifica credenciales, actualiza el último acceso y devuelve JWT + usuario.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	now := time.Now()
	if err := uc.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// RegisterUser crea un usuario (solo admin): hashea la contraseña con bcrypt,
// asigna código USR-NNN y audita el alta en la misma transacción.
func (uc *UseCase) RegisterUser(ctx context.Context, actor string, in dto.RegisterUserRequest) (*dto.UserResponse, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" ||
		in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	if existing, _ := uc.userRepo.GetByUsername(in.Username); existing != nil {
		return nil, domain.ErrDuplicate
	}
	if existing, _ := uc.userRepo.GetByEmail(in.Email); existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
		Status:       entity.UserActive,
		Department:   in.Department,
		Phone:        in.Phone,
		CreatedAt:    now,
	}
	err = uc.txRunner.Run(ctx, func(userRepo repository.UserRepository, logRepo repository.ActivityLogRepository) error {
		code, err := userRepo.NextCode()
		if err != nil {
			return err
		}
		user.Code = code
		if err := userRepo.Create(user); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{
			"code": user.Code, "username": user.Username, "role": user.Role,
		})
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityUser,
			EntityID:   user.Code,
			Action:     "user_created",
			After:      after,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ResetPassword fija una contraseña nueva para otro usuario (solo admin).
func (uc *UseCase) ResetPassword(ctx context.Context, actor, userCode, password string) error {
	if password == "" {
		return domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(userRepo repository.UserRepository, logRepo repository.ActivityLogRepository) error {
		user, err := findByCode(userRepo, userCode)
		if err != nil {
			return err
		}
		if err := userRepo.UpdatePassword(user.ID, string(hash)); err != nil {
			return err
		}
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityUser,
			EntityID:   user.Code,
			Action:     "password_reset",
			CreatedAt:  time.Now(),
		})
	})
}

// DeactivateUser desactiva la cuenta. El último admin activo no puede
// desactivarse (el sistema quedaría sin administración).
func (uc *UseCase) DeactivateUser(ctx context.Context, actor, userCode string) error {
	return uc.txRunner.Run(ctx, func(userRepo repository.UserRepository, logRepo repository.ActivityLogRepository) error {
		user, err := findByCode(userRepo, userCode)
		if err != nil {
			return err
		}
		if user.Role == entity.RoleAdmin {
			admins, err := userRepo.CountByRole(entity.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return domain.ErrForbidden
			}
		}
		user.Status = entity.UserInactive
		if err := userRepo.Update(user); err != nil {
			return err
		}
		after, _ := json.Marshal(map[string]any{"status": user.Status})
		return logRepo.Append(&entity.ActivityLogEntry{
			Actor:      actor,
			EntityType: entity.EntityUser,
			EntityID:   user.Code,
			Action:     "user_deactivated",
			After:      after,
			CreatedAt:  time.Now(),
		})
	})
}

// Me devuelve el usuario autenticado.
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// ListUsers lista usuarios (solo admin).
func (uc *UseCase) ListUsers(ctx context.Context, limit, offset int) ([]*dto.UserResponse, error) {
	users, err := uc.userRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func findByCode(userRepo repository.UserRepository, code string) (*entity.User, error) {
	user, err := userRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		Code:       u.Code,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Status:     u.Status,
		Department: u.Department,
		Phone:      u.Phone,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}
