package repository

import (
	"time"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// UserRepository puerto de persistencia para usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	GetByCode(code string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	List(limit, offset int) ([]*entity.User, error)
	Update(user *entity.User) error
	UpdatePassword(id, passwordHash string) error
	UpdateLastLogin(id string, at time.Time) error
	CountByRole(role string) (int, error)
	NextCode() (string, error)
}
