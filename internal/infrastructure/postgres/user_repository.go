package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo persistencia de usuarios.
type UserRepo struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, code, username, email, password_hash, full_name, role, status, department, phone, created_at, last_login`

func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.Code, user.Username, user.Email, user.PasswordHash,
		user.FullName, user.Role, user.Status, user.Department, user.Phone,
		user.CreatedAt, user.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	return r.getOne(`WHERE id = $1`, id)
}

func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	return r.getOne(`WHERE username = $1`, username)
}

func (r *UserRepo) GetByCode(code string) (*entity.User, error) {
	return r.getOne(`WHERE code = $1`, code)
}

func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	return r.getOne(`WHERE email = $1`, email)
}

func (r *UserRepo) getOne(where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where
	var u entity.User
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.Code, &u.Username, &u.Email, &u.PasswordHash,
		&u.FullName, &u.Role, &u.Status, &u.Department, &u.Phone,
		&u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) List(limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(
			&u.ID, &u.Code, &u.Username, &u.Email, &u.PasswordHash,
			&u.FullName, &u.Role, &u.Status, &u.Department, &u.Phone,
			&u.CreatedAt, &u.LastLogin,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

func (r *UserRepo) Update(user *entity.User) error {
	query := `
		UPDATE users
		SET email = $2, full_name = $3, role = $4, status = $5, department = $6, phone = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.Email, user.FullName, user.Role, user.Status, user.Department, user.Phone,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdatePassword(id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, id, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdateLastLogin(id string, at time.Time) error {
	query := `UPDATE users SET last_login = $2 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, id, at); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CountByRole cuenta usuarios activos con el rol dado. Se usa para impedir
// desactivar al último admin.
func (r *UserRepo) CountByRole(role string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM users WHERE role = $1 AND status = $2`
	if err := r.q.QueryRow(context.Background(), query, role, entity.UserActive).Scan(&n); err != nil {
		return 0, fmt.Errorf("count by role: %w", err)
	}
	return n, nil
}

// NextCode reserva el siguiente código USR-NNN.
func (r *UserRepo) NextCode() (string, error) {
	n, err := nextSequence(r.q, "user")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("USR-%03d", n), nil
}
