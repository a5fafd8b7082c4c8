package entity

import "time"

// Roles de la aplicación. admin puede aplicar ajustes/correcciones crudas y
// administrar OCs y usuarios; manager opera los flujos normales de órdenes y
// recepciones pero no aplica ajustes directos.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// Estados de cuenta.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User usuario del sistema.
type User struct {
	ID           string
	Code         string // USR-001
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	Status       string
	Department   string
	Phone        string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// ValidRole indica si el rol es conocido.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
