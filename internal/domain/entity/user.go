package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleEmpresa    = "empresa"
)

// User representa un usuario del sistema. Los usuarios con rol empresa pertenecen a una Company;
// admin y superadmin operan sobre todas (CompanyID vacío).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // superadmin, admin, empresa
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff indica si el usuario puede resolver solicitudes y registrar pagos.
func (u *User) IsStaff() bool {
	return IsStaffRole(u.Role)
}

// IsStaffRole indica si el rol pertenece al personal de la paquetería.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
