package domain

import "time"

// Role определяет роль действующего лица в запросе.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// ParseRole валидирует строковое значение роли.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	switch role {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return role, nil
	default:
		return "", ErrRoleInvalid
	}
}

// Actor — аутентифицированное действующее лицо запроса.
type Actor struct {
	ID   string
	Role Role
}

// AccountStatus описывает жизненный цикл учётной записи.
// Продавец получает права только после одобрения администратором.
type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusApproved AccountStatus = "approved"
	AccountStatusRejected AccountStatus = "rejected"
)

// Valid проверяет, что статус учётной записи относится к поддерживаемым значениям.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusPending, AccountStatusApproved, AccountStatusRejected:
		return true
	default:
		return false
	}
}

// Account хранит состояние учётной записи, проверяемое при авторизации.
type Account struct {
	ID        string
	Role      Role
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanAct сообщает, допущена ли учётная запись к операциям своей роли.
// Покупатели и администраторы активны сразу, продавцы — после одобрения.
func (a *Account) CanAct() bool {
	if a.Role == RoleSeller {
		return a.Status == AccountStatusApproved
	}
	return a.Status != AccountStatusRejected
}
