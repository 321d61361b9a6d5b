package domain

import "fmt"

// Role identifies which side of the marketplace a principal belongs to.
// The set is closed: anything outside these two values is rejected at the
// edges so a typo can never reach an authorization decision.
type Role string

const (
	RoleManager  Role = "manager"
	RoleCustomer Role = "customer"
)

// ParseRole validates a free-form role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleManager:
		return RoleManager, nil
	case RoleCustomer:
		return RoleCustomer, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// Principal is an authenticated identity: a manager or a customer.
// IDs are scoped per role (manager 1 and customer 1 are distinct people).
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}
