/*
auth.go - Roles, permissions and credential checks

ROLES:
  Admin    - everything, including re-saving a finalized day
  Designer - daily entry, drafts, clients, items, reports
  Accounts - jobs and billing, cost dashboard, reports

AUTHENTICATION:
  Authenticator is injected into the HTTP layer. Static is the built-in
  implementation: a fixed table of usernames with bcrypt hashes.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleDesigner Role = "Designer"
	RoleAccounts Role = "Accounts"
)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleAdmin, RoleDesigner, RoleAccounts} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// =============================================================================
// PERMISSIONS
// =============================================================================

type Permission string

const (
	PermDailyEntry Permission = "daily_entry"
	PermDrafts     Permission = "drafts"
	PermClients    Permission = "clients"
	PermItems      Permission = "items"
	PermReports    Permission = "reports"
	PermBilling    Permission = "billing"
	PermDashboard  Permission = "dashboard"
	PermScenarios  Permission = "scenarios"
	PermEditLocked Permission = "edit_finalized_day"
)

var rolePermissions = map[Role][]Permission{
	RoleDesigner: {PermDailyEntry, PermDrafts, PermClients, PermItems, PermReports},
	RoleAccounts: {PermBilling, PermDashboard, PermReports},
}

// Can reports whether role grants p. Admin is granted everything.
func (r Role) Can(p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// =============================================================================
// AUTHENTICATOR
// =============================================================================

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator resolves credentials to a role.
type Authenticator interface {
	Authenticate(ctx context.Context, c Credentials) (Role, error)
}

type account struct {
	hash []byte
	role Role
}

// Static authenticates against an in-memory table of bcrypt hashes.
type Static struct {
	accounts map[string]account
	cost     int
}

// Account is a plaintext entry handed to NewStatic.
type Account struct {
	Username string
	Password string
	Role     Role
}

// DefaultAccounts are the shop's built-in logins.
var DefaultAccounts = []Account{
	{Username: "admin", Password: "admin", Role: RoleAdmin},
	{Username: "print01", Password: "print01", Role: RoleDesigner},
	{Username: "accounts", Password: "accounts", Role: RoleAccounts},
}

// NewStatic hashes every password with bcrypt at cost. A cost of 0 uses
// bcrypt.DefaultCost.
func NewStatic(cost int, accounts ...Account) (*Static, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	s := &Static{accounts: make(map[string]account, len(accounts)), cost: cost}
	for _, a := range accounts {
		if err := s.Add(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add hashes and stores one account, replacing any with the same username.
func (s *Static) Add(a Account) error {
	if strings.TrimSpace(a.Username) == "" {
		return errors.New("username is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", a.Username, err)
	}
	s.accounts[strings.ToLower(a.Username)] = account{hash: hash, role: a.Role}
	return nil
}

// Authenticate matches usernames case-insensitively and passwords exactly.
func (s *Static) Authenticate(_ context.Context, c Credentials) (Role, error) {
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(c.Username))]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(c.Password)) != nil {
		return "", ErrInvalidCredentials
	}
	return acct.role, nil
}

// =============================================================================
// CONTEXT
// =============================================================================

type contextKey struct{}

// WithRole returns a copy of ctx carrying role.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, contextKey{}, role)
}

// RoleFrom returns the role stored by WithRole.
func RoleFrom(ctx context.Context) (Role, bool) {
	r, ok := ctx.Value(contextKey{}).(Role)
	return r, ok
}
