package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDefaultStatic(t *testing.T) *Static {
	t.Helper()
	s, err := NewStatic(bcrypt.MinCost, DefaultAccounts...)
	require.NoError(t, err)
	return s
}

func TestStatic_Authenticate(t *testing.T) {
	s := newDefaultStatic(t)
	ctx := context.Background()

	tests := []struct {
		user, pass string
		want       Role
		wantErr    bool
	}{
		{"admin", "admin", RoleAdmin, false},
		{"print01", "print01", RoleDesigner, false},
		{"accounts", "accounts", RoleAccounts, false},
		{"  ADMIN ", "admin", RoleAdmin, false},
		{"admin", "Admin", "", true},
		{"nobody", "admin", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.pass, func(t *testing.T) {
			role, err := s.Authenticate(ctx, Credentials{Username: tt.user, Password: tt.pass})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestStatic_RejectsBlankUsername(t *testing.T) {
	_, err := NewStatic(bcrypt.MinCost, Account{Username: " ", Password: "x", Role: RoleAdmin})
	assert.Error(t, err)
}

func TestRole_Can(t *testing.T) {
	assert.True(t, RoleAdmin.Can(PermEditLocked))
	assert.True(t, RoleAdmin.Can(PermBilling))

	assert.True(t, RoleDesigner.Can(PermDailyEntry))
	assert.True(t, RoleDesigner.Can(PermReports))
	assert.False(t, RoleDesigner.Can(PermBilling))
	assert.False(t, RoleDesigner.Can(PermEditLocked))

	assert.True(t, RoleAccounts.Can(PermBilling))
	assert.True(t, RoleAccounts.Can(PermDashboard))
	assert.False(t, RoleAccounts.Can(PermDailyEntry))

	assert.False(t, Role("Intern").Can(PermReports))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("accounts")
	require.NoError(t, err)
	assert.Equal(t, RoleAccounts, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestRoleContext(t *testing.T) {
	_, ok := RoleFrom(context.Background())
	assert.False(t, ok)

	r, ok := RoleFrom(WithRole(context.Background(), RoleDesigner))
	require.True(t, ok)
	assert.Equal(t, RoleDesigner, r)
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestSessions_IssueAndParse(t *testing.T) {
	s, err := NewSessions([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	token, exp, err := s.Issue("print01", RoleDesigner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleDesigner, claims.Role)
	assert.Equal(t, "print01", claims.Subject)
}

func TestSessions_RejectsExpired(t *testing.T) {
	s, err := NewSessions([]byte("test-secret"), time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issuedAt }
	token, _, err := s.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessions_RejectsOtherSecret(t *testing.T) {
	a, err := NewSessions([]byte("secret-a"), 0)
	require.NoError(t, err)
	b, err := NewSessions([]byte("secret-b"), 0)
	require.NoError(t, err)

	token, _, err := a.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessions_RequiresSecret(t *testing.T) {
	_, err := NewSessions(nil, 0)
	assert.Error(t, err)
}
