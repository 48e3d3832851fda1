package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-person-auth"
	"github.com/stretchr/testify/assert"
)

func TestNewClaims_User(t *testing.T) {
	claims := auth.NewClaims(testUserIdentity(42, auth.RoleAdmin))

	assert.Equal(t, "42", claims.Subject())
	assert.Equal(t, int64(42), claims.UserID())
	assert.Equal(t, auth.KindUser, claims.Kind())
	assert.Equal(t, "admin", claims.Role())
	assert.Equal(t, "user42", claims.Username())
	assert.Equal(t, "user42@example.com", claims.Email())
	assert.Empty(t, claims.Vorname)
}

func TestNewClaims_Person(t *testing.T) {
	claims := auth.NewClaims(auth.PersonIdentity(&auth.Person{
		ID:       9,
		Vorname:  "Max",
		Nachname: "Muster",
		Email:    "max@example.com",
	}))

	assert.Equal(t, int64(9), claims.UserID())
	assert.Equal(t, auth.KindPerson, claims.Kind())
	assert.Equal(t, "person", claims.Role())
	assert.Equal(t, "Max", claims.Vorname)
	assert.Equal(t, "Muster", claims.Nachname)
	assert.Empty(t, claims.Username())
}

func TestJWTClaims_Times(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("unset", func(t *testing.T) {
		claims := &auth.JWTClaims{}
		assert.True(t, claims.Expires().IsZero())
		assert.True(t, claims.IssuedAt().IsZero())
	})

	t.Run("set", func(t *testing.T) {
		claims := &auth.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		assert.True(t, claims.IssuedAt().Equal(now))
		assert.True(t, claims.Expires().Equal(now.Add(time.Hour)))
	})
}

func TestUserIdentity_ExposesPublicFieldsOnly(t *testing.T) {
	u := &auth.User{ID: 1, Username: "alice", Email: "a@example.com", Role: auth.RoleAdmin, PasswordHash: "hash"}
	identity := auth.UserIdentity(u)

	assert.Equal(t, int64(1), identity.ID())
	assert.Equal(t, "alice", identity.Username())
	assert.Equal(t, "admin", identity.Role())
}

func TestUserRole(t *testing.T) {
	assert.True(t, auth.RoleUser.IsValid())
	assert.True(t, auth.RoleAdmin.IsValid())
	assert.True(t, auth.RolePerson.IsValid())
	assert.False(t, auth.UserRole("root").IsValid())
	assert.Equal(t, "user", auth.DefaultRole.String())
}
