package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-person-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "extra spaces", header: "Bearer    abc  ", want: "abc"},
		{name: "empty header", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer", wantErr: true},
		{name: "scheme and space", header: "Bearer ", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "no separator", header: "Bearerabc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.BearerToken(tt.header, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrMissingToken)
				assert.Equal(t, 401, auth.StatusFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateHeader(t *testing.T) {
	svc := auth.NewTokenService([]byte(testSecret), "test")
	res, err := svc.Generate(testUserIdentity(7, auth.RoleUser))
	require.NoError(t, err)

	t.Run("valid header", func(t *testing.T) {
		claims, err := auth.ValidateHeader(svc, "Bearer "+res.Token, "Bearer")
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID())
	})

	t.Run("missing token is 401", func(t *testing.T) {
		_, err := auth.ValidateHeader(svc, "", "Bearer")
		assert.Equal(t, 401, auth.StatusFor(err))
	})

	t.Run("garbage token is 403", func(t *testing.T) {
		_, err := auth.ValidateHeader(svc, "Bearer not-a-jwt", "Bearer")
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
		assert.Equal(t, 403, auth.StatusFor(err))
	})
}

func TestTokenValidatorFunc(t *testing.T) {
	var nilFunc auth.TokenValidatorFunc
	_, err := nilFunc.Validate("x")
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}
