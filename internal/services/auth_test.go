package services

import (
	"context"
	"testing"
	"time"

	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthLoginAndAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	auth := NewAuthService(db, "jwt-secret", time.Hour)
	ctx := context.Background()

	user, err := auth.CreateUser(ctx, CreateUserInput{
		Email:    "Admin@Example.COM",
		Phone:    "555-0100",
		Password: "s3cret!",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Admin@example.com", user.Email)
	assert.NotEqual(t, "s3cret!", user.Password)

	token, loggedIn, err := auth.Login(ctx, "Admin@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	got, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, _, err = auth.Login(ctx, "Admin@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "nobody@example.com", "s3cret!")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticateRejectsNonStaff(t *testing.T) {
	db := testutil.NewDB(t)
	auth := NewAuthService(db, "jwt-secret", time.Hour)
	ctx := context.Background()

	_, err := auth.CreateUser(ctx, CreateUserInput{Email: "clerk@example.com", Phone: "1", Password: "password"})
	require.NoError(t, err)

	token, _, err := auth.Login(ctx, "clerk@example.com", "password")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	db := testutil.NewDB(t)
	auth := NewAuthService(db, "jwt-secret", time.Hour)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "00000000-0000-0000-0000-000000000000",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
