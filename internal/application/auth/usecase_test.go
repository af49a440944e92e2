package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pyme/internal/application/auth"
	"github.com/jhoicas/inventario-pyme/internal/application/dto"
	"github.com/jhoicas/inventario-pyme/internal/domain"
	"github.com/jhoicas/inventario-pyme/internal/testutil"
)

func newAuth(t *testing.T) (*auth.AuthUseCase, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: "secreto", ExpMinutes: 60, Issuer: "test"})
	return uc, store
}

func TestRegisterUser(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: " Ana@Tienda.CL ", Password: "secreta1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@tienda.cl", u.Email)
	assert.True(t, strings.HasPrefix(u.APIKey, "sk_"))
	assert.NotEmpty(t, u.ID)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Otra", Email: "ana@tienda.cl", Password: "secreta2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@tienda.cl", Password: "secreta1"})
	require.NoError(t, err)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@tienda.cl", Password: "secreta1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@tienda.cl", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@tienda.cl", Password: "secreta1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate_JWTYAPIKey(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@tienda.cl", Password: "secreta1"})
	require.NoError(t, err)
	login, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@tienda.cl", Password: "secreta1"})
	require.NoError(t, err)

	id, err := uc.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	id, err = uc.Authenticate(ctx, u.APIKey)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = uc.Authenticate(ctx, "sk_inexistente")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: "ana@tienda.cl", Password: "secreta1"})
	require.NoError(t, err)

	me, err := uc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)

	_, err = uc.Me(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGenerateAPIKey_Unica(t *testing.T) {
	a, err := auth.GenerateAPIKey()
	require.NoError(t, err)
	b, err := auth.GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("sk_")+43)
}
