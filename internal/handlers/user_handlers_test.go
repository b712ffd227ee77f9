package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addUserWithPassword(t *testing.T, env *testEnv, id, email, role, password string) {
	t.Helper()
	var p models.Password
	require.NoError(t, p.Set(password))
	env.addUser(id, email, role).PasswordHash = p.Hash
}

func authCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", auth.CookieName)
	return nil
}

func TestLoginAdmin(t *testing.T) {
	env := newTestEnv(t)
	addUserWithPassword(t, env, "a-1", "boss@shop.test", models.RoleAdmin, "s3cret-pass")

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": " Boss@Shop.test ", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "/admin", body["redirectTo"])
	assert.NotContains(t, body["user"], "passwordHash")

	cookie := authCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, body["token"], cookie.Value)

	claims, err := env.h.Tokens.ValidateToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "a-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginUserRedirect(t *testing.T) {
	env := newTestEnv(t)
	addUserWithPassword(t, env, "u-1", "ana@shop.test", models.RoleUser, "password1")

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@shop.test", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", decode(t, w)["redirectTo"])
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	addUserWithPassword(t, env, "u-1", "ana@shop.test", models.RoleUser, "password1")

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@shop.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])
	assert.Empty(t, w.Result().Cookies())

	w = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@shop.test", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	w = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@shop.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"fullName": "Ana", "email": "Ana@Shop.test", "password": "password1"}

	w := env.do(http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "ana@shop.test", user["email"])
	assert.Equal(t, "user", user["role"])

	w = env.do(http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/api/auth/register", map[string]string{"fullName": "B", "email": "b@shop.test", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/auth/register", map[string]string{"fullName": strings.Repeat("b", 256), "email": "b@shop.test", "password": "password1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/auth/register", map[string]string{"fullName": "B", "email": "b@shop.test", "password": "password1", "phone": strings.Repeat("1", 65)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The new account can log in
	w = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@shop.test", "password": "password1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutExpiresCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := authCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("a-1", "boss@shop.test", models.RoleAdmin)
	token, err := env.h.Tokens.GenerateToken("a-1", "boss@shop.test", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "/admin", body["redirectTo"])
	assert.Equal(t, "a-1", body["user"].(map[string]interface{})["id"])

	w = env.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A valid token for a deleted account
	ghost, err := env.h.Tokens.GenerateToken("ghost", "x@shop.test", models.RoleUser)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+ghost)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
