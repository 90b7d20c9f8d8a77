// file: controllers/auth_controller_test.go
package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, "POST", "/signup", "", gin.H{"address": "alice", "password": "correct-horse"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestSignupDuplicateAddress(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, "POST", "/signup", "", gin.H{"address": "alice", "password": "correct-horse"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, "POST", "/signup", "", gin.H{"address": "alice", "password": "another-pass"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupValidation(t *testing.T) {
	app := setupTestApp(t)

	// missing fields
	w := app.do(t, "POST", "/signup", "", gin.H{"address": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// short password
	w = app.do(t, "POST", "/signup", "", gin.H{"address": "alice", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	app := setupTestApp(t)

	token := app.signupAndLogin(t, "alice")

	// the token actually works against a protected route
	w := app.do(t, "GET", "/api/wallet", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":0`)
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, "POST", "/signup", "", gin.H{"address": "alice", "password": "correct-horse"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, "POST", "/login", "", gin.H{"address": "alice", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownAddress(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, "POST", "/login", "", gin.H{"address": "ghost", "password": "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, "GET", "/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "logged out")
}
