// Package controllers controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"go-meet-stake/logger"
	"go-meet-stake/middleware"
	"go-meet-stake/models"
	"go-meet-stake/storage"
)

// AuthController handles account signup and session/token login. Accounts are
// the funding wallets; registering with the booking ledger is a separate,
// explicit step (see BookingController.Register).
type AuthController struct {
	Store storage.Store
	JWT   *middleware.JWTManager
}

// NewAuthController creates an AuthController.
func NewAuthController(store storage.Store, jwtManager *middleware.JWTManager) *AuthController {
	return &AuthController{Store: store, JWT: jwtManager}
}

type signupRequest struct {
	Address  string `json:"address" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates an account for the given address.
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and password are required"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error.Printf("[Signup] failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	account := &models.Account{
		Address:      req.Address,
		PasswordHash: string(hashed),
	}
	if err := ac.Store.CreateAccount(c.Request.Context(), account); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "address already in use"})
			return
		}
		logger.Error.Printf("[Signup] failed to create account: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	logger.Info.Printf("[Signup] account created for %s", account.Address)
	c.JSON(http.StatusCreated, gin.H{"address": account.Address})
}

type loginRequest struct {
	Address  string `json:"address" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies the password, starts a session, and returns a bearer token
// for API clients.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and password are required"})
		return
	}

	account, err := ac.Store.GetAccount(c.Request.Context(), req.Address)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		logger.Warn.Printf("[Login] failed login attempt for %s", req.Address)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid address or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user", account.Address)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Login] error saving session for %s: %v", account.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving session"})
		return
	}

	token, err := ac.JWT.Generate(account.Address)
	if err != nil {
		logger.Error.Printf("[Login] error generating token for %s: %v", account.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	logger.Info.Printf("[Login] %s logged in", account.Address)
	c.JSON(http.StatusOK, gin.H{"address": account.Address, "token": token})
}

// Logout clears the session.
func (ac *AuthController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Logout] error clearing session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error clearing session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
