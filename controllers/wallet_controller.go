// Package controllers file: controllers/wallet_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-meet-stake/logger"
	"go-meet-stake/middleware"
	"go-meet-stake/storage"
)

// WalletController exposes the caller's balance and the deposit operation
// that funds stakes. Deposits stand in for the external value transfer the
// front-end boundary attaches to a booking.
type WalletController struct {
	Store storage.Store
}

// NewWalletController creates a WalletController.
func NewWalletController(store storage.Store) *WalletController {
	return &WalletController{Store: store}
}

// GetWallet returns the authenticated caller's balance.
func (wc *WalletController) GetWallet(c *gin.Context) {
	user := middleware.CurrentUser(c)

	account, err := wc.Store.GetAccount(c.Request.Context(), user)
	if err != nil {
		logger.Error.Printf("[GetWallet] failed to load account %s: %v", user, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": account.Address, "balance": account.Balance})
}

type depositRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// Deposit credits the caller's balance.
func (wc *WalletController) Deposit(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive integer"})
		return
	}

	if err := wc.Store.Credit(c.Request.Context(), user, req.Amount); err != nil {
		logger.Error.Printf("[Deposit] failed to credit %s: %v", user, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	account, err := wc.Store.GetAccount(c.Request.Context(), user)
	if err != nil {
		logger.Error.Printf("[Deposit] failed to reload account %s: %v", user, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	logger.Info.Printf("[Deposit] %s deposited %d (balance=%d)", user, req.Amount, account.Balance)
	c.JSON(http.StatusOK, gin.H{"address": account.Address, "balance": account.Balance})
}
