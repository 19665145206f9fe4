package handler

import (
	"errors"
	"net/http"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts *service.AccountService
}

func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid body")
		return
	}
	account, token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, "logged in", gin.H{"token": token, "account": account})
}
