package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-feed/internal/service"
)

// AuthHandler mantiene dependencias para endpoints de sesion.
type AuthHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
	jwtSvc  *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService, jwtSvc *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
		jwtSvc:  jwtSvc,
	}
}

// CreateSession maneja POST /auth/session: login por firma de wallet.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Message       string `json:"message" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tokens, user, err := h.authSvc.Login(c.Request.Context(), service.LoginInput{
		WalletAddress: req.WalletAddress,
		Message:       req.Message,
		Signature:     req.Signature,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		h.logger.Error("wallet login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}

// RefreshSession maneja POST /auth/refresh.
func (h *AuthHandler) RefreshSession(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtSvc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	tokens, err := h.jwtSvc.RefreshPair(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtSvc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	_ = h.jwtSvc.RevokeRefresh(req.RefreshToken)
	c.Status(http.StatusNoContent)
}
