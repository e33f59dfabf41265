package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-feed/internal/service"
)

// ClaimHandler mantiene dependencias para endpoints de activacion.
type ClaimHandler struct {
	logger   *zap.Logger
	claimSvc *service.ClaimService
}

func NewClaimHandler(logger *zap.Logger, claimSvc *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{
		logger:   logger,
		claimSvc: claimSvc,
	}
}

// Claim maneja POST /claim. La wallet sale de la sesion, nunca del body.
func (h *ClaimHandler) Claim(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req struct {
		ContractAddress string `json:"contract_address" binding:"required"`
		TokenID         string `json:"token_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid claim request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.claimSvc.Claim(c.Request.Context(), service.ClaimInput{
		WalletAddress:   claims.WalletAddress,
		ContractAddress: req.ContractAddress,
		TokenID:         req.TokenID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClaim):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "wallet does not own this token"})
		case errors.Is(err, service.ErrProfileExists):
			c.JSON(http.StatusConflict, gin.H{"error": "token already claimed"})
		default:
			h.logger.Error("claim failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not claim token"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// Regenerate maneja POST /profiles/:id/regenerate.
func (h *ClaimHandler) Regenerate(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	profile, err := h.claimSvc.Regenerate(c.Request.Context(), c.Param("id"), claims.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "wallet does not own this token"})
		default:
			h.logger.Error("regenerate failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not regenerate profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
