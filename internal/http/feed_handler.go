package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"soul-feed/internal/repository"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// FeedHandler mantiene dependencias para las lecturas publicas del feed.
type FeedHandler struct {
	logger      *zap.Logger
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
}

func NewFeedHandler(logger *zap.Logger, profileRepo repository.ProfileRepository, postRepo repository.PostRepository) *FeedHandler {
	return &FeedHandler{
		logger:      logger,
		profileRepo: profileRepo,
		postRepo:    postRepo,
	}
}

// GetFeed maneja GET /feed/:contract.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	contract := strings.ToLower(strings.TrimSpace(c.Param("contract")))
	if contract == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contract is required"})
		return
	}

	posts, err := h.postRepo.ListRecentByContract(c.Request.Context(), contract, feedLimit(c))
	if err != nil {
		h.logger.Error("list feed failed", zap.String("contract", contract), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListProfiles maneja GET /feed/:contract/profiles: los personajes
// activados de una coleccion.
func (h *FeedHandler) ListProfiles(c *gin.Context) {
	contract := strings.ToLower(strings.TrimSpace(c.Param("contract")))
	if contract == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contract is required"})
		return
	}

	profiles, err := h.profileRepo.ListActivated(c.Request.Context(), contract)
	if err != nil {
		h.logger.Error("list profiles failed", zap.String("contract", contract), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetProfile maneja GET /profiles/:id.
func (h *FeedHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("load profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetProfilePosts maneja GET /profiles/:id/posts.
func (h *FeedHandler) GetProfilePosts(c *gin.Context) {
	profileID := c.Param("id")
	if _, err := h.profileRepo.GetByID(c.Request.Context(), profileID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("load profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}

	posts, err := h.postRepo.ListRecentByProfile(c.Request.Context(), profileID, feedLimit(c))
	if err != nil {
		h.logger.Error("list profile posts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func feedLimit(c *gin.Context) int {
	limit := defaultFeedLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return limit
}
