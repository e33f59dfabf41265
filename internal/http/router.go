package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	claimH *ClaimHandler,
	feedH *FeedHandler,
	universeH *UniverseHandler,
	schedulerH *SchedulerHandler,
	jwtMiddleware gin.HandlerFunc,
	cronSecret string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/session", authH.CreateSession)
	auth.POST("/refresh", authH.RefreshSession)
	auth.POST("/logout", authH.Logout)

	// Lecturas publicas del feed.
	r.GET("/feed/:contract", feedH.GetFeed)
	r.GET("/feed/:contract/profiles", feedH.ListProfiles)
	r.GET("/profiles/:id", feedH.GetProfile)
	r.GET("/profiles/:id/posts", feedH.GetProfilePosts)

	// Operaciones de dueno de token, detras de sesion.
	owner := r.Group("/")
	owner.Use(jwtMiddleware)
	owner.POST("/claim", claimH.Claim)
	owner.POST("/profiles/:id/regenerate", claimH.Regenerate)

	// Superficie de operador: onboarding de universos, protegida por el
	// mismo secreto que el cron.
	operator := r.Group("/universes")
	operator.Use(cronSecretMiddleware(cronSecret))
	operator.POST("", universeH.Onboard)
	operator.DELETE("/:contract/cache", universeH.ClearCache)

	internal := r.Group("/internal")
	internal.Use(cronSecretMiddleware(cronSecret))
	internal.POST("/scheduler/tick", schedulerH.Tick)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// cronSecretMiddleware protege la superficie interna con un secreto fijo,
// aceptado por header o query para que el cron externo pueda usar ambos.
func cronSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(503, gin.H{"error": "internal surface not configured"})
			c.Abort()
			return
		}
		provided := c.GetHeader("X-Cron-Secret")
		if provided == "" {
			provided = c.Query("secret")
		}
		if provided != secret {
			c.JSON(401, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
