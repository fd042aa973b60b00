package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"botapi/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const bearerPrefix = "Bearer "

// Server wires the handlers to their dependencies. The DB handle and token
// codec are injected here instead of living in package globals so tests can
// construct a Server around fakes.
type Server struct {
	cfg    *Config
	db     *gorm.DB
	log    *slog.Logger
	tokens *token.Codec
}

func NewServer(cfg *Config, db *gorm.DB, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		db:     db,
		log:    logger,
		tokens: token.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL),
	}
}

// Router builds the gin engine with all routes registered. Routes with a
// literal segment (/session/..., /upsert) are static nodes in gin's tree and
// take precedence over the single-variable patterns, so they cannot be
// shadowed. Method-not-allowed stays disabled: a wrong method falls through
// to the same 404 envelope as an unknown path.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(newIPLimiter(s.cfg.RateMax, s.cfg.RateWindow).middleware())

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "route not found")
	})

	r.GET("/api/health", s.healthHandler)

	auth := r.Group("/api/auth")
	auth.Use(newIPLimiter(s.cfg.AuthRateMax, s.cfg.RateWindow).middleware())
	auth.POST("/login", s.loginHandler)
	auth.POST("/register", s.authRequired(), s.registerHandler)

	api := r.Group("/api")
	api.Use(s.authRequired())

	bu := api.Group("/bot-users")
	bu.GET("", s.listBotUsers)
	bu.POST("", s.createBotUser)
	bu.POST("/upsert", s.upsertBotUser)
	bu.GET("/session/:sessionId", s.getBotUser)
	bu.PATCH("/session/:sessionId", s.updateBotUser)
	bu.POST("/session/:sessionId/counters", s.incrementCounters)
	// legacy aliases keyed directly on the session id
	bu.GET("/:sessionId", s.getBotUser)
	bu.PUT("/:sessionId", s.updateBotUser)
	bu.DELETE("/:sessionId", s.deleteBotUser)

	ch := api.Group("/chat-histories")
	ch.GET("", s.listChatHistories)
	ch.POST("", s.createChatHistory)
	ch.GET("/session/:sessionId", s.listSessionChatHistories)
	ch.DELETE("/session/:sessionId", s.deleteSessionChatHistories)
	ch.GET("/:id", s.getChatHistory)
	ch.PUT("/:id", s.updateChatHistory)
	ch.DELETE("/:id", s.deleteChatHistory)

	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
	if s.cfg.CORSOrigin == "*" {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = []string{s.cfg.CORSOrigin}
	}
	return cors.New(conf)
}

// authRequired gates protected routes. It extracts the bearer token, verifies
// it with the codec and attaches the identity to the request context. No
// database lookup happens here: a valid signature and an unexpired exp claim
// are the whole proof of identity. Expiry gets its own message; malformed and
// bad-signature tokens share one so the response doesn't aid forgery.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "access denied: no token provided",
			})
			return
		}

		claims, err := s.tokens.Parse(header[len(bearerPrefix):])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, token.ErrExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": msg,
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)
