package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "API Bot is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler exchanges a username/password for a signed bearer token.
// Token issuance is purely computational: nothing about the session is
// persisted.
func (s *Server) loginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.verifyLogin(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.internalError(c, "auth.login", err)
		return
	}

	tok, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.internalError(c, "auth.login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     tok,
		"expiresIn": s.tokens.ExpiresIn(),
	})
}

// registerHandler creates a new API credential. The route is gated, so only
// an already-authenticated caller can add accounts.
func (s *Server) registerHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.createCredential(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errWeakPassword):
			respondError(c, http.StatusBadRequest, errWeakPassword.Error())
		case errors.Is(err, errDuplicateUsername):
			respondError(c, http.StatusConflict, errDuplicateUsername.Error())
		default:
			s.internalError(c, "auth.register", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "user created successfully",
		"data":    gin.H{"id": user.ID, "username": user.Username},
	})
}
