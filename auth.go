package main

import (
	"errors"
	"strings"

	"botapi/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

const minPasswordLen = 6

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errDuplicateUsername  = errors.New("username already exists")
	errWeakPassword       = errors.New("password must be at least 6 characters")
)

// verifyLogin authenticates a username/password pair against the stored
// credential records. An unknown or inactive username fails exactly like a
// wrong password so the response never leaks whether the account exists.
func (s *Server) verifyLogin(username, password string) (*models.APIUser, error) {
	var user models.APIUser
	err := s.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	return &user, nil
}

// createCredential registers a new API user. The lookup-then-insert pair is
// not atomic; the unique index on username is the backstop for the race.
func (s *Server) createCredential(username, password string) (*models.APIUser, error) {
	if len(password) < minPasswordLen {
		return nil, errWeakPassword
	}

	var existing models.APIUser
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, errDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := models.APIUser{Username: username, PasswordHash: hash, IsActive: true}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, errDuplicateUsername
		}
		return nil, err
	}
	return &user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "already exists")
}
