package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"botapi/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var errInvalidMessage = errors.New("message must be valid JSON")

// normalizeMessage validates the message payload. A JSON string whose content
// is itself a JSON document is unwrapped, so clients that double-encode keep
// working; anything that is not valid JSON is rejected.
func normalizeMessage(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errInvalidMessage
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, errInvalidMessage
		}
		if !json.Valid([]byte(inner)) {
			return nil, errInvalidMessage
		}
		return json.RawMessage(inner), nil
	}
	if !json.Valid(trimmed) {
		return nil, errInvalidMessage
	}
	return trimmed, nil
}

func (s *Server) fetchChatHistory(id uint64) (*models.ChatHistory, error) {
	var ch models.ChatHistory
	if err := s.db.First(&ch, id).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// listChatHistories returns the log newest-first, optionally filtered by
// session_id.
func (s *Server) listChatHistories(c *gin.Context) {
	page, limit, offset := parsePagination(c, 50, 100)

	q := s.db.Model(&models.ChatHistory{})
	if v := c.Query("session_id"); v != "" {
		q = q.Where("session_id = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		s.internalError(c, "chathistories.list", err)
		return
	}

	items := make([]models.ChatHistory, 0, limit)
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		s.internalError(c, "chathistories.list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"pagination": newPagination(page, limit, total),
	})
}

// listSessionChatHistories returns one session's conversation oldest-first so
// the transcript reads chronologically.
func (s *Server) listSessionChatHistories(c *gin.Context) {
	sessionID := c.Param("sessionId")
	page, limit, offset := parsePagination(c, 50, 200)

	exists, err := s.botUserExists(sessionID)
	if err != nil {
		s.internalError(c, "chathistories.session", err)
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}

	var total int64
	if err := s.db.Model(&models.ChatHistory{}).Where("session_id = ?", sessionID).Count(&total).Error; err != nil {
		s.internalError(c, "chathistories.session", err)
		return
	}

	items := make([]models.ChatHistory, 0, limit)
	err = s.db.Where("session_id = ?", sessionID).Order("id ASC").Limit(limit).Offset(offset).Find(&items).Error
	if err != nil {
		s.internalError(c, "chathistories.session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"pagination": newPagination(page, limit, total),
	})
}

func (s *Server) getChatHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "chat history not found")
		return
	}
	ch, err := s.fetchChatHistory(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "chat history not found")
			return
		}
		s.internalError(c, "chathistories.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ch})
}

func (s *Server) createChatHistory(c *gin.Context) {
	var req struct {
		SessionID string          `json:"session_id"`
		Message   json.RawMessage `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" || len(req.Message) == 0 {
		respondError(c, http.StatusBadRequest, "session_id and message are required")
		return
	}

	message, err := normalizeMessage(req.Message)
	if err != nil {
		respondError(c, http.StatusBadRequest, errInvalidMessage.Error())
		return
	}

	exists, err := s.botUserExists(req.SessionID)
	if err != nil {
		s.internalError(c, "chathistories.create", err)
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "session not found: a bot user with that session_id must exist")
		return
	}

	ch := models.ChatHistory{SessionID: req.SessionID, Message: datatypes.JSON(message)}
	if err := s.db.Create(&ch).Error; err != nil {
		s.internalError(c, "chathistories.create", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "chat history created successfully",
		"data":    ch,
	})
}

func (s *Server) updateChatHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "chat history not found")
		return
	}

	var req struct {
		Message json.RawMessage `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Message) == 0 {
		respondError(c, http.StatusBadRequest, "message is required")
		return
	}

	message, err := normalizeMessage(req.Message)
	if err != nil {
		respondError(c, http.StatusBadRequest, errInvalidMessage.Error())
		return
	}

	res := s.db.Model(&models.ChatHistory{}).Where("id = ?", id).Update("message", datatypes.JSON(message))
	if res.Error != nil {
		s.internalError(c, "chathistories.update", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "chat history not found")
		return
	}

	ch, err := s.fetchChatHistory(id)
	if err != nil {
		s.internalError(c, "chathistories.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "chat history updated successfully",
		"data":    ch,
	})
}

func (s *Server) deleteChatHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusNotFound, "chat history not found")
		return
	}

	res := s.db.Delete(&models.ChatHistory{}, id)
	if res.Error != nil {
		s.internalError(c, "chathistories.delete", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "chat history not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "chat history deleted successfully",
	})
}

// deleteSessionChatHistories wipes a session's log. Zero deleted rows is
// still a success, mirroring how the bot pipeline calls it.
func (s *Server) deleteSessionChatHistories(c *gin.Context) {
	sessionID := c.Param("sessionId")

	res := s.db.Delete(&models.ChatHistory{}, "session_id = ?", sessionID)
	if res.Error != nil {
		s.internalError(c, "chathistories.deletesession", res.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("%d chat record(s) deleted for session %s", res.RowsAffected, sessionID),
		"deletedCount": res.RowsAffected,
	})
}
