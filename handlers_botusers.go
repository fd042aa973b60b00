package main

import (
	"errors"
	"net/http"
	"strconv"

	"botapi/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// botUserInput is the typed update descriptor for the bot_users table: every
// writable column appears as a pointer field, nil meaning "not provided".
// Anything outside this struct is silently dropped by JSON binding, so the
// set of writable columns is fixed at compile time.
type botUserInput struct {
	SessionID             *string `json:"session_id"`
	Status                *string `json:"status"`
	APIContactID          *string `json:"api_contact_id"`
	Nombre                *string `json:"nombre"`
	TelefonoReal          *string `json:"telefono_real"`
	Rol                   *string `json:"rol"`
	BotStatus             *string `json:"bot_status"`
	RejectedCount         *int    `json:"rejected_count"`
	QuestionnaireStatus   *string `json:"questionnaire_status"`
	PropertyID            *string `json:"property_id"`
	CountOutcontext       *int    `json:"count_outcontext"`
	LastIntencion         *string `json:"last_intencion"`
	LastAccion            *string `json:"last_accion"`
	LastBotReply          *string `json:"last_bot_reply"`
	VecesPidiendoNombre   *int    `json:"veces_pidiendo_nombre"`
	VecesPidiendoTelefono *int    `json:"veces_pidiendo_telefono"`
}

// assignments returns the provided fields as a column→value map for UPDATEs.
// session_id is the identity of the row and is never updatable.
func (in *botUserInput) assignments() map[string]any {
	set := map[string]any{}
	str := func(col string, v *string) {
		if v != nil {
			set[col] = *v
		}
	}
	num := func(col string, v *int) {
		if v != nil {
			set[col] = *v
		}
	}
	str("status", in.Status)
	str("api_contact_id", in.APIContactID)
	str("nombre", in.Nombre)
	str("telefono_real", in.TelefonoReal)
	str("rol", in.Rol)
	str("bot_status", in.BotStatus)
	num("rejected_count", in.RejectedCount)
	str("questionnaire_status", in.QuestionnaireStatus)
	str("property_id", in.PropertyID)
	num("count_outcontext", in.CountOutcontext)
	str("last_intencion", in.LastIntencion)
	str("last_accion", in.LastAccion)
	str("last_bot_reply", in.LastBotReply)
	num("veces_pidiendo_nombre", in.VecesPidiendoNombre)
	num("veces_pidiendo_telefono", in.VecesPidiendoTelefono)
	return set
}

// record builds a BotUser row for INSERT from the provided fields.
func (in *botUserInput) record() models.BotUser {
	bu := models.BotUser{}
	if in.SessionID != nil {
		bu.SessionID = *in.SessionID
	}
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	num := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	str(&bu.Status, in.Status)
	str(&bu.APIContactID, in.APIContactID)
	str(&bu.Nombre, in.Nombre)
	str(&bu.TelefonoReal, in.TelefonoReal)
	str(&bu.Rol, in.Rol)
	str(&bu.BotStatus, in.BotStatus)
	num(&bu.RejectedCount, in.RejectedCount)
	str(&bu.QuestionnaireStatus, in.QuestionnaireStatus)
	str(&bu.PropertyID, in.PropertyID)
	num(&bu.CountOutcontext, in.CountOutcontext)
	str(&bu.LastIntencion, in.LastIntencion)
	str(&bu.LastAccion, in.LastAccion)
	str(&bu.LastBotReply, in.LastBotReply)
	num(&bu.VecesPidiendoNombre, in.VecesPidiendoNombre)
	num(&bu.VecesPidiendoTelefono, in.VecesPidiendoTelefono)
	return bu
}

// counterColumns are the only fields the counters endpoint may touch.
var counterColumns = []string{
	"rejected_count", "count_outcontext",
	"veces_pidiendo_nombre", "veces_pidiendo_telefono",
}

func (s *Server) botUserExists(sessionID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.BotUser{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count > 0, err
}

func (s *Server) fetchBotUser(sessionID string) (*models.BotUser, error) {
	var bu models.BotUser
	if err := s.db.Where("session_id = ?", sessionID).First(&bu).Error; err != nil {
		return nil, err
	}
	return &bu, nil
}

// listBotUsers supports exact-match filters on status, bot_status,
// questionnaire_status and rol, a substring filter on nombre, and pagination.
func (s *Server) listBotUsers(c *gin.Context) {
	page, limit, offset := parsePagination(c, 20, 100)

	q := s.db.Model(&models.BotUser{})
	for _, field := range []string{"status", "bot_status", "questionnaire_status", "rol"} {
		if v := c.Query(field); v != "" {
			q = q.Where(field+" = ?", v)
		}
	}
	if v := c.Query("nombre"); v != "" {
		q = q.Where("nombre LIKE ?", "%"+v+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		s.internalError(c, "botusers.list", err)
		return
	}

	items := make([]models.BotUser, 0, limit)
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		s.internalError(c, "botusers.list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"pagination": newPagination(page, limit, total),
	})
}

func (s *Server) getBotUser(c *gin.Context) {
	bu, err := s.fetchBotUser(c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "bot user not found")
			return
		}
		s.internalError(c, "botusers.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bu})
}

func (s *Server) createBotUser(c *gin.Context) {
	var in botUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if in.SessionID == nil || *in.SessionID == "" {
		respondError(c, http.StatusBadRequest, "session_id is required")
		return
	}

	exists, err := s.botUserExists(*in.SessionID)
	if err != nil {
		s.internalError(c, "botusers.create", err)
		return
	}
	if exists {
		respondError(c, http.StatusConflict, "a bot user with that session_id already exists")
		return
	}

	rec := in.record()
	if err := s.db.Create(&rec).Error; err != nil {
		if isUniqueConstraintError(err) {
			respondError(c, http.StatusConflict, "a bot user with that session_id already exists")
			return
		}
		s.internalError(c, "botusers.create", err)
		return
	}

	bu, err := s.fetchBotUser(rec.SessionID)
	if err != nil {
		s.internalError(c, "botusers.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "bot user created successfully",
		"data":    bu,
	})
}

// updateBotUser serves both PUT /:sessionId and PATCH /session/:sessionId;
// both are partial updates over the provided fields.
func (s *Server) updateBotUser(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var in botUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := s.botUserExists(sessionID)
	if err != nil {
		s.internalError(c, "botusers.update", err)
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "bot user not found")
		return
	}

	set := in.assignments()
	if len(set) == 0 {
		respondError(c, http.StatusBadRequest, "no fields provided to update")
		return
	}
	if err := s.db.Model(&models.BotUser{}).Where("session_id = ?", sessionID).Updates(set).Error; err != nil {
		s.internalError(c, "botusers.update", err)
		return
	}

	bu, err := s.fetchBotUser(sessionID)
	if err != nil {
		s.internalError(c, "botusers.update", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "bot user updated successfully",
		"data":    bu,
	})
}

// upsertBotUser creates the row when it doesn't exist and applies the
// provided fields when it does. 201 with created:true marks the insert path.
func (s *Server) upsertBotUser(c *gin.Context) {
	var in botUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if in.SessionID == nil || *in.SessionID == "" {
		respondError(c, http.StatusBadRequest, "session_id is required")
		return
	}
	sessionID := *in.SessionID

	exists, err := s.botUserExists(sessionID)
	if err != nil {
		s.internalError(c, "botusers.upsert", err)
		return
	}

	created := false
	if exists {
		if set := in.assignments(); len(set) > 0 {
			if err := s.db.Model(&models.BotUser{}).Where("session_id = ?", sessionID).Updates(set).Error; err != nil {
				s.internalError(c, "botusers.upsert", err)
				return
			}
		}
	} else {
		rec := in.record()
		err := s.db.Create(&rec).Error
		switch {
		case err == nil:
			created = true
		case isUniqueConstraintError(err):
			// lost the insert race: fall back to updating the existing row
			if set := in.assignments(); len(set) > 0 {
				if err := s.db.Model(&models.BotUser{}).Where("session_id = ?", sessionID).Updates(set).Error; err != nil {
					s.internalError(c, "botusers.upsert", err)
					return
				}
			}
		default:
			s.internalError(c, "botusers.upsert", err)
			return
		}
	}

	bu, err := s.fetchBotUser(sessionID)
	if err != nil {
		s.internalError(c, "botusers.upsert", err)
		return
	}

	status := http.StatusOK
	message := "bot user updated"
	if created {
		status = http.StatusCreated
		message = "bot user created"
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"created": created,
		"data":    bu,
	})
}

// incrementCounters applies numeric deltas to the counter columns in a single
// UPDATE, clamped so a counter never drops below zero. Fractional deltas are
// truncated toward zero; non-numeric values are ignored.
func (s *Server) incrementCounters(c *gin.Context) {
	sessionID := c.Param("sessionId")

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := s.botUserExists(sessionID)
	if err != nil {
		s.internalError(c, "botusers.counters", err)
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "bot user not found")
		return
	}

	set := map[string]any{}
	for _, col := range counterColumns {
		raw, ok := body[col]
		if !ok {
			continue
		}
		delta, ok := numericDelta(raw)
		if !ok {
			continue
		}
		set[col] = gorm.Expr("GREATEST(0, "+col+" + ?)", delta)
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "no valid counters provided",
			"allowed": counterColumns,
		})
		return
	}

	if err := s.db.Model(&models.BotUser{}).Where("session_id = ?", sessionID).Updates(set).Error; err != nil {
		s.internalError(c, "botusers.counters", err)
		return
	}

	bu, err := s.fetchBotUser(sessionID)
	if err != nil {
		s.internalError(c, "botusers.counters", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "counters updated",
		"data":    bu,
	})
}

// numericDelta accepts JSON numbers and numeric strings, truncating to int.
func numericDelta(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func (s *Server) deleteBotUser(c *gin.Context) {
	sessionID := c.Param("sessionId")

	res := s.db.Delete(&models.BotUser{}, "session_id = ?", sessionID)
	if res.Error != nil {
		s.internalError(c, "botusers.delete", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "bot user not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "bot user deleted (and its associated chat history)",
	})
}
