package models

import "time"

// BotUser holds the conversation state for one bot session. The session_id is
// the natural key the bot pipeline uses everywhere, so it is the primary key
// rather than a surrogate id. Column names follow the existing schema the
// pipeline writes to.
type BotUser struct {
	SessionID             string    `gorm:"primaryKey;size:255" json:"session_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	Status                string    `gorm:"size:64" json:"status"`
	APIContactID          string    `gorm:"column:api_contact_id;size:255" json:"api_contact_id"`
	Nombre                string    `gorm:"size:255" json:"nombre"`
	TelefonoReal          string    `gorm:"size:64" json:"telefono_real"`
	Rol                   string    `gorm:"size:64" json:"rol"`
	BotStatus             string    `gorm:"size:64" json:"bot_status"`
	RejectedCount         int       `gorm:"not null;default:0" json:"rejected_count"`
	QuestionnaireStatus   string    `gorm:"size:64" json:"questionnaire_status"`
	PropertyID            string    `gorm:"size:255" json:"property_id"`
	CountOutcontext       int       `gorm:"not null;default:0" json:"count_outcontext"`
	LastIntencion         string    `gorm:"size:255" json:"last_intencion"`
	LastAccion            string    `gorm:"size:255" json:"last_accion"`
	LastBotReply          string    `gorm:"type:text" json:"last_bot_reply"`
	VecesPidiendoNombre   int       `gorm:"not null;default:0" json:"veces_pidiendo_nombre"`
	VecesPidiendoTelefono int       `gorm:"not null;default:0" json:"veces_pidiendo_telefono"`
}

func (BotUser) TableName() string { return "bot_users" }
