package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is an append-only log entry owned by a single user.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User is only populated by queries that join it explicitly.
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Event) TableName() string {
	return "event"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Event) GetID() uuid.UUID   { return e.ID }
func (e *Event) SetID(id uuid.UUID) { e.ID = id }
