package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can sign in. HashedPassword is nil for accounts
// authenticated by an external provider.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"size:255;not null;uniqueIndex:uk_user_account_email" json:"email"`
	Name           *string    `gorm:"size:255" json:"name"`
	HashedPassword *string    `gorm:"size:255" json:"hashed_password"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	IsSuperuser    bool       `gorm:"not null" json:"is_superuser"`
	IsVerified     bool       `gorm:"not null" json:"is_verified"`
	VerifiedAt     *time.Time `json:"verified_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Events         []Event    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "user_account"
}

// BeforeCreate ensures UUID is set before creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) GetID() uuid.UUID   { return u.ID }
func (u *User) SetID(id uuid.UUID) { u.ID = id }
