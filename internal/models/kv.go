package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KVKeyMaxLength   = 100
	KVValueMaxLength = 255
)

// KVStore is a single key/value pair. Lookups go through Key.
type KVStore struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:uk_kv_key" json:"key"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVStore) TableName() string {
	return "kv_store"
}

func (kv *KVStore) BeforeCreate(tx *gorm.DB) error {
	if kv.ID == uuid.Nil {
		kv.ID = uuid.New()
	}
	return nil
}

func (kv *KVStore) GetID() uuid.UUID   { return kv.ID }
func (kv *KVStore) SetID(id uuid.UUID) { kv.ID = id }
