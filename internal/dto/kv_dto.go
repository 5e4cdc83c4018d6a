package dto

import (
	"time"

	"github.com/google/uuid"
)

type KV struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type KVCreateRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"max=255"`
}

type KVUpdateRequest struct {
	Value *string `json:"value" validate:"required,max=255"`
}
