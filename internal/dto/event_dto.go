package dto

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	UserID    uuid.UUID `json:"userId"`
	UserEmail string    `json:"userEmail"`
	UserName  *string   `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type EventCreateRequest struct {
	Message string `json:"message" validate:"required"`
}

type EventUpdateRequest struct {
	Message string `json:"message" validate:"required"`
}
