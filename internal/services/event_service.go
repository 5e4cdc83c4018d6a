package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/google/uuid"
)

type EventService struct {
	*Service[models.Event]
}

func NewEventService(repo repository.Repository[models.Event]) *EventService {
	return &EventService{Service: NewService[models.Event](repo, nil)}
}

// Create stores an event and reloads it so the owner is populated.
func (s *EventService) Create(ctx context.Context, input any) (*models.Event, error) {
	ev, err := s.Service.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ev.ID)
}

// Update writes the change and reloads the event with its owner.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, input any) (*models.Event, error) {
	if _, err := s.Service.Update(ctx, id, input); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// IsOwner reports whether the event exists and belongs to userID.
func (s *EventService) IsOwner(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return s.Exists(ctx,
		repository.Equal{Column: "id", Value: eventID},
		repository.Equal{Column: "user_id", Value: userID},
	)
}

func (s *EventService) ToDTO(e *models.Event) dto.Event {
	out := dto.Event{
		ID:        e.ID,
		Message:   e.Message,
		UserID:    e.UserID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.User != nil {
		out.UserEmail = e.User.Email
		out.UserName = e.User.Name
	}
	return out
}

func (s *EventService) ToPage(items []*models.Event, total int64, filters ...repository.Filter) dto.OffsetPagination[dto.Event] {
	return ToPage(items, total, s.ToDTO, filters...)
}
