package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
)

// KVService addresses entries by key rather than id.
type KVService struct {
	*Service[models.KVStore]
}

func NewKVService(repo repository.Repository[models.KVStore]) *KVService {
	return &KVService{Service: NewService[models.KVStore](repo, nil)}
}

func (s *KVService) GetByKey(ctx context.Context, key string) (*models.KVStore, error) {
	return s.GetOne(ctx, repository.Equal{Column: "key", Value: key})
}

func (s *KVService) UpdateByKey(ctx context.Context, key string, fields Fields) (*models.KVStore, error) {
	kv, err := s.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	delete(fields, "key")
	return s.Update(ctx, kv.ID, fields)
}

func (s *KVService) DeleteByKey(ctx context.Context, key string) (*models.KVStore, error) {
	kv, err := s.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.Delete(ctx, kv.ID)
}

func (s *KVService) ToDTO(kv *models.KVStore) dto.KV {
	return dto.KV{
		ID:        kv.ID,
		Key:       kv.Key,
		Value:     kv.Value,
		CreatedAt: kv.CreatedAt,
		UpdatedAt: kv.UpdatedAt,
	}
}

func (s *KVService) ToPage(items []*models.KVStore, total int64, filters ...repository.Filter) dto.OffsetPagination[dto.KV] {
	return ToPage(items, total, s.ToDTO, filters...)
}
