package services

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
)

// ToPage maps items into a pagination envelope. Without a LimitOffset filter
// the page covers every item from offset zero.
func ToPage[T, D any](items []*T, total int64, toDTO func(*T) D, filters ...repository.Filter) dto.OffsetPagination[D] {
	out := make([]D, 0, len(items))
	for _, item := range items {
		out = append(out, toDTO(item))
	}

	page := dto.OffsetPagination[D]{
		Items: out,
		Limit: len(items),
		Total: total,
	}
	if lo, ok := repository.FindFilter[repository.LimitOffset](filters); ok {
		page.Limit = lo.Limit
		page.Offset = lo.Offset
	}
	if page.Total == 0 {
		page.Total = int64(len(items))
	}
	return page
}
