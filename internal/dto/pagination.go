package dto

// OffsetPagination is the envelope for every list response.
type OffsetPagination[T any] struct {
	Items  []T   `json:"items"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}
