// Package models holds the persisted record shapes. JSON tags use column names
// so that loosely typed input keyed by column can be applied with Assign; the
// wire representation lives in package dto.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Identifiable is implemented by every persisted model.
type Identifiable interface {
	GetID() uuid.UUID
	SetID(uuid.UUID)
}

// Assign applies data, keyed by column name, onto dst. Only keys present in data
// are touched and unknown keys are ignored.
func Assign(dst any, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}
