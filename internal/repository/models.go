package repository

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"gorm.io/gorm"
)

func NewUserRepository(db *gorm.DB) *Gorm[models.User] {
	return NewGorm[models.User](db, Options{
		Name:         "user",
		DefaultOrder: []OrderBy{{Column: "email"}},
	})
}

// NewEventRepository joins the owning user on reads so responses can carry
// the owner's email and name.
func NewEventRepository(db *gorm.DB) *Gorm[models.Event] {
	return NewGorm[models.Event](db, Options{
		Name:         "event",
		DefaultOrder: []OrderBy{{Column: "created_at"}, {Column: "id"}},
		Joins:        []string{"User"},
	})
}

func NewKVRepository(db *gorm.DB) *Gorm[models.KVStore] {
	return NewGorm[models.KVStore](db, Options{
		Name:         "key",
		DefaultOrder: []OrderBy{{Column: "key"}},
	})
}
