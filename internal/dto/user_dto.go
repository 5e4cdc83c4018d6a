package dto

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        *string    `json:"name"`
	IsActive    bool       `json:"isActive"`
	IsSuperuser bool       `json:"isSuperuser"`
	IsVerified  bool       `json:"isVerified"`
	VerifiedAt  *time.Time `json:"verifiedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type UserCreateRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,maxbytes=72"`
	Name        *string `json:"name" validate:"omitempty,max=255"`
	IsSuperuser *bool   `json:"isSuperuser"`
	IsActive    *bool   `json:"isActive"`
	IsVerified  *bool   `json:"isVerified"`
}

func (r UserCreateRequest) Fields() map[string]any {
	fields := map[string]any{
		"email":    r.Email,
		"password": r.Password,
	}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	setBool(fields, "is_superuser", r.IsSuperuser)
	setBool(fields, "is_active", r.IsActive)
	setBool(fields, "is_verified", r.IsVerified)
	return fields
}

// UserUpdateRequest carries a partial update; nil fields are left untouched.
type UserUpdateRequest struct {
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Password    *string `json:"password" validate:"omitempty,min=8,maxbytes=72"`
	Name        *string `json:"name" validate:"omitempty,max=255"`
	IsSuperuser *bool   `json:"isSuperuser"`
	IsActive    *bool   `json:"isActive"`
	IsVerified  *bool   `json:"isVerified"`
}

func (r UserUpdateRequest) Fields() map[string]any {
	fields := map[string]any{}
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	if r.Password != nil {
		fields["password"] = *r.Password
	}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	setBool(fields, "is_superuser", r.IsSuperuser)
	setBool(fields, "is_active", r.IsActive)
	setBool(fields, "is_verified", r.IsVerified)
	return fields
}

func (r SignupRequest) Fields() map[string]any {
	fields := map[string]any{
		"email":    r.Email,
		"password": r.Password,
	}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	return fields
}

func setBool(fields map[string]any, key string, v *bool) {
	if v != nil {
		fields[key] = *v
	}
}
