package dto

type SignupRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,maxbytes=72"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
}

// LoginRequest accepts form-encoded or JSON credentials. Username holds the
// account email.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type PasswordUpdateRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,maxbytes=72"`
}

// TokenResponse keeps the OAuth2 password-flow field names.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ErrorResponse struct {
	Error      bool              `json:"error"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

type HealthResponse struct {
	App            string `json:"app"`
	Version        string `json:"version"`
	DatabaseStatus string `json:"databaseStatus"`
}
