package response

import (
	"time"

	"user-activation/internal/data/entity"
)

// RegisterResponse is returned after a successful registration. The
// activation code itself is only sent out of band.
type RegisterResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	ExpiresAt time.Time `json:"activation_expires_at"`
}

func RegisterToResponse(user *entity.User) RegisterResponse {
	resp := RegisterResponse{
		UserID:   user.ID.String(),
		Email:    user.Email,
		IsActive: user.IsActive,
	}
	if user.ActivationExpiresAt != nil {
		resp.ExpiresAt = *user.ActivationExpiresAt
	}
	return resp
}
