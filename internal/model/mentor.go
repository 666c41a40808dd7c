package model

import (
	"time"

	"github.com/google/uuid"
)

// Mentor holds the display metadata attached to global availability listings.
// Account data itself lives in the identity layer.
type Mentor struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}
