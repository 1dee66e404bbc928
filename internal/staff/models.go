package staff

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InvitationStatus represents the lifecycle of a staff invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// Invitation is a pending request for a team member to join a restaurant.
// Rows are created when the onboarding staff_invitation step commits and by
// the team management screens afterwards.
type Invitation struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	RestaurantID *uuid.UUID       `json:"restaurant_id,omitempty" gorm:"type:uuid;index"`
	VenueID      *uuid.UUID       `json:"venue_id,omitempty" gorm:"type:uuid;index"`
	Email        string           `json:"email" gorm:"not null;index"`
	FullName     string           `json:"full_name"`
	RoleName     string           `json:"role_name" gorm:"not null"`
	Status       InvitationStatus `json:"status" gorm:"not null;default:pending"`
	InvitedBy    uuid.UUID        `json:"invited_by" gorm:"type:uuid"`
	Metadata     datatypes.JSON   `json:"metadata,omitempty"`
	ExpiresAt    time.Time        `json:"expires_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName overrides the gorm default
func (Invitation) TableName() string {
	return "staff_invitations"
}
