package staff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"dinehub/restaurant-portal/restaurant-portal-backend/internal/onboarding"
)

const invitationTTL = 14 * 24 * time.Hour

// Service provides staff invitation business logic. It implements
// onboarding.InviteSink so the staff_invitation step can provision invites
// when it commits.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new staff service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInvites persists one pending invitation per invited team member.
func (s *Service) CreateInvites(ctx context.Context, restaurantID, venueID *uuid.UUID, invitedBy uuid.UUID, invites []onboarding.StaffInvite) error {
	now := time.Now()
	for _, invite := range invites {
		meta, err := json.Marshal(map[string]string{"source": "onboarding"})
		if err != nil {
			return fmt.Errorf("failed to encode invitation metadata: %w", err)
		}

		invitation := &Invitation{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			VenueID:      venueID,
			Email:        invite.Email,
			FullName:     invite.FullName,
			RoleName:     invite.Role,
			Status:       InvitationStatusPending,
			InvitedBy:    invitedBy,
			Metadata:     datatypes.JSON(meta),
			ExpiresAt:    now.Add(invitationTTL),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.CreateInvitation(ctx, invitation); err != nil {
			return fmt.Errorf("failed to create invitation for %s: %w", invite.Email, err)
		}

		s.logger.Info("Staff invitation created",
			zap.String("invitation_id", invitation.ID.String()),
			zap.String("email", invite.Email),
			zap.String("role", invite.Role))
	}
	return nil
}

// ListInvitations returns every invitation for a restaurant
func (s *Service) ListInvitations(ctx context.Context, restaurantID uuid.UUID) ([]Invitation, error) {
	return s.repo.ListInvitations(ctx, restaurantID)
}

// RevokeInvitation marks a pending invitation revoked
func (s *Service) RevokeInvitation(ctx context.Context, id uuid.UUID) error {
	invitation, err := s.repo.GetInvitation(ctx, id)
	if err != nil {
		return err
	}
	if invitation.Status != InvitationStatusPending {
		return fmt.Errorf("invitation %s is %s, only pending invitations can be revoked", id, invitation.Status)
	}
	return s.repo.UpdateStatus(ctx, id, InvitationStatusRevoked)
}
