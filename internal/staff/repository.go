package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for staff invitations
type Repository interface {
	CreateInvitation(ctx context.Context, invitation *Invitation) error
	GetInvitation(ctx context.Context, id uuid.UUID) (*Invitation, error)
	ListInvitations(ctx context.Context, restaurantID uuid.UUID) ([]Invitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status InvitationStatus) error
}

// GormRepository implements Repository on gorm
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a gorm-backed invitation repository and ensures
// the table exists.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&Invitation{}); err != nil {
		return nil, err
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) CreateInvitation(ctx context.Context, invitation *Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *GormRepository) GetInvitation(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	var invitation Invitation
	if err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *GormRepository) ListInvitations(ctx context.Context, restaurantID uuid.UUID) ([]Invitation, error) {
	var invitations []Invitation
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status InvitationStatus) error {
	return r.db.WithContext(ctx).
		Model(&Invitation{}).
		Where("id = ?", id).
		Update("status", status).Error
}
