package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"dinehub/restaurant-portal/restaurant-portal-backend/internal/onboarding"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateInvitation(ctx context.Context, invitation *Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockRepository) GetInvitation(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invitation), args.Error(1)
}

func (m *MockRepository) ListInvitations(ctx context.Context, restaurantID uuid.UUID) ([]Invitation, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]Invitation), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status InvitationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func TestCreateInvites(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	ctx := context.Background()
	restaurantID := uuid.New()
	invitedBy := uuid.New()

	var created []*Invitation
	mockRepo.On("CreateInvitation", ctx, mock.AnythingOfType("*staff.Invitation")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*Invitation))
		}).
		Return(nil)

	err := service.CreateInvites(ctx, &restaurantID, nil, invitedBy, []onboarding.StaffInvite{
		{Email: "anna@example.com", FullName: "Anna", Role: "waiter"},
		{Email: "marco@example.com", FullName: "Marco", Role: "chef"},
	})

	assert.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, InvitationStatusPending, created[0].Status)
	assert.Equal(t, "waiter", created[0].RoleName)
	assert.Equal(t, invitedBy, created[0].InvitedBy)
	assert.True(t, created[0].ExpiresAt.After(created[0].CreatedAt))

	mockRepo.AssertExpectations(t)
}

func TestRevokeInvitationOnlyPending(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetInvitation", ctx, id).Return(&Invitation{
		ID:     id,
		Status: InvitationStatusAccepted,
	}, nil)

	err := service.RevokeInvitation(ctx, id)
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
