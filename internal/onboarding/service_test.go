package onboarding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateSession(ctx context.Context, session *Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) GetActiveSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) GetLatestSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) UpdateSession(ctx context.Context, session *Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewRegistry(HandlerDeps{}), nil, nil, zap.NewNop())
}

func TestCreateSessionBuildsFlow(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetActiveSession", ctx, userID).Return(nil, ErrSessionNotFound)
	mockRepo.On("CreateSession", ctx, mock.AnythingOfType("*onboarding.Session")).Return(nil)

	session, err := service.CreateSession(ctx, userID, &CreateSessionRequest{Type: SessionTypeRestaurantSetup})

	assert.NoError(t, err)
	assert.Equal(t, SessionStatusInProgress, session.Status)
	assert.Equal(t, 3, session.TotalSteps)
	assert.Equal(t, StepRestaurantDetails, session.CurrentStep)
	assert.Equal(t, StepStatusCurrent, session.Steps[0].Status)
	assert.Equal(t, 0, session.CompletedSteps)

	mockRepo.AssertExpectations(t)
}

func TestCreateSessionMergesIntoActive(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	userID := uuid.New()
	existing := sessionWithSteps(0, currentStep(StepRestaurantDetails, nil))
	existing.UserID = userID

	mockRepo.On("GetActiveSession", ctx, userID).Return(existing, nil)

	session, err := service.CreateSession(ctx, userID, &CreateSessionRequest{Type: SessionTypeFullSetup})

	assert.NoError(t, err)
	assert.Same(t, existing, session, "creating while active must return the existing session")
	mockRepo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestCompleteStepAdvancesAndStoresData(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := twoStepSession()

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	mockRepo.On("UpdateSession", ctx, session).Return(nil)

	data := StepData{"name": "Trattoria Sole", "address": "Via Roma 1", "city": "Roma"}
	updated, err := service.CompleteStep(ctx, session.ID, StepRestaurantDetails, data)

	assert.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedSteps)
	assert.Equal(t, StepVenueDetails, updated.CurrentStep)
	assert.Equal(t, StepStatusCompleted, updated.Steps[0].Status)
	assert.Equal(t, "Trattoria Sole", updated.Steps[0].Data["name"])
	assert.Equal(t, StepStatusCurrent, updated.Steps[1].Status)

	mockRepo.AssertExpectations(t)
}

func TestCompleteStepRejectsMismatch(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := twoStepSession()

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	_, err := service.CompleteStep(ctx, session.ID, StepVenueDetails, StepData{"venue_name": "Main"})

	assert.ErrorIs(t, err, ErrStepMismatch)
	mockRepo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything)
}

func TestCompleteStepValidationLeavesSessionUntouched(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := twoStepSession()

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	// Missing required fields for restaurant_details.
	_, err := service.CompleteStep(ctx, session.ID, StepRestaurantDetails, StepData{"name": "Solo"})

	assert.ErrorIs(t, err, ErrStepDataInvalid)
	assert.Equal(t, 0, session.CompletedSteps)
	assert.Equal(t, StepStatusCurrent, session.Steps[0].Status)
	mockRepo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything)
}

func TestCompleteStepRejectsEmptyRequired(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := twoStepSession()

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	_, err := service.CompleteStep(ctx, session.ID, StepRestaurantDetails, StepData{})

	assert.ErrorIs(t, err, ErrNothingToSubmit)
}

func TestCompleteLastStepFinishesSession(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := sessionWithSteps(1,
		completedStep(StepRestaurantDetails, StepData{"name": "x", "address": "y", "city": "z"}),
		currentStep(StepRestaurantSettings, nil),
	)

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	mockRepo.On("UpdateSession", ctx, session).Return(nil)

	updated, err := service.CompleteStep(ctx, session.ID, StepRestaurantSettings, StepData{
		"currency": "EUR", "timezone": "Europe/Rome",
	})

	assert.NoError(t, err)
	assert.Equal(t, SessionStatusCompleted, updated.Status)
	assert.Equal(t, StepKind(""), updated.CurrentStep)
	assert.True(t, updated.IsTerminal())
	assert.Equal(t, 100.0, updated.ProgressPercentage)
	assert.Equal(t, 0, updated.EstimatedTimeRemaining)
}

func TestBackStepRetainsData(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := sessionWithSteps(1,
		completedStep(StepRestaurantDetails, StepData{"name": "Bella Vista"}),
		currentStep(StepVenueDetails, nil),
	)

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	mockRepo.On("UpdateSession", ctx, session).Return(nil)

	updated, err := service.BackStep(ctx, session.ID)

	assert.NoError(t, err)
	assert.Equal(t, 0, updated.CompletedSteps)
	assert.Equal(t, StepRestaurantDetails, updated.CurrentStep)
	assert.Equal(t, StepStatusCurrent, updated.Steps[0].Status)
	assert.Equal(t, "Bella Vista", updated.Steps[0].Data["name"], "back must not clear stored data")
	assert.Equal(t, StepStatusPending, updated.Steps[1].Status)
}

func TestBackStepAtStart(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := twoStepSession()

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	_, err := service.BackStep(ctx, session.ID)
	assert.ErrorIs(t, err, ErrAtFirstStep)
}

func TestCheckOnboardingStatusDefaults(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetLatestSession", ctx, userID).Return(nil, ErrSessionNotFound)

	status, err := service.CheckOnboardingStatus(ctx, userID)

	assert.NoError(t, err, "a missing session is not an error")
	assert.True(t, status.NeedsOnboarding)
	assert.False(t, status.HasActiveSession)
	assert.Zero(t, status.CompletionPercentage)
}

func TestCheckOnboardingStatusCompleted(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	userID := uuid.New()
	session := sessionWithSteps(2,
		completedStep(StepRestaurantDetails, StepData{"name": "x"}),
		completedStep(StepRestaurantSettings, StepData{"currency": "EUR"}),
	)
	session.Status = SessionStatusCompleted

	mockRepo.On("GetLatestSession", ctx, userID).Return(session, nil)

	status, err := service.CheckOnboardingStatus(ctx, userID)

	assert.NoError(t, err)
	assert.False(t, status.NeedsOnboarding)
	assert.False(t, status.HasActiveSession)
	assert.Equal(t, 100.0, status.CompletionPercentage)
}

func TestResumeOrStartResumesPaused(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	userID := uuid.New()
	session := twoStepSession()
	session.UserID = userID
	session.Status = SessionStatusPaused

	mockRepo.On("GetActiveSession", ctx, userID).Return(session, nil)
	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	mockRepo.On("UpdateSession", ctx, session).Return(nil)

	resumed, err := service.ResumeOrStart(ctx, userID, &CreateSessionRequest{Type: SessionTypeRestaurantSetup})

	assert.NoError(t, err)
	assert.Equal(t, SessionStatusInProgress, resumed.Status)
}

func TestLifecycleTransitions(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	ctx := context.Background()
	session := twoStepSession()
	session.Status = SessionStatusCompleted

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	_, err := service.PauseSession(ctx, session.ID)
	assert.Error(t, err, "completed sessions cannot be paused")

	_, err = service.CancelSession(ctx, session.ID)
	assert.Error(t, err, "completed sessions cannot be cancelled")
}

// recordingSink captures invitations the staff_invitation step provisions
type recordingSink struct {
	invites []StaffInvite
}

func (r *recordingSink) CreateInvites(_ context.Context, _, _ *uuid.UUID, _ uuid.UUID, invites []StaffInvite) error {
	r.invites = append(r.invites, invites...)
	return nil
}

func TestCompleteStaffInvitationProvisionsInvites(t *testing.T) {
	mockRepo := new(MockRepository)
	sink := &recordingSink{}
	service := NewService(mockRepo, NewRegistry(HandlerDeps{}), sink, nil, zap.NewNop())

	ctx := context.Background()
	session := sessionWithSteps(0,
		currentStep(StepStaffInvitation, nil),
	)
	session.CurrentStep = StepStaffInvitation

	mockRepo.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	mockRepo.On("UpdateSession", ctx, session).Return(nil)

	_, err := service.CompleteStep(ctx, session.ID, StepStaffInvitation, StepData{
		"invites": []interface{}{
			map[string]interface{}{"email": "anna@example.com", "full_name": "Anna", "role": "waiter"},
			map[string]interface{}{"email": "marco@example.com", "full_name": "Marco", "role": "chef"},
		},
	})

	assert.NoError(t, err)
	assert.Len(t, sink.invites, 2)
	assert.Equal(t, "anna@example.com", sink.invites[0].Email)
}
