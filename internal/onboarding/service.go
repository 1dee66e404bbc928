package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dinehub/restaurant-portal/restaurant-portal-backend/pkg/workflows"
)

// InviteSink receives the staff invitations committed by the
// staff_invitation step. Implemented by the staff module.
type InviteSink interface {
	CreateInvites(ctx context.Context, restaurantID, venueID *uuid.UUID, invitedBy uuid.UUID, invites []StaffInvite) error
}

// ProgressBroadcaster pushes progress updates to connected dashboard
// clients after navigation operations.
type ProgressBroadcaster interface {
	PublishProgress(userID uuid.UUID, sessionID uuid.UUID, progress Progress)
}

// lifecycle is the allowed session status transition table
var lifecycle = workflows.NewStateMachine(map[string][]string{
	string(SessionStatusNotStarted): {string(SessionStatusInProgress), string(SessionStatusCancelled)},
	string(SessionStatusInProgress): {string(SessionStatusPaused), string(SessionStatusCompleted), string(SessionStatusCancelled)},
	string(SessionStatusPaused):     {string(SessionStatusInProgress), string(SessionStatusCancelled)},
	string(SessionStatusCompleted):  {},
	string(SessionStatusCancelled):  {},
})

// Service is the session lifecycle manager: it owns every mutation of the
// authoritative session record and enforces the single-active-session-per-user
// constraint.
//
// Reconciliation policy for steps that disappear from the flow: step data the
// server stored is never deleted here, only excluded from accumulation while
// the step is absent from the Steps array; re-inserting the step brings its
// data back.
type Service struct {
	repo        Repository
	registry    *Registry
	invites     InviteSink
	broadcaster ProgressBroadcaster
	logger      *zap.Logger
}

// NewService creates a new onboarding service. invites and broadcaster are
// optional collaborators.
func NewService(repo Repository, registry *Registry, invites InviteSink, broadcaster ProgressBroadcaster, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		registry:    registry,
		invites:     invites,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// =====================================================
// Session creation and lookup
// =====================================================

// CreateSession starts a new onboarding session for the user. If a session
// is already active the existing one is returned instead of creating a
// second writer for the same record.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, req *CreateSessionRequest) (*Session, error) {
	existing, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Active session exists, merging create into it",
			zap.String("session_id", existing.ID.String()),
			zap.String("user_id", userID.String()))
		return existing, nil
	}

	steps, err := BuildSteps(req.Type)
	if err != nil {
		return nil, err
	}
	if !req.Context.IsEmpty() && len(steps) > 0 {
		steps[0].Data = req.Context.Clone()
	}

	now := time.Now()
	session := &Session{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         req.Type,
		Status:       SessionStatusInProgress,
		CurrentStep:  steps[0].ID,
		Steps:        steps,
		RestaurantID: req.RestaurantID,
		VenueID:      req.VenueID,
		TotalSteps:   len(steps),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.refreshDerived(session)

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding session created",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("type", string(session.Type)),
		zap.Int("total_steps", session.TotalSteps))

	return session, nil
}

// GetSession retrieves a session by id
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetSessionByID(ctx, id)
}

// GetActiveSession returns the user's active session, or nil when none
// exists. Absence is not an error.
func (s *Service) GetActiveSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetActiveSession(ctx, userID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSession persists fixed-context changes (restaurant/venue ids) on an
// active session.
func (s *Service) UpdateSession(ctx context.Context, id uuid.UUID, restaurantID, venueID *uuid.UUID) (*Session, error) {
	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}

	if restaurantID != nil {
		session.RestaurantID = restaurantID
	}
	if venueID != nil {
		session.VenueID = venueID
	}
	session.UpdatedAt = time.Now()

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session entirely
func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSession(ctx, id)
}

// =====================================================
// Navigation operations
// =====================================================

// CompleteStep commits data for the active step and advances the session.
// The submitted step must be the active one; the handler validates the data
// against the accumulated context before anything is persisted. On any
// failure the stored session is left untouched.
func (s *Service) CompleteStep(ctx context.Context, sessionID uuid.UUID, stepID StepKind, data StepData) (*Session, error) {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}

	active, ok := session.ActiveStep()
	if !ok {
		return nil, ErrNoActiveStep
	}
	if active.ID != stepID {
		return nil, fmt.Errorf("%w: got %s, active is %s", ErrStepMismatch, stepID, active.ID)
	}

	handler, err := s.registry.Resolve(stepID)
	if err != nil {
		return nil, err
	}

	if data.IsEmpty() && active.Data.IsEmpty() && !handler.Optional() {
		return nil, ErrNothingToSubmit
	}
	// Revisited step, nothing changed: recommit what was stored.
	if data.IsEmpty() && !active.Data.IsEmpty() {
		data = active.Data.Clone()
	}
	if data == nil {
		// Optional step confirmed with nothing to record.
		data = StepData{}
	}

	stepCtx := BuildStepContext(session, data)
	if err := handler.Validate(ctx, stepCtx, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStepDataInvalid, err)
	}

	active.Status = StepStatusCompleted
	active.Data = data.Clone()
	session.CompletedSteps++

	if next, ok := session.ActiveStep(); ok {
		next.Status = StepStatusCurrent
		session.CurrentStep = next.ID
	} else {
		session.CurrentStep = ""
		session.Status = SessionStatusCompleted
	}
	session.Status = s.guardStatus(session.Status)
	session.UpdatedAt = time.Now()
	s.refreshDerived(session)

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding step completed",
		zap.String("session_id", session.ID.String()),
		zap.String("step", string(stepID)),
		zap.Int("completed_steps", session.CompletedSteps),
		zap.Float64("progress", session.ProgressPercentage))

	s.runStepEffects(ctx, session, stepID, data)
	s.publishProgress(session)

	return session, nil
}

// BackStep reverts the session to the previous step. The reverted step's
// stored data is kept so the client can reseed its draft from it.
func (s *Service) BackStep(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	if session.CompletedSteps <= 0 {
		return nil, ErrAtFirstStep
	}

	// The step that was active (if any) returns to pending.
	if current, ok := session.ActiveStep(); ok {
		current.Status = StepStatusPending
	}

	session.CompletedSteps--
	previous := &session.Steps[session.CompletedSteps]
	previous.Status = StepStatusCurrent
	session.CurrentStep = previous.ID
	session.UpdatedAt = time.Now()
	s.refreshDerived(session)

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding step reverted",
		zap.String("session_id", session.ID.String()),
		zap.String("step", string(previous.ID)),
		zap.Int("completed_steps", session.CompletedSteps))

	s.publishProgress(session)

	return session, nil
}

// =====================================================
// Pause / resume / cancel
// =====================================================

// PauseSession suspends an in-progress session
func (s *Service) PauseSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.transition(ctx, id, SessionStatusPaused)
}

// ResumeSession reactivates a paused session
func (s *Service) ResumeSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.transition(ctx, id, SessionStatusInProgress)
}

// CancelSession abandons a session; its step data is retained for audit
func (s *Service) CancelSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.transition(ctx, id, SessionStatusCancelled)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to SessionStatus) (*Session, error) {
	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !lifecycle.CanTransition(string(session.Status), string(to)) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrSessionNotActive, session.Status, to)
	}

	session.Status = to
	session.UpdatedAt = time.Now()
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Session status changed",
		zap.String("session_id", session.ID.String()),
		zap.String("status", string(to)))
	return session, nil
}

// =====================================================
// Derived helpers
// =====================================================

// CheckOnboardingStatus reports whether the user still needs onboarding.
// No session on record means onboarding has not started, which is itself a
// "needs onboarding" answer, never an error.
func (s *Service) CheckOnboardingStatus(ctx context.Context, userID uuid.UUID) (*OnboardingStatus, error) {
	latest, err := s.repo.GetLatestSession(ctx, userID)
	if errors.Is(err, ErrSessionNotFound) {
		return &OnboardingStatus{NeedsOnboarding: true}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &OnboardingStatus{
		HasActiveSession:     latest.IsActive(),
		CompletionPercentage: CalculateProgress(latest, nil).Percentage,
	}
	status.NeedsOnboarding = latest.Status != SessionStatusCompleted
	return status, nil
}

// ResumeOrStart resumes the user's active session or creates a new one,
// as a single logical operation from the caller's point of view.
func (s *Service) ResumeOrStart(ctx context.Context, userID uuid.UUID, req *CreateSessionRequest) (*Session, error) {
	active, err := s.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.Status == SessionStatusPaused {
			return s.ResumeSession(ctx, active.ID)
		}
		return active, nil
	}
	return s.CreateSession(ctx, userID, req)
}

// GetCompletionView builds the dashboard checklist projection for a session
func (s *Service) GetCompletionView(ctx context.Context, sessionID uuid.UUID) (*CompletionView, error) {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := BuildCompletionView(session)
	return &view, nil
}

// =====================================================
// Internals
// =====================================================

func (s *Service) refreshDerived(session *Session) {
	if len(session.Steps) > session.TotalSteps {
		session.TotalSteps = len(session.Steps)
	}
	session.ProgressPercentage = CalculateProgress(session, nil).Percentage
	session.EstimatedTimeRemaining = EstimateTimeRemaining(session)
}

func (s *Service) guardStatus(status SessionStatus) SessionStatus {
	if status == SessionStatusNotStarted {
		return SessionStatusInProgress
	}
	return status
}

func (s *Service) runStepEffects(ctx context.Context, session *Session, stepID StepKind, data StepData) {
	if stepID != StepStaffInvitation || s.invites == nil || data.IsEmpty() {
		return
	}

	var d StaffInvitationData
	if err := decodeStepData(data, &d); err != nil || len(d.Invites) == 0 {
		return
	}
	if err := s.invites.CreateInvites(ctx, session.RestaurantID, session.VenueID, session.UserID, d.Invites); err != nil {
		// The step itself committed; invitation provisioning failures are
		// retried from the staff screens, not by rolling the flow back.
		s.logger.Error("Failed to provision staff invitations",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))
	}
}

func (s *Service) publishProgress(session *Session) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.PublishProgress(session.UserID, session.ID, CalculateProgress(session, nil))
}
