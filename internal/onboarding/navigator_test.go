package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeSessionAPI mimics the server's complete/back semantics in memory so
// navigator tests can exercise full round trips.
type fakeSessionAPI struct {
	session *Session
	failErr error
	calls   int
}

func (f *fakeSessionAPI) CompleteStep(_ context.Context, sessionID uuid.UUID, stepID StepKind, data StepData) (*Session, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}

	s := *f.session
	s.Steps = append(StepList{}, f.session.Steps...)

	active := &s.Steps[s.CompletedSteps]
	if active.ID != stepID {
		return nil, ErrStepMismatch
	}
	active.Status = StepStatusCompleted
	active.Data = data.Clone()
	s.CompletedSteps++
	if s.CompletedSteps < len(s.Steps) {
		s.Steps[s.CompletedSteps].Status = StepStatusCurrent
		s.CurrentStep = s.Steps[s.CompletedSteps].ID
	} else {
		s.CurrentStep = ""
		s.Status = SessionStatusCompleted
	}
	f.session = &s
	return &s, nil
}

func (f *fakeSessionAPI) BackStep(_ context.Context, sessionID uuid.UUID) (*Session, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}

	s := *f.session
	s.Steps = append(StepList{}, f.session.Steps...)

	if s.CompletedSteps == 0 {
		return nil, ErrAtFirstStep
	}
	if s.CompletedSteps < len(s.Steps) {
		s.Steps[s.CompletedSteps].Status = StepStatusPending
	}
	s.CompletedSteps--
	s.Steps[s.CompletedSteps].Status = StepStatusCurrent
	s.CurrentStep = s.Steps[s.CompletedSteps].ID
	f.session = &s
	return &s, nil
}

// blockingSessionAPI parks CompleteStep until released so tests can observe
// the navigator while a request is pending.
type blockingSessionAPI struct {
	fakeSessionAPI
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSessionAPI) CompleteStep(ctx context.Context, sessionID uuid.UUID, stepID StepKind, data StepData) (*Session, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.fakeSessionAPI.CompleteStep(ctx, sessionID, stepID, data)
}

func newTestNavigator(t *testing.T, session *Session) (*Navigator, *fakeSessionAPI) {
	t.Helper()
	api := &fakeSessionAPI{session: session}
	registry := NewRegistry(HandlerDeps{})
	return NewNavigator(api, registry, session, zap.NewNop()), api
}

func twoStepSession() *Session {
	s := sessionWithSteps(0,
		currentStep(StepRestaurantDetails, nil),
		StepRecord{ID: StepVenueDetails, Status: StepStatusPending},
	)
	s.CurrentStep = StepRestaurantDetails
	return s
}

func TestNavigatorCompleteAdvances(t *testing.T) {
	nav, _ := newTestNavigator(t, twoStepSession())

	nav.SetDraft(StepData{"name": "Trattoria Sole", "address": "Via Roma 1", "city": "Roma"})
	updated, err := nav.Complete(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedSteps)
	assert.Equal(t, StepVenueDetails, updated.CurrentStep)
	assert.Equal(t, StepStatusCompleted, updated.Steps[0].Status)
	assert.Equal(t, "Trattoria Sole", updated.Steps[0].Data["name"])

	// Draft reseeded for the new step.
	assert.True(t, nav.Draft().IsEmpty())
}

func TestNavigatorBackRestoresDraft(t *testing.T) {
	nav, _ := newTestNavigator(t, twoStepSession())

	nav.SetDraft(StepData{"name": "Bella Vista", "address": "Via Roma 1", "city": "Roma"})
	_, err := nav.Complete(context.Background())
	assert.NoError(t, err)

	updated, err := nav.Back(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, updated.CompletedSteps)
	assert.Equal(t, StepRestaurantDetails, updated.CurrentStep)

	// Round trip must not lose what was entered.
	assert.Equal(t, "Bella Vista", nav.Draft()["name"])
	assert.Equal(t, "Bella Vista", updated.Steps[0].Data["name"])
}

func TestNavigatorCompletePreconditions(t *testing.T) {
	nav, api := newTestNavigator(t, twoStepSession())

	// Required step, empty draft, nothing stored: rejected locally.
	_, err := nav.Complete(context.Background())
	assert.ErrorIs(t, err, ErrNothingToSubmit)
	assert.Zero(t, api.calls, "precondition violations must not reach the network")
}

func TestNavigatorBackAtFirstStep(t *testing.T) {
	nav, api := newTestNavigator(t, twoStepSession())

	_, err := nav.Back(context.Background())
	assert.ErrorIs(t, err, ErrAtFirstStep)
	assert.Zero(t, api.calls)
}

func TestNavigatorFailurePreservesState(t *testing.T) {
	nav, api := newTestNavigator(t, twoStepSession())
	api.failErr = errors.New("validation rejected")

	draft := StepData{"name": "Bella Vista", "address": "Via Roma 1", "city": "Roma"}
	nav.SetDraft(draft)

	_, err := nav.Complete(context.Background())
	assert.Error(t, err)

	// No optimistic advance, draft intact, navigation re-enabled.
	assert.Equal(t, 0, nav.Session().CompletedSteps)
	assert.Equal(t, draft, nav.Draft())

	api.failErr = nil
	_, err = nav.Complete(context.Background())
	assert.NoError(t, err)
}

func TestNavigatorSerializesNavigation(t *testing.T) {
	session := twoStepSession()
	api := &blockingSessionAPI{
		fakeSessionAPI: fakeSessionAPI{session: session},
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	nav := NewNavigator(api, NewRegistry(HandlerDeps{}), session, zap.NewNop())

	nav.SetDraft(StepData{"name": "Trattoria Sole", "address": "Via Roma 1", "city": "Roma"})

	done := make(chan error, 1)
	go func() {
		_, err := nav.Complete(context.Background())
		done <- err
	}()
	<-api.entered

	// While the first request is pending, both directions are refused.
	_, err := nav.Complete(context.Background())
	assert.ErrorIs(t, err, ErrNavigationInFlight)
	_, err = nav.Back(context.Background())
	assert.ErrorIs(t, err, ErrNavigationInFlight)

	close(api.release)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, nav.Session().CompletedSteps)

	// The guard re-enables once the pending request resolves.
	updated, err := nav.Back(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, updated.CompletedSteps)
}

func TestNavigatorTerminalHasNoHandler(t *testing.T) {
	session := sessionWithSteps(1,
		completedStep(StepRestaurantDetails, StepData{"name": "x"}),
	)
	nav, api := newTestNavigator(t, session)

	_, ok := nav.CurrentHandler()
	assert.False(t, ok)

	_, err := nav.Complete(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveStep)
	assert.Zero(t, api.calls)
}

func TestNavigatorRefreshKeepsDraftOnSameStep(t *testing.T) {
	session := twoStepSession()
	nav, _ := newTestNavigator(t, session)

	nav.SetDraft(StepData{"name": "Bella Vista"})

	refreshed := *session
	refreshed.Steps = append(StepList{}, session.Steps...)
	nav.Refresh(&refreshed)

	assert.Equal(t, "Bella Vista", nav.Draft()["name"])
}

func TestNavigatorCompleteRevisitedStepWithEmptyDraft(t *testing.T) {
	// After back navigation the stored data lets the user move forward
	// again without retyping.
	nav, _ := newTestNavigator(t, twoStepSession())

	nav.SetDraft(StepData{"name": "Bella Vista", "address": "Via Roma 1", "city": "Roma"})
	_, err := nav.Complete(context.Background())
	assert.NoError(t, err)
	_, err = nav.Back(context.Background())
	assert.NoError(t, err)

	assert.True(t, nav.Progress().CanProceed)
	updated, err := nav.Complete(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedSteps)
	assert.Equal(t, "Bella Vista", updated.Steps[0].Data["name"])
}
