package onboarding

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionAPI is the slice of the lifecycle manager the navigator drives.
// In-process callers hand it the *Service; a client SDK can satisfy it over
// HTTP instead.
type SessionAPI interface {
	CompleteStep(ctx context.Context, sessionID uuid.UUID, stepID StepKind, data StepData) (*Session, error)
	BackStep(ctx context.Context, sessionID uuid.UUID) (*Session, error)
}

// Navigator orchestrates forward/backward movement through one session.
// It owns the draft for the active step and serializes navigation: while a
// complete or back request is pending no second request may be issued for
// the same session, because the server record is a single mutable sequence.
//
// On failure the held session and draft are left exactly as they were, so
// the user never loses input to a rejected submission.
type Navigator struct {
	api      SessionAPI
	registry *Registry
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight bool
	session  *Session
	draft    *DraftHolder
}

// NewNavigator creates a navigator positioned at the session's active step.
func NewNavigator(api SessionAPI, registry *Registry, session *Session, logger *zap.Logger) *Navigator {
	n := &Navigator{
		api:      api,
		registry: registry,
		logger:   logger,
		session:  session,
		draft:    NewDraftHolder(),
	}
	n.draft.Sync(session)
	return n
}

// Session returns the last authoritative session the navigator holds.
func (n *Navigator) Session() *Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session
}

// Refresh replaces the held session after an external refetch. The draft
// reseeds only if the active step identity changed.
func (n *Navigator) Refresh(session *Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session = session
	n.draft.Sync(session)
}

// Draft returns a copy of the current draft.
func (n *Navigator) Draft() StepData {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.draft.Data()
}

// SetDraft replaces the draft for the active step.
func (n *Navigator) SetDraft(data StepData) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.draft.Set(data)
}

// Context returns the accumulated context the active step's handler sees.
func (n *Navigator) Context() StepContext {
	n.mu.Lock()
	defer n.mu.Unlock()
	return BuildStepContext(n.session, n.draft.data)
}

// Progress derives the display metrics for the held session and draft.
func (n *Navigator) Progress() Progress {
	n.mu.Lock()
	defer n.mu.Unlock()
	return CalculateProgress(n.session, n.draft.data)
}

// CurrentHandler resolves the handler for the active step. At the terminal
// state there is no active step and no handler lookup happens.
func (n *Navigator) CurrentHandler() (StepHandler, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	step, ok := n.session.ActiveStep()
	if !ok {
		return nil, false
	}
	h, err := n.registry.Resolve(step.ID)
	if err != nil {
		return nil, false
	}
	return h, true
}

// Complete commits the draft for the active step and advances. Preconditions
// are rejected locally without touching the network.
func (n *Navigator) Complete(ctx context.Context) (*Session, error) {
	n.mu.Lock()
	if n.inFlight {
		n.mu.Unlock()
		return nil, ErrNavigationInFlight
	}

	step, ok := n.session.ActiveStep()
	if !ok {
		n.mu.Unlock()
		return nil, ErrNoActiveStep
	}

	data := n.draft.Data()
	if data.IsEmpty() && step.Data.IsEmpty() {
		handler, err := n.registry.Resolve(step.ID)
		if err != nil {
			n.mu.Unlock()
			return nil, err
		}
		if !handler.Optional() {
			n.mu.Unlock()
			return nil, ErrNothingToSubmit
		}
	}

	sessionID := n.session.ID
	stepID := step.ID
	n.inFlight = true
	n.mu.Unlock()

	updated, err := n.api.CompleteStep(ctx, sessionID, stepID, data)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.inFlight = false
	if err != nil {
		// Session and draft stay as they were; the user corrects and retries.
		return nil, err
	}

	n.session = updated
	n.draft.Sync(updated)

	n.logger.Debug("Navigation advanced",
		zap.String("session_id", sessionID.String()),
		zap.String("completed", string(stepID)),
		zap.Int("completed_steps", updated.CompletedSteps))
	return updated, nil
}

// Back reverts to the previous step and reseeds the draft from whatever
// that step had stored, so nothing entered before is lost.
func (n *Navigator) Back(ctx context.Context) (*Session, error) {
	n.mu.Lock()
	if n.inFlight {
		n.mu.Unlock()
		return nil, ErrNavigationInFlight
	}
	if n.session.CompletedSteps <= 0 {
		n.mu.Unlock()
		return nil, ErrAtFirstStep
	}

	sessionID := n.session.ID
	n.inFlight = true
	n.mu.Unlock()

	updated, err := n.api.BackStep(ctx, sessionID)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.inFlight = false
	if err != nil {
		return nil, err
	}

	n.session = updated
	n.draft.Sync(updated)

	n.logger.Debug("Navigation reverted",
		zap.String("session_id", sessionID.String()),
		zap.String("current", string(updated.CurrentStep)))
	return updated, nil
}
