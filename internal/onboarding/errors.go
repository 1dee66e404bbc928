package onboarding

import "errors"

var (
	// ErrSessionNotFound is returned when a session id does not resolve.
	// An absent *active* session is not an error; lifecycle helpers map it
	// to "onboarding not started".
	ErrSessionNotFound = errors.New("onboarding session not found")

	// ErrActiveSessionExists signals the single-active-session constraint.
	ErrActiveSessionExists = errors.New("an onboarding session is already active for this user")

	// ErrUnknownSessionType is returned for a session type with no flow definition.
	ErrUnknownSessionType = errors.New("unknown onboarding session type")

	// ErrUnknownStepKind is returned when no handler is registered for a step id.
	ErrUnknownStepKind = errors.New("unknown onboarding step kind")

	// ErrNoActiveStep rejects a complete transition on a terminal session.
	ErrNoActiveStep = errors.New("no active step to complete")

	// ErrStepMismatch rejects a completion targeting a step other than the active one.
	ErrStepMismatch = errors.New("submitted step is not the active step")

	// ErrAtFirstStep rejects back navigation when nothing has been completed.
	ErrAtFirstStep = errors.New("cannot go back before the first step")

	// ErrNothingToSubmit rejects completing a required step with no draft
	// and no previously stored data.
	ErrNothingToSubmit = errors.New("no step data to submit")

	// ErrStepDataInvalid wraps a step handler's validation failure so the
	// transport can distinguish bad input from server faults.
	ErrStepDataInvalid = errors.New("step data failed validation")

	// ErrNavigationInFlight rejects a second navigation request while one
	// is still pending for the same session.
	ErrNavigationInFlight = errors.New("a navigation request is already in flight")

	// ErrSessionNotActive rejects mutations on completed or cancelled sessions.
	ErrSessionNotActive = errors.New("session is not active")
)
