package onboarding

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =====================================================
// Enums and Constants
// =====================================================

// SessionType identifies which setup flow a session walks through
type SessionType string

const (
	SessionTypeRestaurantSetup SessionType = "restaurant_setup"
	SessionTypeVenueSetup      SessionType = "venue_setup"
	SessionTypeStaffSetup      SessionType = "staff_setup"
	SessionTypeFullSetup       SessionType = "full_setup"
)

// SessionStatus represents the lifecycle state of an onboarding session
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "not_started"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusPaused     SessionStatus = "paused"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// StepStatus represents the completion state of a single step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCurrent   StepStatus = "current"
	StepStatusCompleted StepStatus = "completed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepKind identifies a step handler. Every kind declared here must be
// registered in NewRegistry; TestRegistryCoversAllKinds enforces it.
type StepKind string

const (
	StepRestaurantDetails     StepKind = "restaurant_details"
	StepRestaurantSettings    StepKind = "restaurant_settings"
	StepBusinessOperations    StepKind = "business_operations"
	StepVenueDetails          StepKind = "venue_details"
	StepVenueConfiguration    StepKind = "venue_configuration"
	StepKPIBenchmarks         StepKind = "kpi_benchmarks"
	StepVenueSelection        StepKind = "venue_selection"
	StepRoleCreation          StepKind = "role_creation"
	StepStaffInvitation       StepKind = "staff_invitation"
	StepWhatsAppConfiguration StepKind = "whatsapp_configuration"
)

// AllStepKinds lists every declared step kind, in canonical flow order.
func AllStepKinds() []StepKind {
	return []StepKind{
		StepRestaurantDetails,
		StepRestaurantSettings,
		StepBusinessOperations,
		StepVenueDetails,
		StepVenueConfiguration,
		StepKPIBenchmarks,
		StepVenueSelection,
		StepRoleCreation,
		StepStaffInvitation,
		StepWhatsAppConfiguration,
	}
}

// =====================================================
// Step data
// =====================================================

// StepData holds the field values a step has committed (or is drafting).
// Stored as JSONB inside the session's steps column.
type StepData map[string]interface{}

// Clone returns a shallow copy so callers can mutate without aliasing
// the session's stored data.
func (d StepData) Clone() StepData {
	if d == nil {
		return nil
	}
	out := make(StepData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether the data carries no fields.
func (d StepData) IsEmpty() bool {
	return len(d) == 0
}

// =====================================================
// Step and session records
// =====================================================

// StepRecord is one entry in a session's ordered steps array
type StepRecord struct {
	ID               StepKind   `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Order            int        `json:"order"`
	Status           StepStatus `json:"status"`
	IsRequired       bool       `json:"is_required"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Data             StepData   `json:"data,omitempty"`
	Metadata         StepData   `json:"metadata,omitempty"`
}

// StepList wraps the steps array for JSONB storage
type StepList []StepRecord

// Value implements driver.Valuer
func (l StepList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *StepList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported steps column type %T", src)
	}
}

// Session is the authoritative onboarding record for one user flow.
//
// Invariants the engine relies on:
//   - Steps is the ground truth for iteration; TotalSteps is a stored hint
//     that may lag behind len(Steps) and must be reconciled on read.
//   - CompletedSteps is always within [0, len(Steps)]; Steps[CompletedSteps]
//     is the active step, absent exactly when the session is terminal.
type Session struct {
	ID                     uuid.UUID     `json:"id" db:"id"`
	UserID                 uuid.UUID     `json:"user_id" db:"user_id"`
	Type                   SessionType   `json:"type" db:"type"`
	Status                 SessionStatus `json:"status" db:"status"`
	CurrentStep            StepKind      `json:"current_step" db:"current_step"`
	Steps                  StepList      `json:"steps" db:"steps"`
	RestaurantID           *uuid.UUID    `json:"restaurant_id,omitempty" db:"restaurant_id"`
	VenueID                *uuid.UUID    `json:"venue_id,omitempty" db:"venue_id"`
	TotalSteps             int           `json:"total_steps" db:"total_steps"`
	CompletedSteps         int           `json:"completed_steps" db:"completed_steps"`
	ProgressPercentage     float64       `json:"progress_percentage" db:"progress_percentage"`
	EstimatedTimeRemaining int           `json:"estimated_time_remaining" db:"estimated_time_remaining"`
	CreatedAt              time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at" db:"updated_at"`
}

// ActiveStep returns the step at index CompletedSteps, or false when the
// session is terminal.
func (s *Session) ActiveStep() (*StepRecord, bool) {
	if s == nil || s.CompletedSteps < 0 || s.CompletedSteps >= len(s.Steps) {
		return nil, false
	}
	return &s.Steps[s.CompletedSteps], true
}

// IsTerminal reports whether every step has been completed.
func (s *Session) IsTerminal() bool {
	return s != nil && s.CompletedSteps >= len(s.Steps)
}

// IsActive reports whether the session can still be driven forward.
func (s *Session) IsActive() bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case SessionStatusNotStarted, SessionStatusInProgress, SessionStatusPaused:
		return true
	}
	return false
}

// StepByID returns the step record with the given kind, if present.
func (s *Session) StepByID(kind StepKind) (*StepRecord, bool) {
	for i := range s.Steps {
		if s.Steps[i].ID == kind {
			return &s.Steps[i], true
		}
	}
	return nil, false
}

// =====================================================
// Requests and projections
// =====================================================

// CreateSessionRequest is the payload for starting a new session
type CreateSessionRequest struct {
	Type         SessionType `json:"type" binding:"required"`
	RestaurantID *uuid.UUID  `json:"restaurant_id,omitempty"`
	VenueID      *uuid.UUID  `json:"venue_id,omitempty"`
	Context      StepData    `json:"context,omitempty"`
}

// CompleteStepRequest is the payload for committing the active step
type CompleteStepRequest struct {
	StepID StepKind `json:"step_id" binding:"required"`
	Data   StepData `json:"data"`
}

// OnboardingStatus summarizes whether a user still needs onboarding
type OnboardingStatus struct {
	NeedsOnboarding      bool    `json:"needs_onboarding"`
	HasActiveSession     bool    `json:"has_active_session"`
	CompletionPercentage float64 `json:"completion_percentage"`
}
