package onboarding

import "math"

// Progress is the derived view of how far a session has advanced. It is
// recomputed from the session on every read and holds no state of its own.
type Progress struct {
	ActualTotalSteps int     `json:"actual_total_steps"`
	TotalSteps       int     `json:"total_steps"`
	CompletedSteps   int     `json:"completed_steps"`
	Percentage       float64 `json:"percentage"`
	IsLastStep       bool    `json:"is_last_step"`
	CanProceed       bool    `json:"can_proceed"`
	IsComplete       bool    `json:"is_complete"`
}

// CalculateProgress derives progress metrics from the session and the
// current draft.
//
// The stored TotalSteps hint can go stale when the server reshapes the
// flow based on earlier answers, so the larger of the hint and the actual
// steps length wins; a smaller hint must never hide steps that exist.
func CalculateProgress(session *Session, draft StepData) Progress {
	if session == nil {
		return Progress{}
	}

	actual := len(session.Steps)
	total := session.TotalSteps
	if actual > total {
		total = actual
	}

	completed := session.CompletedSteps
	if completed < 0 {
		completed = 0
	}
	if completed > actual {
		completed = actual
	}

	var pct float64
	if total > 0 {
		pct = math.Round(float64(completed)/float64(total)*100*10) / 10
	}

	canProceed := !draft.IsEmpty()
	if !canProceed {
		// Revisiting a previously completed step via back navigation must
		// still allow moving forward without re-entering anything.
		if step, ok := session.ActiveStep(); ok && !step.Data.IsEmpty() {
			canProceed = true
		}
	}

	return Progress{
		ActualTotalSteps: actual,
		TotalSteps:       total,
		CompletedSteps:   completed,
		Percentage:       pct,
		IsLastStep:       total > 0 && completed == total-1,
		CanProceed:       canProceed,
		IsComplete:       actual > 0 && completed >= actual,
	}
}

// EstimateTimeRemaining sums the per-step estimates of everything not yet
// completed, in minutes.
func EstimateTimeRemaining(session *Session) int {
	if session == nil {
		return 0
	}
	remaining := 0
	for i := session.CompletedSteps; i < len(session.Steps); i++ {
		remaining += session.Steps[i].EstimatedMinutes
	}
	return remaining
}

// =====================================================
// Completion overview projection
// =====================================================

// SectionProgress reports whether every step of a named group is done
type SectionProgress struct {
	Name      string     `json:"name"`
	Steps     []StepKind `json:"steps"`
	Completed bool       `json:"completed"`
}

// CompletionView is the read-only projection consumed by the dashboard's
// setup checklist. It is derived entirely from the session.
type CompletionView struct {
	OverallProgress float64           `json:"overall_progress"`
	Sections        []SectionProgress `json:"sections"`
	ActiveSession   *Session          `json:"active_session,omitempty"`
}

// BuildCompletionView groups the session's steps into display sections.
// Sections whose steps are absent from this flow are omitted; a section is
// completed when every one of its steps present in the flow is completed.
func BuildCompletionView(session *Session) CompletionView {
	view := CompletionView{ActiveSession: session}
	if session == nil {
		return view
	}

	view.OverallProgress = CalculateProgress(session, nil).Percentage

	for _, section := range progressSections {
		var present []StepKind
		done := true
		for _, kind := range section.Steps {
			step, ok := session.StepByID(kind)
			if !ok {
				continue
			}
			present = append(present, kind)
			if step.Status != StepStatusCompleted {
				done = false
			}
		}
		if len(present) == 0 {
			continue
		}
		view.Sections = append(view.Sections, SectionProgress{
			Name:      section.Name,
			Steps:     present,
			Completed: done,
		})
	}
	return view
}
