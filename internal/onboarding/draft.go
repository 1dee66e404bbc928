package onboarding

// DraftHolder keeps the uncommitted edits for the active step. It reseeds
// only when the active step's identity changes, never on an unrelated
// session refresh, so background refetches cannot wipe in-progress input.
// It never performs I/O.
type DraftHolder struct {
	stepID StepKind
	data   StepData
}

// NewDraftHolder returns an empty holder not bound to any step.
func NewDraftHolder() *DraftHolder {
	return &DraftHolder{data: StepData{}}
}

// Sync points the holder at the session's active step. On a step-identity
// change the draft is reseeded from that step's stored data when present,
// else reset to empty. When the active step is unchanged the draft is left
// alone. A terminal session clears the holder.
func (d *DraftHolder) Sync(session *Session) {
	step, ok := session.ActiveStep()
	if !ok {
		d.stepID = ""
		d.data = StepData{}
		return
	}
	if step.ID == d.stepID {
		return
	}
	d.stepID = step.ID
	if !step.Data.IsEmpty() {
		d.data = step.Data.Clone()
	} else {
		d.data = StepData{}
	}
}

// Set replaces the entire draft. Callers merge beforehand if they want
// partial updates.
func (d *DraftHolder) Set(data StepData) {
	if data == nil {
		d.data = StepData{}
		return
	}
	d.data = data.Clone()
}

// Data returns a copy of the current draft.
func (d *DraftHolder) Data() StepData {
	return d.data.Clone()
}

// StepID returns the step the draft currently belongs to.
func (d *DraftHolder) StepID() StepKind {
	return d.stepID
}

// IsEmpty reports whether the draft carries no fields.
func (d *DraftHolder) IsEmpty() bool {
	return d.data.IsEmpty()
}
