package onboarding

// StepContext is the flattened view of everything earlier steps produced,
// handed to the active step's handler.
type StepContext map[string]interface{}

// BuildStepContext folds, in step order, the data of every completed step
// that precedes the active one, overlays the session's fixed identifiers,
// then overlays the current draft. Later sources win on key collision, so
// in-progress edits always take precedence and the most recently completed
// step overrides earlier ones that wrote the same key.
//
// The fold is a pure function of its inputs; calling it twice with the same
// session and draft yields the same result.
func BuildStepContext(session *Session, draft StepData) StepContext {
	ctx := StepContext{}
	if session == nil {
		for k, v := range draft {
			ctx[k] = v
		}
		return ctx
	}

	limit := session.CompletedSteps
	if limit > len(session.Steps) {
		limit = len(session.Steps)
	}
	for i := 0; i < limit; i++ {
		step := session.Steps[i]
		if step.Status != StepStatusCompleted {
			continue
		}
		for k, v := range step.Data {
			ctx[k] = v
		}
	}

	// Fixed identifiers sit above historical step data but below the draft,
	// so the current step can still point the flow at a different venue.
	if session.RestaurantID != nil {
		ctx["restaurant_id"] = session.RestaurantID.String()
	}
	if session.VenueID != nil {
		ctx["venue_id"] = session.VenueID.String()
	}

	for k, v := range draft {
		ctx[k] = v
	}
	return ctx
}

// String returns the context value under key as a string, if present.
func (c StepContext) String(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
