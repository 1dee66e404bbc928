package onboarding

// HandlerDeps carries the external collaborators step handlers need.
// Nil fields degrade to local-only validation.
type HandlerDeps struct {
	WhatsApp WhatsAppVerifier
}

// Registry resolves a step kind to its handler. Registration happens once,
// in NewRegistry, over the declared kinds; there is no runtime fallback for
// an unregistered kind.
type Registry struct {
	handlers map[StepKind]StepHandler
}

// NewRegistry builds the registry with one handler per declared step kind.
func NewRegistry(deps HandlerDeps) *Registry {
	handlers := []StepHandler{
		restaurantDetailsHandler{},
		restaurantSettingsHandler{},
		businessOperationsHandler{},
		venueDetailsHandler{},
		venueConfigurationHandler{},
		kpiBenchmarksHandler{},
		venueSelectionHandler{},
		roleCreationHandler{},
		staffInvitationHandler{},
		whatsappConfigurationHandler{verifier: deps.WhatsApp},
	}

	byKind := make(map[StepKind]StepHandler, len(handlers))
	for _, h := range handlers {
		byKind[h.Kind()] = h
	}
	return &Registry{handlers: byKind}
}

// Resolve returns the handler for a step kind.
func (r *Registry) Resolve(kind StepKind) (StepHandler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, ErrUnknownStepKind
	}
	return h, nil
}

// Kinds returns every registered step kind.
func (r *Registry) Kinds() []StepKind {
	kinds := make([]StepKind, 0, len(r.handlers))
	for kind := range r.handlers {
		kinds = append(kinds, kind)
	}
	return kinds
}
