package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryCoversAllKinds(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	for _, kind := range AllStepKinds() {
		handler, err := registry.Resolve(kind)
		assert.NoError(t, err, "kind %s must have a handler", kind)
		assert.Equal(t, kind, handler.Kind())
	}
}

func TestRegistryRejectsUnknownKind(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	_, err := registry.Resolve(StepKind("made_up_step"))
	assert.ErrorIs(t, err, ErrUnknownStepKind)
}

func TestEveryFlowStepHasTemplateAndHandler(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})

	for _, sessionType := range []SessionType{
		SessionTypeRestaurantSetup,
		SessionTypeVenueSetup,
		SessionTypeStaffSetup,
		SessionTypeFullSetup,
	} {
		steps, err := BuildSteps(sessionType)
		assert.NoError(t, err)
		assert.NotEmpty(t, steps)
		assert.Equal(t, StepStatusCurrent, steps[0].Status)

		for i, step := range steps {
			assert.Equal(t, i+1, step.Order)
			assert.NotEmpty(t, step.Title, "step %s needs a title", step.ID)
			_, err := registry.Resolve(step.ID)
			assert.NoError(t, err, "flow %s references unregistered step %s", sessionType, step.ID)
		}
	}
}

func TestBuildStepsUnknownType(t *testing.T) {
	_, err := BuildSteps(SessionType("franchise_setup"))
	assert.ErrorIs(t, err, ErrUnknownSessionType)
}

func TestRestaurantDetailsValidation(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})
	handler, _ := registry.Resolve(StepRestaurantDetails)

	err := handler.Validate(context.Background(), StepContext{}, StepData{"name": "Bella Vista"})
	assert.Error(t, err, "address and city are required")

	err = handler.Validate(context.Background(), StepContext{}, StepData{
		"name":    "Bella Vista",
		"address": "Via Roma 1",
		"city":    "Roma",
	})
	assert.NoError(t, err)
}

func TestVenueSelectionAcceptsContextVenue(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})
	handler, _ := registry.Resolve(StepVenueSelection)

	err := handler.Validate(context.Background(), StepContext{}, StepData{})
	assert.Error(t, err)

	// A venue created by an earlier step satisfies the selection.
	err = handler.Validate(context.Background(), StepContext{"venue_id": "v1"}, StepData{})
	assert.NoError(t, err)

	err = handler.Validate(context.Background(), StepContext{}, StepData{"venue_id": "v2"})
	assert.NoError(t, err)
}

func TestWhatsAppConfigurationValidation(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})
	handler, _ := registry.Resolve(StepWhatsAppConfiguration)

	assert.True(t, handler.Optional())

	// Optional step accepts an empty confirmation.
	assert.NoError(t, handler.Validate(context.Background(), StepContext{}, StepData{}))

	err := handler.Validate(context.Background(), StepContext{}, StepData{
		"business_phone": "not-a-phone",
		"access_token":   "tok",
	})
	assert.Error(t, err)

	err = handler.Validate(context.Background(), StepContext{}, StepData{
		"business_phone": "+393331234567",
		"access_token":   "tok",
	})
	assert.NoError(t, err)
}

func TestStaffInvitationValidation(t *testing.T) {
	registry := NewRegistry(HandlerDeps{})
	handler, _ := registry.Resolve(StepStaffInvitation)

	err := handler.Validate(context.Background(), StepContext{}, StepData{
		"invites": []interface{}{
			map[string]interface{}{"email": "not-an-email", "role": "waiter"},
		},
	})
	assert.Error(t, err)

	err = handler.Validate(context.Background(), StepContext{}, StepData{
		"invites": []interface{}{
			map[string]interface{}{"email": "anna@example.com", "full_name": "Anna", "role": "waiter"},
		},
	})
	assert.NoError(t, err)
}
