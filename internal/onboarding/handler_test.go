package onboarding

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForMapsDomainErrors(t *testing.T) {
	h := &Handler{}

	assert.Equal(t, http.StatusNotFound, h.statusFor(ErrSessionNotFound))
	assert.Equal(t, http.StatusConflict, h.statusFor(ErrNavigationInFlight))
	assert.Equal(t, http.StatusUnprocessableEntity, h.statusFor(ErrStepMismatch))

	// Handler validation failures are bad input, not server faults.
	validationErr := fmt.Errorf("%w: step restaurant_details: field %q is required", ErrStepDataInvalid, "city")
	assert.Equal(t, http.StatusUnprocessableEntity, h.statusFor(validationErr))

	assert.Equal(t, http.StatusInternalServerError, h.statusFor(errors.New("connection reset")))
}
