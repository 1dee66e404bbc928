package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// StepHandler validates the data a step is about to commit, given the
// context accumulated from every earlier step. Handlers are pure with
// respect to the session; they never mutate it.
type StepHandler interface {
	Kind() StepKind
	// Optional handlers may be completed with an empty confirmation record
	// when the user has nothing to enter.
	Optional() bool
	Validate(ctx context.Context, stepCtx StepContext, data StepData) error
}

// WhatsAppVerifier checks a WhatsApp Business channel configuration against
// the provider before the step commits.
type WhatsAppVerifier interface {
	VerifyChannel(ctx context.Context, phoneNumber, accessToken string) error
}

// decodeStepData maps loose step data onto a step's named contract type.
func decodeStepData(data StepData, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode step data: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode step data: %w", err)
	}
	return nil
}

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

func requireFields(kind StepKind, fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("step %s: field %q is required", kind, name)
		}
	}
	return nil
}

// =====================================================
// Step data contracts
// =====================================================

// RestaurantDetailsData is the contract for the restaurant_details step
type RestaurantDetailsData struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// RestaurantSettingsData is the contract for the restaurant_settings step
type RestaurantSettingsData struct {
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	Language string `json:"language"`
}

// BusinessOperationsData is the contract for the business_operations step
type BusinessOperationsData struct {
	OpeningHours map[string]string `json:"opening_hours"`
	ServiceTypes []string          `json:"service_types"`
}

// VenueDetailsData is the contract for the venue_details step
type VenueDetailsData struct {
	VenueName string `json:"venue_name"`
	Address   string `json:"venue_address"`
	Floor     string `json:"floor,omitempty"`
}

// VenueConfigurationData is the contract for the venue_configuration step
type VenueConfigurationData struct {
	SeatingCapacity int      `json:"seating_capacity"`
	TableCount      int      `json:"table_count"`
	Areas           []string `json:"areas,omitempty"`
}

// KPIBenchmarksData is the contract for the kpi_benchmarks step
type KPIBenchmarksData struct {
	MonthlyRevenueTarget float64 `json:"monthly_revenue_target"`
	DailyCoversTarget    int     `json:"daily_covers_target"`
	AvgSpendTarget       float64 `json:"avg_spend_target"`
}

// VenueSelectionData is the contract for the venue_selection step
type VenueSelectionData struct {
	VenueID string `json:"venue_id"`
}

// RoleCreationData is the contract for the role_creation step
type RoleCreationData struct {
	Roles []RoleDefinition `json:"roles"`
}

// RoleDefinition is one role created during onboarding
type RoleDefinition struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// StaffInvitationData is the contract for the staff_invitation step
type StaffInvitationData struct {
	Invites []StaffInvite `json:"invites"`
}

// StaffInvite is one team member invited during onboarding
type StaffInvite struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// WhatsAppConfigurationData is the contract for the whatsapp_configuration step
type WhatsAppConfigurationData struct {
	BusinessPhone string `json:"business_phone"`
	BusinessName  string `json:"business_name"`
	AccessToken   string `json:"access_token"`
	WebhookURL    string `json:"webhook_url,omitempty"`
}

// =====================================================
// Handlers
// =====================================================

type restaurantDetailsHandler struct{}

func (restaurantDetailsHandler) Kind() StepKind { return StepRestaurantDetails }
func (restaurantDetailsHandler) Optional() bool { return false }

func (h restaurantDetailsHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	var d RestaurantDetailsData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	return requireFields(h.Kind(), map[string]string{
		"name":    d.Name,
		"address": d.Address,
		"city":    d.City,
	})
}

type restaurantSettingsHandler struct{}

func (restaurantSettingsHandler) Kind() StepKind { return StepRestaurantSettings }
func (restaurantSettingsHandler) Optional() bool { return false }

func (h restaurantSettingsHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	var d RestaurantSettingsData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	return requireFields(h.Kind(), map[string]string{
		"currency": d.Currency,
		"timezone": d.Timezone,
	})
}

type businessOperationsHandler struct{}

func (businessOperationsHandler) Kind() StepKind { return StepBusinessOperations }
func (businessOperationsHandler) Optional() bool { return false }

func (h businessOperationsHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	var d BusinessOperationsData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	if len(d.OpeningHours) == 0 {
		return fmt.Errorf("step %s: opening hours are required", h.Kind())
	}
	return nil
}

type venueDetailsHandler struct{}

func (venueDetailsHandler) Kind() StepKind { return StepVenueDetails }
func (venueDetailsHandler) Optional() bool { return false }

func (h venueDetailsHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	var d VenueDetailsData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	return requireFields(h.Kind(), map[string]string{"venue_name": d.VenueName})
}

type venueConfigurationHandler struct{}

func (venueConfigurationHandler) Kind() StepKind { return StepVenueConfiguration }
func (venueConfigurationHandler) Optional() bool { return false }

func (h venueConfigurationHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	var d VenueConfigurationData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	if d.SeatingCapacity <= 0 {
		return fmt.Errorf("step %s: seating capacity must be positive", h.Kind())
	}
	if d.TableCount <= 0 {
		return fmt.Errorf("step %s: table count must be positive", h.Kind())
	}
	return nil
}

type kpiBenchmarksHandler struct{}

func (kpiBenchmarksHandler) Kind() StepKind { return StepKPIBenchmarks }
func (kpiBenchmarksHandler) Optional() bool { return true }

func (h kpiBenchmarksHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	if data.IsEmpty() {
		return nil
	}
	var d KPIBenchmarksData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	if d.MonthlyRevenueTarget < 0 || d.AvgSpendTarget < 0 || d.DailyCoversTarget < 0 {
		return fmt.Errorf("step %s: targets cannot be negative", h.Kind())
	}
	return nil
}

type venueSelectionHandler struct{}

func (venueSelectionHandler) Kind() StepKind { return StepVenueSelection }
func (venueSelectionHandler) Optional() bool { return false }

func (h venueSelectionHandler) Validate(_ context.Context, stepCtx StepContext, data StepData) error {
	var d VenueSelectionData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	if d.VenueID != "" {
		return nil
	}
	// A venue created earlier in the flow satisfies the selection.
	if _, ok := stepCtx.String("venue_id"); ok {
		return nil
	}
	return fmt.Errorf("step %s: a venue must be selected", h.Kind())
}

type roleCreationHandler struct{}

func (roleCreationHandler) Kind() StepKind { return StepRoleCreation }
func (roleCreationHandler) Optional() bool { return false }

func (h roleCreationHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	var d RoleCreationData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	if len(d.Roles) == 0 {
		return fmt.Errorf("step %s: at least one role is required", h.Kind())
	}
	for _, role := range d.Roles {
		if strings.TrimSpace(role.Name) == "" {
			return fmt.Errorf("step %s: role name cannot be empty", h.Kind())
		}
	}
	return nil
}

type staffInvitationHandler struct{}

func (staffInvitationHandler) Kind() StepKind { return StepStaffInvitation }
func (staffInvitationHandler) Optional() bool { return true }

func (h staffInvitationHandler) Validate(_ context.Context, _ StepContext, data StepData) error {
	if data.IsEmpty() {
		return nil
	}
	var d StaffInvitationData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	for _, invite := range d.Invites {
		if !strings.Contains(invite.Email, "@") {
			return fmt.Errorf("step %s: invalid email %q", h.Kind(), invite.Email)
		}
		if strings.TrimSpace(invite.Role) == "" {
			return fmt.Errorf("step %s: invite for %s has no role", h.Kind(), invite.Email)
		}
	}
	return nil
}

type whatsappConfigurationHandler struct {
	verifier WhatsAppVerifier
}

func (whatsappConfigurationHandler) Kind() StepKind { return StepWhatsAppConfiguration }
func (whatsappConfigurationHandler) Optional() bool { return true }

func (h whatsappConfigurationHandler) Validate(ctx context.Context, _ StepContext, data StepData) error {
	if data.IsEmpty() {
		return nil
	}
	var d WhatsAppConfigurationData
	if err := decodeStepData(data, &d); err != nil {
		return err
	}
	if !phonePattern.MatchString(d.BusinessPhone) {
		return fmt.Errorf("step %s: business phone must be in E.164 format", h.Kind())
	}
	if err := requireFields(h.Kind(), map[string]string{"access_token": d.AccessToken}); err != nil {
		return err
	}
	if h.verifier != nil {
		if err := h.verifier.VerifyChannel(ctx, d.BusinessPhone, d.AccessToken); err != nil {
			return fmt.Errorf("step %s: channel verification failed: %w", h.Kind(), err)
		}
	}
	return nil
}
