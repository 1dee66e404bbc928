package onboarding

// StepTemplate describes one step of a flow before a session instantiates it
type StepTemplate struct {
	Kind             StepKind
	Title            string
	Description      string
	IsRequired       bool
	EstimatedMinutes int
}

var stepTemplates = map[StepKind]StepTemplate{
	StepRestaurantDetails: {
		Kind:             StepRestaurantDetails,
		Title:            "Restaurant details",
		Description:      "Name, address and contact information for the restaurant",
		IsRequired:       true,
		EstimatedMinutes: 5,
	},
	StepRestaurantSettings: {
		Kind:             StepRestaurantSettings,
		Title:            "Restaurant settings",
		Description:      "Currency, timezone and default language",
		IsRequired:       true,
		EstimatedMinutes: 3,
	},
	StepBusinessOperations: {
		Kind:             StepBusinessOperations,
		Title:            "Business operations",
		Description:      "Opening hours and service types",
		IsRequired:       true,
		EstimatedMinutes: 5,
	},
	StepVenueDetails: {
		Kind:             StepVenueDetails,
		Title:            "Venue details",
		Description:      "Name and location of the first venue",
		IsRequired:       true,
		EstimatedMinutes: 4,
	},
	StepVenueConfiguration: {
		Kind:             StepVenueConfiguration,
		Title:            "Venue configuration",
		Description:      "Seating capacity, floor areas and table layout",
		IsRequired:       true,
		EstimatedMinutes: 6,
	},
	StepKPIBenchmarks: {
		Kind:             StepKPIBenchmarks,
		Title:            "KPI benchmarks",
		Description:      "Revenue and covers targets used on the dashboard",
		IsRequired:       false,
		EstimatedMinutes: 4,
	},
	StepVenueSelection: {
		Kind:             StepVenueSelection,
		Title:            "Venue selection",
		Description:      "Choose which venue the team setup applies to",
		IsRequired:       true,
		EstimatedMinutes: 1,
	},
	StepRoleCreation: {
		Kind:             StepRoleCreation,
		Title:            "Role creation",
		Description:      "Define the roles staff members can hold",
		IsRequired:       true,
		EstimatedMinutes: 4,
	},
	StepStaffInvitation: {
		Kind:             StepStaffInvitation,
		Title:            "Staff invitation",
		Description:      "Invite team members by email",
		IsRequired:       false,
		EstimatedMinutes: 3,
	},
	StepWhatsAppConfiguration: {
		Kind:             StepWhatsAppConfiguration,
		Title:            "WhatsApp configuration",
		Description:      "Connect the WhatsApp Business channel for guest messaging",
		IsRequired:       false,
		EstimatedMinutes: 5,
	},
}

// flowSteps maps each session type to its ordered step kinds
var flowSteps = map[SessionType][]StepKind{
	SessionTypeRestaurantSetup: {
		StepRestaurantDetails,
		StepRestaurantSettings,
		StepBusinessOperations,
	},
	SessionTypeVenueSetup: {
		StepVenueDetails,
		StepVenueConfiguration,
		StepKPIBenchmarks,
	},
	SessionTypeStaffSetup: {
		StepVenueSelection,
		StepRoleCreation,
		StepStaffInvitation,
	},
	SessionTypeFullSetup: {
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
	},
}

// BuildSteps instantiates the step records for a session type. The first
// step starts as current, the rest pending.
func BuildSteps(t SessionType) (StepList, error) {
	kinds, ok := flowSteps[t]
	if !ok {
		return nil, ErrUnknownSessionType
	}

	steps := make(StepList, 0, len(kinds))
	for i, kind := range kinds {
		tpl := stepTemplates[kind]
		status := StepStatusPending
		if i == 0 {
			status = StepStatusCurrent
		}
		steps = append(steps, StepRecord{
			ID:               tpl.Kind,
			Title:            tpl.Title,
			Description:      tpl.Description,
			Order:            i + 1,
			Status:           status,
			IsRequired:       tpl.IsRequired,
			EstimatedMinutes: tpl.EstimatedMinutes,
		})
	}
	return steps, nil
}

// Section groups related step kinds for the completion overview
type Section struct {
	Name  string
	Steps []StepKind
}

// progressSections is the display grouping used by the completion view
var progressSections = []Section{
	{Name: "Restaurant profile", Steps: []StepKind{StepRestaurantDetails, StepRestaurantSettings, StepBusinessOperations}},
	{Name: "Venue setup", Steps: []StepKind{StepVenueDetails, StepVenueConfiguration, StepKPIBenchmarks}},
	{Name: "Team", Steps: []StepKind{StepVenueSelection, StepRoleCreation, StepStaffInvitation}},
	{Name: "Guest messaging", Steps: []StepKind{StepWhatsAppConfiguration}},
}
