package domain

import "slices"

// Action is a named lifecycle event applied to a record's status.
type Action string

// Lifecycle actions understood by the status machines.
const (
	ActionVerify        Action = "verify"
	ActionBeginResponse Action = "begin_response"
	ActionResolve       Action = "resolve"

	ActionAccept  Action = "accept"
	ActionFulfill Action = "fulfill"
	ActionClose   Action = "close"

	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionSuspend    Action = "suspend"
	ActionReactivate Action = "reactivate"

	// ActionFillThreshold is applied by the allocation engine only.
	ActionFillThreshold Action = "fill_threshold"
	ActionComplete      Action = "complete"
	ActionCancel        Action = "cancel"

	ActionReachEndDate Action = "reach_end_date"
	ActionPause        Action = "pause"
	ActionResume       Action = "resume"

	ActionFail Action = "fail"

	// ActionEngage is applied by the allocation engine only.
	ActionEngage   Action = "engage"
	ActionRelease  Action = "release"
	ActionWithdraw Action = "withdraw"
	ActionReturn   Action = "return"
)

// Machine is the transition table for one entity's status field.
type Machine struct {
	Entity EntityType
	Label  string
	States []string
	Edges  map[string]map[Action]string
	// Derived machines have no actions; the status follows other fields and
	// may move between any two valid states.
	Derived bool
}

// Valid reports whether state belongs to the closed status set.
func (m Machine) Valid(state string) bool {
	return slices.Contains(m.States, state)
}

// Terminal reports whether no transition leaves state.
func (m Machine) Terminal(state string) bool {
	return !m.Derived && m.Valid(state) && len(m.Edges[state]) == 0
}

// Allows reports whether some action moves from one state to the other.
func (m Machine) Allows(from, to string) bool {
	if from == to {
		return true
	}
	if m.Derived {
		return m.Valid(from) && m.Valid(to)
	}
	for _, next := range m.Edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Apply returns the status reached by applying action to a record in state from.
func (m Machine) Apply(id, from string, action Action) (string, error) {
	if m.Terminal(from) {
		return "", &Error{Kind: KindTerminalState, Entity: m.Entity, ID: id, Status: from, Action: action}
	}
	next, ok := m.Edges[from][action]
	if !ok {
		return "", &Error{Kind: KindInvalidTransition, Entity: m.Entity, ID: id, Status: from, Action: action}
	}
	return next, nil
}

var machines = map[EntityType]Machine{
	EntityReport: {
		Entity: EntityReport,
		Label:  "disaster report",
		States: []string{string(ReportStatusPending), string(ReportStatusVerified), string(ReportStatusResponding), string(ReportStatusResolved)},
		Edges: map[string]map[Action]string{
			string(ReportStatusPending):    {ActionVerify: string(ReportStatusVerified)},
			string(ReportStatusVerified):   {ActionBeginResponse: string(ReportStatusResponding)},
			string(ReportStatusResponding): {ActionResolve: string(ReportStatusResolved)},
		},
	},
	EntityHelpRequest: {
		Entity: EntityHelpRequest,
		Label:  "help request",
		States: []string{string(HelpRequestOpen), string(HelpRequestInProgress), string(HelpRequestFulfilled), string(HelpRequestClosed)},
		Edges: map[string]map[Action]string{
			string(HelpRequestOpen): {
				ActionAccept: string(HelpRequestInProgress),
				ActionClose:  string(HelpRequestClosed),
			},
			string(HelpRequestInProgress): {
				ActionFulfill: string(HelpRequestFulfilled),
				ActionClose:   string(HelpRequestClosed),
			},
		},
	},
	EntityUser: {
		Entity: EntityUser,
		Label:  "user",
		States: []string{string(UserPending), string(UserActive), string(UserSuspended)},
		Edges: map[string]map[Action]string{
			string(UserPending): {
				ActionApprove: string(UserActive),
				ActionReject:  string(UserSuspended),
			},
			string(UserActive):    {ActionSuspend: string(UserSuspended)},
			string(UserSuspended): {ActionReactivate: string(UserActive)},
		},
	},
	EntityModerationItem: {
		Entity: EntityModerationItem,
		Label:  "moderation item",
		States: []string{string(ModerationPending), string(ModerationApproved), string(ModerationRejected)},
		Edges: map[string]map[Action]string{
			string(ModerationPending): {
				ActionApprove: string(ModerationApproved),
				ActionReject:  string(ModerationRejected),
			},
		},
	},
	EntityAssignment: {
		Entity: EntityAssignment,
		Label:  "assignment",
		States: []string{string(AssignmentOpen), string(AssignmentInProgress), string(AssignmentCompleted), string(AssignmentCancelled)},
		Edges: map[string]map[Action]string{
			string(AssignmentOpen): {
				ActionFillThreshold: string(AssignmentInProgress),
				ActionCancel:        string(AssignmentCancelled),
			},
			string(AssignmentInProgress): {
				ActionComplete: string(AssignmentCompleted),
				ActionCancel:   string(AssignmentCancelled),
			},
		},
	},
	EntityCampaign: {
		Entity: EntityCampaign,
		Label:  "campaign",
		States: []string{string(CampaignActive), string(CampaignPaused), string(CampaignCompleted)},
		Edges: map[string]map[Action]string{
			string(CampaignActive): {
				ActionReachEndDate: string(CampaignCompleted),
				ActionPause:        string(CampaignPaused),
			},
			string(CampaignPaused): {ActionResume: string(CampaignActive)},
		},
	},
	EntityDonation: {
		Entity: EntityDonation,
		Label:  "donation",
		States: []string{string(DonationPending), string(DonationCompleted), string(DonationFailed)},
		Edges: map[string]map[Action]string{
			string(DonationPending): {
				ActionComplete: string(DonationCompleted),
				ActionFail:     string(DonationFailed),
			},
		},
	},
	EntityVolunteer: {
		Entity: EntityVolunteer,
		Label:  "volunteer",
		States: []string{string(VolunteerAvailable), string(VolunteerBusy), string(VolunteerUnavailable)},
		Edges: map[string]map[Action]string{
			string(VolunteerAvailable): {
				ActionEngage:   string(VolunteerBusy),
				ActionWithdraw: string(VolunteerUnavailable),
			},
			string(VolunteerBusy):        {ActionRelease: string(VolunteerAvailable)},
			string(VolunteerUnavailable): {ActionReturn: string(VolunteerAvailable)},
		},
	},
	EntityResource: {
		Entity:  EntityResource,
		Label:   "resource",
		States:  []string{string(AvailabilityAvailable), string(AvailabilityLimited), string(AvailabilityUnavailable)},
		Derived: true,
	},
}

// MachineFor returns the status machine for an entity type.
func MachineFor(entity EntityType) (Machine, bool) {
	m, ok := machines[entity]
	return m, ok
}

// Transition applies action to a record of the given entity type and returns
// the resulting status. Unknown entities yield InvalidTransition.
func Transition(entity EntityType, id, from string, action Action) (string, error) {
	m, ok := machines[entity]
	if !ok {
		return "", &Error{Kind: KindInvalidTransition, Entity: entity, ID: id, Status: from, Action: action, Detail: "entity has no lifecycle"}
	}
	return m.Apply(id, from, action)
}

// StatusOf extracts the lifecycle field of a record, if it has one.
func StatusOf(record any) (id string, status string, ok bool) {
	switch r := record.(type) {
	case DisasterReport:
		return r.ID, string(r.Status), true
	case HelpRequest:
		return r.ID, string(r.Status), true
	case Resource:
		return r.ID, string(r.Availability), true
	case Campaign:
		return r.ID, string(r.Status), true
	case Donation:
		return r.ID, string(r.Status), true
	case Volunteer:
		return r.ID, string(r.Availability), true
	case Assignment:
		return r.ID, string(r.Status), true
	case User:
		return r.ID, string(r.Status), true
	case ModerationItem:
		return r.ID, string(r.Status), true
	default:
		return "", "", false
	}
}
