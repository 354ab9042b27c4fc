package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefcore/internal/infra/persistence/memory"
	"reliefcore/pkg/domain"
)

func evaluate(t *testing.T, rule domain.Rule, snap memory.Snapshot, changes ...domain.Change) domain.Result {
	t.Helper()
	store := memory.NewStore(nil)
	store.ImportState(snap)
	var res domain.Result
	require.NoError(t, store.View(context.Background(), func(v domain.TransactionView) error {
		var err error
		res, err = rule.Evaluate(context.Background(), v, changes)
		return err
	}))
	return res
}

func TestDefaultRulesEngineRegistersPolicySet(t *testing.T) {
	assert.Equal(t, []string{"lifecycle_transition", "assignment_capacity", "allocation_preconditions", "campaign_ledger"}, NewDefaultRulesEngine().Rules())
	assert.Empty(t, NewRulesEngine().Rules())
}

func TestLifecycleTransitionRule(t *testing.T) {
	rule := LifecycleTransitionRule()
	assert.Equal(t, "lifecycle_transition", rule.Name())

	report := func(status domain.ReportStatus) domain.DisasterReport {
		return domain.DisasterReport{Base: domain.Base{ID: "R1"}, Type: "flood", Location: "Riverside", Severity: domain.ReportSeverityLow, Status: status}
	}
	cases := []struct {
		name    string
		change  domain.Change
		message string
	}{
		{
			name:    "invalid state",
			change:  domain.Change{Entity: domain.EntityReport, After: report("lost")},
			message: "disaster report R1 is set to invalid state lost",
		},
		{
			name:    "terminal exit",
			change:  domain.Change{Entity: domain.EntityReport, Before: report(domain.ReportStatusResolved), After: report(domain.ReportStatusPending)},
			message: "cannot move disaster report R1 from terminal state resolved to pending",
		},
		{
			name:    "skipped step",
			change:  domain.Change{Entity: domain.EntityReport, Before: report(domain.ReportStatusPending), After: report(domain.ReportStatusResolved)},
			message: "no transition moves disaster report R1 from pending to resolved",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := evaluate(t, rule, memory.Snapshot{}, tc.change)
			require.Len(t, res.Violations, 1)
			v := res.Violations[0]
			assert.Equal(t, domain.SeverityBlock, v.Severity)
			assert.Equal(t, domain.EntityReport, v.Entity)
			assert.Equal(t, "R1", v.EntityID)
			assert.Equal(t, tc.message, v.Message)
		})
	}

	allowed := []domain.Change{
		{Entity: domain.EntityReport, Before: report(domain.ReportStatusPending), After: report(domain.ReportStatusVerified)},
		{Entity: domain.EntityReport, Before: report(domain.ReportStatusResolved), After: report(domain.ReportStatusResolved)},
		{Entity: domain.EntityReport, After: report(domain.ReportStatusPending)},
		{Entity: domain.EntityReport, Before: report(domain.ReportStatusPending), Kind: domain.ChangeDelete},
		{Entity: domain.EntityResource,
			Before: domain.Resource{Base: domain.Base{ID: "S1"}, Availability: domain.AvailabilityUnavailable},
			After:  domain.Resource{Base: domain.Base{ID: "S1"}, Availability: domain.AvailabilityAvailable}},
		{Entity: domain.EntityDonationApplication, After: domain.DonationApplication{DonationID: "D1"}},
	}
	assert.Empty(t, evaluate(t, rule, memory.Snapshot{}, allowed...).Violations)
}

func TestAssignmentCapacityRule(t *testing.T) {
	rule := NewAssignmentCapacityRule()
	assert.Equal(t, "assignment_capacity", rule.Name())

	snap := memory.Snapshot{Assignments: map[string]domain.Assignment{
		"A1": {Base: domain.Base{ID: "A1"}, Title: "Ok", VolunteersNeeded: 2, VolunteersAssigned: 1, AssignedVolunteers: []string{"V1"}},
		"A2": {Base: domain.Base{ID: "A2"}, Title: "Dup", VolunteersNeeded: 3, VolunteersAssigned: 2, AssignedVolunteers: []string{"V1", "V1"}},
		"A3": {Base: domain.Base{ID: "A3"}, Title: "Drift", VolunteersNeeded: 3, VolunteersAssigned: 2, AssignedVolunteers: []string{"V1"}},
		"A4": {Base: domain.Base{ID: "A4"}, Title: "Over", VolunteersNeeded: 1, VolunteersAssigned: 2, AssignedVolunteers: []string{"V1", "V2"}},
	}}
	res := evaluate(t, rule, snap)
	messages := make(map[string]string, len(res.Violations))
	for _, v := range res.Violations {
		assert.Equal(t, domain.SeverityBlock, v.Severity)
		messages[v.EntityID] = v.Message
	}
	assert.Equal(t, map[string]string{
		"A2": "assignment Dup (A2) lists volunteer V1 twice",
		"A3": "assignment Drift (A3) roster has 1 volunteers but count is 2",
		"A4": "assignment Over (A4) over capacity: 2/1 volunteers",
	}, messages)
}

func TestCampaignLedgerRule(t *testing.T) {
	rule := NewCampaignLedgerRule()
	assert.Equal(t, "campaign_ledger", rule.Name())

	snap := memory.Snapshot{
		Campaigns: map[string]domain.Campaign{
			"C1": {Base: domain.Base{ID: "C1"}, Title: "Balanced", TargetAmount: 100, CurrentAmount: 30, DonorCount: 2},
			"C2": {Base: domain.Base{ID: "C2"}, Title: "Drifted", TargetAmount: 100, CurrentAmount: 99, DonorCount: 1},
		},
		Applications: map[string]domain.DonationApplication{
			"D1": {DonationID: "D1", CampaignID: "C1", Type: domain.DonationMonetary, Amount: 10},
			"D2": {DonationID: "D2", CampaignID: "C1", Type: domain.DonationMonetary, Amount: 20},
			"D3": {DonationID: "D3", CampaignID: "C1", Type: domain.DonationResource},
			"D4": {DonationID: "D4", CampaignID: "C2", Type: domain.DonationMonetary, Amount: 5},
		},
	}

	assert.Empty(t, evaluate(t, rule, snap).Violations, "untouched campaigns are not checked")

	res := evaluate(t, rule, snap,
		domain.Change{Entity: domain.EntityCampaign, After: snap.Campaigns["C1"]},
		domain.Change{Entity: domain.EntityDonationApplication, After: snap.Applications["D4"]},
	)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "C2", res.Violations[0].EntityID)
	assert.Equal(t, "campaign Drifted (C2) totals 99 from 1 donors do not match ledger 5 from 1 donors", res.Violations[0].Message)
}

func TestAllocationPreconditionsRule(t *testing.T) {
	rule := NewAllocationPreconditionsRule()
	assert.Equal(t, "allocation_preconditions", rule.Name())

	assignmentID := "A1"
	empty := ""
	snap := memory.Snapshot{Assignments: map[string]domain.Assignment{
		"A1": {Base: domain.Base{ID: "A1"}, Title: "Sandbagging", VolunteersNeeded: 1, VolunteersAssigned: 1, AssignedVolunteers: []string{"V1"}, Status: domain.AssignmentInProgress},
	}}
	cases := []struct {
		name    string
		change  domain.Change
		entity  domain.EntityType
		message string
	}{
		{
			name:    "understaffed assignment",
			change:  domain.Change{Entity: domain.EntityAssignment, Kind: domain.ChangeUpdate, After: domain.Assignment{Base: domain.Base{ID: "A2"}, Title: "Triage", VolunteersNeeded: 3, Status: domain.AssignmentInProgress}},
			entity:  domain.EntityAssignment,
			message: "assignment Triage (A2) is in-progress with 0/3 volunteers",
		},
		{
			name:    "accepted request without assignee",
			change:  domain.Change{Entity: domain.EntityHelpRequest, Kind: domain.ChangeUpdate, After: domain.HelpRequest{Base: domain.Base{ID: "H1"}, Title: "Water", Status: domain.HelpRequestInProgress}},
			entity:  domain.EntityHelpRequest,
			message: "help request Water (H1) is in-progress without an assignee",
		},
		{
			name:    "fulfilled request with blank assignee",
			change:  domain.Change{Entity: domain.EntityHelpRequest, Kind: domain.ChangeCreate, After: domain.HelpRequest{Base: domain.Base{ID: "H1"}, Title: "Water", Status: domain.HelpRequestFulfilled, AssignedTo: &empty}},
			entity:  domain.EntityHelpRequest,
			message: "help request Water (H1) is fulfilled without an assignee",
		},
		{
			name:    "busy volunteer without assignment",
			change:  domain.Change{Entity: domain.EntityVolunteer, Kind: domain.ChangeCreate, After: domain.Volunteer{Base: domain.Base{ID: "V2"}, Name: "Ben", Availability: domain.VolunteerBusy}},
			entity:  domain.EntityVolunteer,
			message: "volunteer Ben (V2) is busy without an assignment",
		},
		{
			name:    "busy volunteer off the roster",
			change:  domain.Change{Entity: domain.EntityVolunteer, Kind: domain.ChangeUpdate, After: domain.Volunteer{Base: domain.Base{ID: "V2"}, Name: "Ben", Availability: domain.VolunteerBusy, CurrentAssignmentID: &assignmentID}},
			entity:  domain.EntityVolunteer,
			message: "volunteer Ben (V2) is busy on assignment A1 that does not list them",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := evaluate(t, rule, snap, tc.change)
			require.Len(t, res.Violations, 1)
			v := res.Violations[0]
			assert.Equal(t, domain.SeverityBlock, v.Severity)
			assert.Equal(t, tc.entity, v.Entity)
			assert.Equal(t, tc.message, v.Message)
		})
	}

	assignee := "V1"
	allowed := []domain.Change{
		{Entity: domain.EntityAssignment, After: snap.Assignments["A1"]},
		{Entity: domain.EntityAssignment, After: domain.Assignment{Base: domain.Base{ID: "A3"}, VolunteersNeeded: 2, VolunteersAssigned: 1, Status: domain.AssignmentCompleted}},
		{Entity: domain.EntityHelpRequest, After: domain.HelpRequest{Base: domain.Base{ID: "H2"}, Status: domain.HelpRequestInProgress, AssignedTo: &assignee}},
		{Entity: domain.EntityHelpRequest, After: domain.HelpRequest{Base: domain.Base{ID: "H3"}, Status: domain.HelpRequestClosed}},
		{Entity: domain.EntityVolunteer, After: domain.Volunteer{Base: domain.Base{ID: "V1"}, Availability: domain.VolunteerBusy, CurrentAssignmentID: &assignmentID}},
		{Entity: domain.EntityVolunteer, After: domain.Volunteer{Base: domain.Base{ID: "V3"}, Availability: domain.VolunteerAvailable}},
		{Entity: domain.EntityVolunteer, Kind: domain.ChangeDelete, Before: domain.Volunteer{Base: domain.Base{ID: "V4"}, Availability: domain.VolunteerBusy}},
	}
	assert.Empty(t, evaluate(t, rule, snap, allowed...).Violations)
}

func TestDirectUpdatesCannotSkipAllocation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.assignment(t, 3)
	v := h.volunteer(t, "Ana")
	req, _, err := h.svc.CreateHelpRequest(ctx, domain.HelpRequest{Title: "Water", Type: domain.ReliefFood, Urgency: domain.ReportSeverityHigh, PeopleAffected: 8})
	require.NoError(t, err)
	before := h.store.ExportState()

	blocked := map[string]func() error{
		"assignment in progress": func() error {
			_, _, err := h.svc.UpdateAssignment(ctx, a.ID, func(x *domain.Assignment) error {
				x.Status = domain.AssignmentInProgress
				return nil
			})
			return err
		},
		"volunteer busy": func() error {
			_, _, err := h.svc.UpdateVolunteer(ctx, v.ID, func(x *domain.Volunteer) error {
				x.Availability = domain.VolunteerBusy
				return nil
			})
			return err
		},
		"request in progress": func() error {
			_, _, err := h.svc.UpdateHelpRequest(ctx, req.ID, func(x *domain.HelpRequest) error {
				x.Status = domain.HelpRequestInProgress
				return nil
			})
			return err
		},
		"busy volunteer created": func() error {
			_, _, err := h.svc.CreateVolunteer(ctx, domain.Volunteer{Name: "Ben", Availability: domain.VolunteerBusy, CurrentAssignmentID: &a.ID})
			return err
		},
	}
	for name, update := range blocked {
		t.Run(name, func(t *testing.T) {
			var rv domain.RuleViolationError
			require.ErrorAs(t, update(), &rv)
			assert.Equal(t, "allocation_preconditions", rv.Result.Violations[0].Rule)
		})
	}
	assert.Equal(t, before, h.store.ExportState())

	staffing, _, err := h.svc.AssignVolunteer(ctx, a.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VolunteerBusy, staffing.Volunteer.Availability)
	accepted, _, err := h.svc.AcceptHelpRequest(ctx, req.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HelpRequestInProgress, accepted.Status)
}
