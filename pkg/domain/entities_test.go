package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundedPercentClamps(t *testing.T) {
	cases := []struct {
		current, target int64
		want            float64
	}{
		{0, 1000, 0},
		{250, 1000, 25},
		{1000, 1000, 100},
		{1500, 1000, 100},
		{10, 0, 0},
	}
	for _, tc := range cases {
		c := Campaign{CurrentAmount: tc.current, TargetAmount: tc.target}
		assert.InDelta(t, tc.want, c.FundedPercent(), 0.0001, "%d/%d", tc.current, tc.target)
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	a := Assignment{AssignedVolunteers: []string{"v1"}, SkillsRequired: []string{"first aid"}, VolunteersAssigned: 1}
	c := a.Clone()
	c.AssignedVolunteers[0] = "v2"
	c.SkillsRequired = append(c.SkillsRequired, "driving")
	assert.Equal(t, "v1", a.AssignedVolunteers[0])
	assert.Len(t, a.SkillsRequired, 1)

	cur := "a1"
	v := Volunteer{Skills: []string{"cooking"}, CurrentAssignmentID: &cur}
	vc := v.Clone()
	*vc.CurrentAssignmentID = "a2"
	assert.Equal(t, "a1", *v.CurrentAssignmentID)
}

func TestAssignmentHelpers(t *testing.T) {
	a := Assignment{VolunteersNeeded: 3, VolunteersAssigned: 1, AssignedVolunteers: []string{"v1"}}
	assert.Equal(t, 2, a.OpenSlots())
	assert.True(t, a.HasVolunteer("v1"))
	assert.False(t, a.HasVolunteer("v2"))
}

func TestDefaultsFillStatus(t *testing.T) {
	r := DisasterReport{}
	r.ApplyDefaults()
	assert.Equal(t, ReportStatusPending, r.Status)

	res := Resource{Quantity: 0}
	res.ApplyDefaults()
	assert.Equal(t, AvailabilityUnavailable, res.Availability)

	u := User{}
	u.ApplyDefaults()
	assert.Equal(t, UserPending, u.Status)
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	err := Validate(EntityCampaign, "c1", Campaign{Title: "Flood", TargetAmount: 0, Status: CampaignActive})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "TargetAmount")

	err = Validate(EntityVolunteer, "v1", Volunteer{Name: "Sam", Rating: 5.5, Availability: VolunteerAvailable})
	assert.ErrorIs(t, err, ErrInvalid)

	err = Validate(EntityHelpRequest, "h1", HelpRequest{Title: "x", Type: "food", Urgency: "high", Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateAssignmentRoster(t *testing.T) {
	ok := Assignment{Title: "Sandbags", VolunteersNeeded: 2, VolunteersAssigned: 1, AssignedVolunteers: []string{"v1"}, Status: AssignmentOpen}
	require.NoError(t, Validate(EntityAssignment, "a1", ok))

	mismatch := ok
	mismatch.AssignedVolunteers = nil
	assert.ErrorIs(t, Validate(EntityAssignment, "a1", mismatch), ErrInvalid)

	over := ok
	over.VolunteersAssigned = 3
	over.AssignedVolunteers = []string{"v1", "v2", "v3"}
	assert.ErrorIs(t, Validate(EntityAssignment, "a1", over), ErrInvalid)

	dup := ok
	dup.VolunteersAssigned = 2
	dup.AssignedVolunteers = []string{"v1", "v1"}
	assert.ErrorIs(t, Validate(EntityAssignment, "a1", dup), ErrInvalid)
}

func TestErrorMatchingAndWrapping(t *testing.T) {
	terminal := &Error{Kind: KindTerminalState, Entity: EntityHelpRequest, ID: "h1", Status: "fulfilled"}
	err := fmt.Errorf("fulfill: %w", &Error{Kind: KindNotInProgress, Entity: EntityHelpRequest, ID: "h1", Cause: terminal})

	assert.ErrorIs(t, err, ErrNotInProgress)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.NotErrorIs(t, err, ErrNotOpen)
	assert.Equal(t, KindNotInProgress, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(fmt.Errorf("plain")))
	assert.Contains(t, err.Error(), `help_request "h1"`)
}

func TestRecordsRoundTripJSON(t *testing.T) {
	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	c := Campaign{Base: Base{ID: "c1"}, Title: "Rebuild", TargetAmount: 5000, EndDate: &end, Status: CampaignActive}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	var back Campaign
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c.Title, back.Title)
	require.NotNil(t, back.EndDate)
	assert.True(t, end.Equal(*back.EndDate))
}
