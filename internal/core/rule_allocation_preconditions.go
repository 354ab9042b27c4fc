package core

import (
	"context"
	"fmt"

	"reliefcore/pkg/domain"
)

// NewAllocationPreconditionsRule returns the rule that blocks staffing states
// written without the data their allocation operation sets. An in-progress
// assignment must be fully staffed. Accepted help requests need an assignee,
// and a busy volunteer must be on the roster of its current assignment.
func NewAllocationPreconditionsRule() domain.Rule {
	return allocationPreconditionsRule{}
}

type allocationPreconditionsRule struct{}

func (allocationPreconditionsRule) Name() string { return "allocation_preconditions" }

func (allocationPreconditionsRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(entity domain.EntityType, id, message string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "allocation_preconditions",
			Severity: domain.SeverityBlock,
			Message:  message,
			Entity:   entity,
			EntityID: id,
		})
	}
	for _, change := range changes {
		switch after := change.After.(type) {
		case domain.Assignment:
			if after.Status == domain.AssignmentInProgress && after.VolunteersAssigned < after.VolunteersNeeded {
				block(domain.EntityAssignment, after.ID,
					fmt.Sprintf("assignment %s (%s) is in-progress with %d/%d volunteers", after.Title, after.ID, after.VolunteersAssigned, after.VolunteersNeeded))
			}
		case domain.HelpRequest:
			accepted := after.Status == domain.HelpRequestInProgress || after.Status == domain.HelpRequestFulfilled
			if accepted && (after.AssignedTo == nil || *after.AssignedTo == "") {
				block(domain.EntityHelpRequest, after.ID,
					fmt.Sprintf("help request %s (%s) is %s without an assignee", after.Title, after.ID, after.Status))
			}
		case domain.Volunteer:
			if after.Availability != domain.VolunteerBusy {
				continue
			}
			if after.CurrentAssignmentID == nil {
				block(domain.EntityVolunteer, after.ID,
					fmt.Sprintf("volunteer %s (%s) is busy without an assignment", after.Name, after.ID))
				continue
			}
			a, ok := view.FindAssignment(*after.CurrentAssignmentID)
			if !ok || !a.HasVolunteer(after.ID) {
				block(domain.EntityVolunteer, after.ID,
					fmt.Sprintf("volunteer %s (%s) is busy on assignment %s that does not list them", after.Name, after.ID, *after.CurrentAssignmentID))
			}
		}
	}
	return res, nil
}
