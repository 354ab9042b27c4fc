package core

import (
	"context"
	"fmt"

	"reliefcore/pkg/domain"
)

// NewAssignmentCapacityRule returns the default in-transaction rule enforcing
// assignment staffing limits.
func NewAssignmentCapacityRule() domain.Rule {
	return assignmentCapacityRule{}
}

type assignmentCapacityRule struct{}

func (assignmentCapacityRule) Name() string { return "assignment_capacity" }

func (assignmentCapacityRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, a := range view.ListAssignments() {
		seen := make(map[string]struct{}, len(a.AssignedVolunteers))
		var message string
		for _, id := range a.AssignedVolunteers {
			if _, dup := seen[id]; dup {
				message = fmt.Sprintf("assignment %s (%s) lists volunteer %s twice", a.Title, a.ID, id)
				break
			}
			seen[id] = struct{}{}
		}
		switch {
		case message != "":
		case len(a.AssignedVolunteers) != a.VolunteersAssigned:
			message = fmt.Sprintf("assignment %s (%s) roster has %d volunteers but count is %d", a.Title, a.ID, len(a.AssignedVolunteers), a.VolunteersAssigned)
		case a.VolunteersAssigned > a.VolunteersNeeded:
			message = fmt.Sprintf("assignment %s (%s) over capacity: %d/%d volunteers", a.Title, a.ID, a.VolunteersAssigned, a.VolunteersNeeded)
		default:
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "assignment_capacity",
			Severity: domain.SeverityBlock,
			Message:  message,
			Entity:   domain.EntityAssignment,
			EntityID: a.ID,
		})
	}
	return res, nil
}
