package allocation

import (
	"cmp"
	"slices"

	"reliefcore/pkg/domain"
)

// Staffing is the pair of records touched by a volunteer allocation.
type Staffing struct {
	Assignment domain.Assignment
	Volunteer  domain.Volunteer
}

// AssignVolunteer staffs an available volunteer on an open assignment. The
// assignment moves to in-progress once the last open slot is taken.
func AssignVolunteer(tx domain.Transaction, assignmentID, volunteerID string) (Staffing, error) {
	assignment, ok := tx.FindAssignment(assignmentID)
	if !ok {
		return Staffing{}, domain.NotFound(domain.EntityAssignment, assignmentID)
	}
	volunteer, ok := tx.FindVolunteer(volunteerID)
	if !ok {
		return Staffing{}, domain.NotFound(domain.EntityVolunteer, volunteerID)
	}
	if assignment.Status != domain.AssignmentOpen {
		return Staffing{}, statusError(domain.KindAssignmentClosed, domain.EntityAssignment, assignment.ID, string(assignment.Status), "")
	}
	if assignment.HasVolunteer(volunteer.ID) {
		return Staffing{}, &domain.Error{Kind: domain.KindAlreadyAssigned, Entity: domain.EntityAssignment, ID: assignment.ID, Detail: "volunteer " + volunteer.ID}
	}
	if assignment.VolunteersAssigned >= assignment.VolunteersNeeded {
		return Staffing{}, &domain.Error{Kind: domain.KindCapacityExceeded, Entity: domain.EntityAssignment, ID: assignment.ID, Status: string(assignment.Status)}
	}
	if volunteer.Availability != domain.VolunteerAvailable {
		return Staffing{}, &domain.Error{Kind: domain.KindNotAvailable, Entity: domain.EntityVolunteer, ID: volunteer.ID, Status: string(volunteer.Availability)}
	}

	busy, err := domain.Transition(domain.EntityVolunteer, volunteer.ID, string(volunteer.Availability), domain.ActionEngage)
	if err != nil {
		return Staffing{}, err
	}
	updatedVolunteer, err := tx.UpdateVolunteer(volunteer.ID, func(v *domain.Volunteer) error {
		v.Availability = domain.VolunteerAvailability(busy)
		id := assignment.ID
		v.CurrentAssignmentID = &id
		return nil
	})
	if err != nil {
		return Staffing{}, err
	}

	updatedAssignment, err := tx.UpdateAssignment(assignment.ID, func(a *domain.Assignment) error {
		a.AssignedVolunteers = append(a.AssignedVolunteers, volunteer.ID)
		a.VolunteersAssigned++
		if a.VolunteersAssigned < a.VolunteersNeeded {
			return nil
		}
		next, err := domain.Transition(domain.EntityAssignment, a.ID, string(a.Status), domain.ActionFillThreshold)
		if err != nil {
			return err
		}
		a.Status = domain.AssignmentStatus(next)
		return nil
	})
	if err != nil {
		return Staffing{}, err
	}
	return Staffing{Assignment: updatedAssignment, Volunteer: updatedVolunteer}, nil
}

// CompleteAssignment closes an in-progress assignment, releasing its
// volunteers and crediting each with a completed assignment.
func CompleteAssignment(tx domain.Transaction, assignmentID string) (domain.Assignment, []domain.Volunteer, error) {
	return finishAssignment(tx, assignmentID, domain.ActionComplete, true)
}

// CancelAssignment cancels an open or in-progress assignment and releases
// its volunteers without crediting them.
func CancelAssignment(tx domain.Transaction, assignmentID string) (domain.Assignment, []domain.Volunteer, error) {
	return finishAssignment(tx, assignmentID, domain.ActionCancel, false)
}

func finishAssignment(tx domain.Transaction, assignmentID string, action domain.Action, credit bool) (domain.Assignment, []domain.Volunteer, error) {
	assignment, ok := tx.FindAssignment(assignmentID)
	if !ok {
		return domain.Assignment{}, nil, domain.NotFound(domain.EntityAssignment, assignmentID)
	}
	next, err := domain.Transition(domain.EntityAssignment, assignment.ID, string(assignment.Status), action)
	if err != nil {
		return domain.Assignment{}, nil, err
	}
	updated, err := tx.UpdateAssignment(assignment.ID, func(a *domain.Assignment) error {
		a.Status = domain.AssignmentStatus(next)
		return nil
	})
	if err != nil {
		return domain.Assignment{}, nil, err
	}

	released := make([]domain.Volunteer, 0, len(assignment.AssignedVolunteers))
	for _, volunteerID := range assignment.AssignedVolunteers {
		v, ok := tx.FindVolunteer(volunteerID)
		if !ok || v.CurrentAssignmentID == nil || *v.CurrentAssignmentID != assignment.ID {
			continue
		}
		available := string(v.Availability)
		if v.Availability == domain.VolunteerBusy {
			available, err = domain.Transition(domain.EntityVolunteer, v.ID, string(v.Availability), domain.ActionRelease)
			if err != nil {
				return domain.Assignment{}, nil, err
			}
		}
		v, err = tx.UpdateVolunteer(v.ID, func(vol *domain.Volunteer) error {
			vol.Availability = domain.VolunteerAvailability(available)
			vol.CurrentAssignmentID = nil
			if credit {
				vol.AssignmentsCompleted++
			}
			return nil
		})
		if err != nil {
			return domain.Assignment{}, nil, err
		}
		released = append(released, v)
	}
	return updated, released, nil
}

// EligibleVolunteers lists available volunteers who could still be staffed on
// the assignment, best skill match first and then by rating.
func EligibleVolunteers(view domain.TransactionView, assignmentID string) ([]domain.Volunteer, error) {
	assignment, ok := view.FindAssignment(assignmentID)
	if !ok {
		return nil, domain.NotFound(domain.EntityAssignment, assignmentID)
	}
	if assignment.Status != domain.AssignmentOpen {
		return nil, nil
	}
	type candidate struct {
		volunteer domain.Volunteer
		matched   int
	}
	var candidates []candidate
	for _, v := range view.ListVolunteers() {
		if v.Availability != domain.VolunteerAvailable || assignment.HasVolunteer(v.ID) {
			continue
		}
		candidates = append(candidates, candidate{volunteer: v, matched: matchedSkills(assignment.SkillsRequired, v.Skills)})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(b.matched, a.matched); c != 0 {
			return c
		}
		return cmp.Compare(b.volunteer.Rating, a.volunteer.Rating)
	})
	out := make([]domain.Volunteer, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.volunteer)
	}
	return out, nil
}

func matchedSkills(required, skills []string) int {
	n := 0
	for _, skill := range required {
		if slices.Contains(skills, skill) {
			n++
		}
	}
	return n
}
