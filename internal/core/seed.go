package core

import (
	"context"
	"fmt"

	"reliefcore/internal/allocation"
	"reliefcore/pkg/domain"
)

// SeedStaffing pairs a volunteer with an assignment in a seed file.
type SeedStaffing struct {
	AssignmentID string `json:"assignment_id"`
	VolunteerID  string `json:"volunteer_id"`
}

// Seed is a bulk set of records loaded in one transaction. Records may carry
// fixed IDs so that cross references resolve within the seed.
type Seed struct {
	Users           []domain.User           `json:"users"`
	Reports         []domain.DisasterReport `json:"reports"`
	HelpRequests    []domain.HelpRequest    `json:"help_requests"`
	Resources       []domain.Resource       `json:"resources"`
	Campaigns       []domain.Campaign       `json:"campaigns"`
	Donations       []domain.Donation       `json:"donations"`
	Volunteers      []domain.Volunteer      `json:"volunteers"`
	Assignments     []domain.Assignment     `json:"assignments"`
	Staffing        []SeedStaffing          `json:"staffing"`
	ModerationItems []domain.ModerationItem `json:"moderation_items"`
}

// SeedCounts reports how many records of each kind a seed created.
type SeedCounts map[domain.EntityType]int

// LoadSeed creates every record in the seed atomically. Completed donations
// are applied to their campaigns and staffing entries go through volunteer
// assignment, so the loaded state satisfies the same rules as live traffic.
func (s *Service) LoadSeed(ctx context.Context, seed Seed) (SeedCounts, domain.Result, error) {
	return apply(ctx, s, "load_seed", func(tx domain.Transaction) (SeedCounts, error) {
		counts := SeedCounts{}
		for _, u := range seed.Users {
			if _, err := tx.CreateUser(u); err != nil {
				return nil, fmt.Errorf("seed user %q: %w", u.Name, err)
			}
			counts[domain.EntityUser]++
		}
		for _, r := range seed.Reports {
			if _, err := tx.CreateReport(r); err != nil {
				return nil, fmt.Errorf("seed report %q: %w", r.Location, err)
			}
			counts[domain.EntityReport]++
		}
		for _, r := range seed.HelpRequests {
			if _, err := tx.CreateHelpRequest(r); err != nil {
				return nil, fmt.Errorf("seed help request %q: %w", r.Title, err)
			}
			counts[domain.EntityHelpRequest]++
		}
		for _, r := range seed.Resources {
			r.Availability = domain.DeriveAvailability(r.Quantity, s.limitedThreshold)
			if _, err := tx.CreateResource(r); err != nil {
				return nil, fmt.Errorf("seed resource %q: %w", r.Name, err)
			}
			counts[domain.EntityResource]++
		}
		for _, c := range seed.Campaigns {
			if _, err := tx.CreateCampaign(c); err != nil {
				return nil, fmt.Errorf("seed campaign %q: %w", c.Title, err)
			}
			counts[domain.EntityCampaign]++
		}
		for _, d := range seed.Donations {
			if _, err := allocation.RecordDonation(tx, d); err != nil {
				return nil, fmt.Errorf("seed donation %q: %w", d.ID, err)
			}
			counts[domain.EntityDonation]++
		}
		for _, v := range seed.Volunteers {
			if _, err := tx.CreateVolunteer(v); err != nil {
				return nil, fmt.Errorf("seed volunteer %q: %w", v.Name, err)
			}
			counts[domain.EntityVolunteer]++
		}
		for _, a := range seed.Assignments {
			// rosters are built from Staffing entries only
			a.AssignedVolunteers, a.VolunteersAssigned = nil, 0
			if _, err := tx.CreateAssignment(a); err != nil {
				return nil, fmt.Errorf("seed assignment %q: %w", a.Title, err)
			}
			counts[domain.EntityAssignment]++
		}
		for _, st := range seed.Staffing {
			if _, err := allocation.AssignVolunteer(tx, st.AssignmentID, st.VolunteerID); err != nil {
				return nil, fmt.Errorf("seed staffing %s/%s: %w", st.AssignmentID, st.VolunteerID, err)
			}
		}
		for _, m := range seed.ModerationItems {
			if _, err := tx.CreateModerationItem(m); err != nil {
				return nil, fmt.Errorf("seed moderation item %q: %w", m.ContentID, err)
			}
			counts[domain.EntityModerationItem]++
		}
		return counts, nil
	})
}
