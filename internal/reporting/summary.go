// Package reporting derives read-only dashboard statistics from the entity
// store and archives them as JSON documents.
package reporting

import (
	"slices"
	"strings"
	"time"

	"reliefcore/pkg/domain"
)

// CampaignProgress is one campaign's funding position.
type CampaignProgress struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Status        domain.CampaignStatus `json:"status"`
	TargetAmount  int64                 `json:"target_amount"`
	CurrentAmount int64                 `json:"current_amount"`
	DonorCount    int                   `json:"donor_count"`
	FundedPercent float64               `json:"funded_percent"`
}

// SystemStats is the admin panel headline block.
type SystemStats struct {
	TotalUsers       int   `json:"total_users"`
	ActiveReports    int   `json:"active_reports"`
	TotalDonations   int64 `json:"total_donations"`
	ActiveVolunteers int   `json:"active_volunteers"`
}

// Summary is a point-in-time aggregate of the store.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`

	// StatusCounts holds per-entity counts keyed by status value.
	StatusCounts map[domain.EntityType]map[string]int `json:"status_counts"`

	ReportsBySeverity       map[domain.ReportSeverity]int `json:"reports_by_severity"`
	ResourcesByAvailability map[domain.Availability]int   `json:"resources_by_availability"`
	ResourcesByType         map[domain.ReliefType]int     `json:"resources_by_type"`

	PeopleHelped       int   `json:"people_helped"`
	TotalDonated       int64 `json:"total_donated"`
	UniqueDonors       int   `json:"unique_donors"`
	DonationsThisMonth int64 `json:"donations_this_month"`

	ActiveCampaigns int                `json:"active_campaigns"`
	Campaigns       []CampaignProgress `json:"campaigns"`

	AverageVolunteerRating float64 `json:"average_volunteer_rating"`
	AvailableVolunteers    int     `json:"available_volunteers"`
	ActiveAssignments      int     `json:"active_assignments"`
	OpenVolunteerSlots     int     `json:"open_volunteer_slots"`

	PendingUsers      int `json:"pending_users"`
	PendingModeration int `json:"pending_moderation"`
	FlaggedContent    int `json:"flagged_content"`

	System SystemStats `json:"system"`
}

// Summarize computes a Summary from view. It never mutates the store and
// tolerates empty collections.
func Summarize(view domain.TransactionView, now time.Time) Summary {
	now = now.UTC()
	s := Summary{
		GeneratedAt:             now,
		StatusCounts:            make(map[domain.EntityType]map[string]int),
		ReportsBySeverity:       make(map[domain.ReportSeverity]int),
		ResourcesByAvailability: make(map[domain.Availability]int),
		ResourcesByType:         make(map[domain.ReliefType]int),
		Campaigns:               []CampaignProgress{},
	}
	count := func(entity domain.EntityType, status string) {
		if s.StatusCounts[entity] == nil {
			s.StatusCounts[entity] = make(map[string]int)
		}
		s.StatusCounts[entity][status]++
	}

	for _, r := range view.ListReports() {
		count(domain.EntityReport, string(r.Status))
		s.ReportsBySeverity[r.Severity]++
		if r.Status != domain.ReportStatusResolved {
			s.System.ActiveReports++
		}
	}

	for _, r := range view.ListHelpRequests() {
		count(domain.EntityHelpRequest, string(r.Status))
		if r.Status == domain.HelpRequestFulfilled {
			s.PeopleHelped += r.PeopleAffected
		}
	}

	for _, r := range view.ListResources() {
		count(domain.EntityResource, string(r.Availability))
		s.ResourcesByAvailability[r.Availability]++
		s.ResourcesByType[r.Type]++
	}

	for _, c := range view.ListCampaigns() {
		count(domain.EntityCampaign, string(c.Status))
		if c.Status == domain.CampaignActive {
			s.ActiveCampaigns++
		}
		s.Campaigns = append(s.Campaigns, CampaignProgress{
			ID:            c.ID,
			Title:         c.Title,
			Status:        c.Status,
			TargetAmount:  c.TargetAmount,
			CurrentAmount: c.CurrentAmount,
			DonorCount:    c.DonorCount,
			FundedPercent: c.FundedPercent(),
		})
	}
	slices.SortFunc(s.Campaigns, func(a, b CampaignProgress) int { return strings.Compare(a.ID, b.ID) })

	donors := make(map[string]struct{})
	for _, d := range view.ListDonations() {
		count(domain.EntityDonation, string(d.Status))
		if d.Status != domain.DonationCompleted {
			continue
		}
		donors[d.DonorEmail] = struct{}{}
		if d.Type != domain.DonationMonetary {
			continue
		}
		s.TotalDonated += d.Amount
		if sameMonth(d.CreatedAt, now) {
			s.DonationsThisMonth += d.Amount
		}
	}
	s.UniqueDonors = len(donors)
	s.System.TotalDonations = s.TotalDonated

	volunteers := view.ListVolunteers()
	var ratingSum float64
	for _, v := range volunteers {
		count(domain.EntityVolunteer, string(v.Availability))
		ratingSum += v.Rating
		switch v.Availability {
		case domain.VolunteerAvailable:
			s.AvailableVolunteers++
			s.System.ActiveVolunteers++
		case domain.VolunteerBusy:
			s.System.ActiveVolunteers++
		}
	}
	if len(volunteers) > 0 {
		s.AverageVolunteerRating = ratingSum / float64(len(volunteers))
	}

	for _, a := range view.ListAssignments() {
		count(domain.EntityAssignment, string(a.Status))
		switch a.Status {
		case domain.AssignmentOpen:
			s.ActiveAssignments++
			s.OpenVolunteerSlots += a.OpenSlots()
		case domain.AssignmentInProgress:
			s.ActiveAssignments++
		}
	}

	users := view.ListUsers()
	s.System.TotalUsers = len(users)
	for _, u := range users {
		count(domain.EntityUser, string(u.Status))
		if u.Status == domain.UserPending {
			s.PendingUsers++
		}
	}

	for _, m := range view.ListModerationItems() {
		count(domain.EntityModerationItem, string(m.Status))
		if m.Status == domain.ModerationPending {
			s.PendingModeration++
		}
		if m.FlagCount > 0 {
			s.FlaggedContent++
		}
	}
	return s
}

func sameMonth(t, now time.Time) bool {
	t = t.UTC()
	return t.Year() == now.Year() && t.Month() == now.Month()
}
