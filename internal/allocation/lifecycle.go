package allocation

import (
	"time"

	"reliefcore/pkg/domain"
)

// TransitionReport applies a lifecycle action to a disaster report.
func TransitionReport(tx domain.Transaction, id string, action domain.Action) (domain.DisasterReport, error) {
	report, ok := tx.FindReport(id)
	if !ok {
		return domain.DisasterReport{}, domain.NotFound(domain.EntityReport, id)
	}
	next, err := domain.Transition(domain.EntityReport, report.ID, string(report.Status), action)
	if err != nil {
		return domain.DisasterReport{}, err
	}
	return tx.UpdateReport(report.ID, func(r *domain.DisasterReport) error {
		r.Status = domain.ReportStatus(next)
		return nil
	})
}

// TransitionUser applies an admin action to a user account.
func TransitionUser(tx domain.Transaction, id string, action domain.Action) (domain.User, error) {
	user, ok := tx.FindUser(id)
	if !ok {
		return domain.User{}, domain.NotFound(domain.EntityUser, id)
	}
	next, err := domain.Transition(domain.EntityUser, user.ID, string(user.Status), action)
	if err != nil {
		return domain.User{}, err
	}
	return tx.UpdateUser(user.ID, func(u *domain.User) error {
		u.Status = domain.UserStatus(next)
		return nil
	})
}

// TransitionModerationItem records a moderation decision.
func TransitionModerationItem(tx domain.Transaction, id string, action domain.Action) (domain.ModerationItem, error) {
	item, ok := tx.FindModerationItem(id)
	if !ok {
		return domain.ModerationItem{}, domain.NotFound(domain.EntityModerationItem, id)
	}
	next, err := domain.Transition(domain.EntityModerationItem, item.ID, string(item.Status), action)
	if err != nil {
		return domain.ModerationItem{}, err
	}
	return tx.UpdateModerationItem(item.ID, func(m *domain.ModerationItem) error {
		m.Status = domain.ModerationStatus(next)
		return nil
	})
}

// TransitionCampaign pauses, resumes, or ends a campaign.
func TransitionCampaign(tx domain.Transaction, id string, action domain.Action) (domain.Campaign, error) {
	campaign, ok := tx.FindCampaign(id)
	if !ok {
		return domain.Campaign{}, domain.NotFound(domain.EntityCampaign, id)
	}
	next, err := domain.Transition(domain.EntityCampaign, campaign.ID, string(campaign.Status), action)
	if err != nil {
		return domain.Campaign{}, err
	}
	return tx.UpdateCampaign(campaign.ID, func(c *domain.Campaign) error {
		c.Status = domain.CampaignStatus(next)
		return nil
	})
}

// TransitionVolunteer lets a volunteer step away or return. Engaging and
// releasing are reserved for assignment staffing.
func TransitionVolunteer(tx domain.Transaction, id string, action domain.Action) (domain.Volunteer, error) {
	volunteer, ok := tx.FindVolunteer(id)
	if !ok {
		return domain.Volunteer{}, domain.NotFound(domain.EntityVolunteer, id)
	}
	if action == domain.ActionEngage || action == domain.ActionRelease {
		return domain.Volunteer{}, &domain.Error{
			Kind:   domain.KindInvalidTransition,
			Entity: domain.EntityVolunteer,
			ID:     volunteer.ID,
			Status: string(volunteer.Availability),
			Action: action,
			Detail: "applied by assignment staffing only",
		}
	}
	next, err := domain.Transition(domain.EntityVolunteer, volunteer.ID, string(volunteer.Availability), action)
	if err != nil {
		return domain.Volunteer{}, err
	}
	return tx.UpdateVolunteer(volunteer.ID, func(v *domain.Volunteer) error {
		v.Availability = domain.VolunteerAvailability(next)
		return nil
	})
}

// CloseExpiredCampaigns completes every active campaign whose end date is at
// or before now.
func CloseExpiredCampaigns(tx domain.Transaction, now time.Time) ([]domain.Campaign, error) {
	var closed []domain.Campaign
	for _, c := range tx.ListCampaigns() {
		if c.Status != domain.CampaignActive || c.EndDate == nil || c.EndDate.After(now) {
			continue
		}
		updated, err := TransitionCampaign(tx, c.ID, domain.ActionReachEndDate)
		if err != nil {
			return nil, err
		}
		closed = append(closed, updated)
	}
	return closed, nil
}
