package core

import (
	"context"

	"reliefcore/pkg/domain"
)

// CreateReport persists a new disaster report.
func (s *Service) CreateReport(ctx context.Context, report domain.DisasterReport) (domain.DisasterReport, domain.Result, error) {
	return apply(ctx, s, "create_report", func(tx domain.Transaction) (domain.DisasterReport, error) {
		return tx.CreateReport(report)
	})
}

// UpdateReport mutates a disaster report using the provided mutator.
func (s *Service) UpdateReport(ctx context.Context, id string, mutator func(*domain.DisasterReport) error) (domain.DisasterReport, domain.Result, error) {
	return apply(ctx, s, "update_report", func(tx domain.Transaction) (domain.DisasterReport, error) {
		return tx.UpdateReport(id, mutator)
	})
}

// DeleteReport removes a disaster report.
func (s *Service) DeleteReport(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_report", func(tx domain.Transaction) error {
		return tx.DeleteReport(id)
	})
}

// CreateHelpRequest persists a new help request.
func (s *Service) CreateHelpRequest(ctx context.Context, helpRequest domain.HelpRequest) (domain.HelpRequest, domain.Result, error) {
	return apply(ctx, s, "create_help_request", func(tx domain.Transaction) (domain.HelpRequest, error) {
		return tx.CreateHelpRequest(helpRequest)
	})
}

// UpdateHelpRequest mutates a help request using the provided mutator.
func (s *Service) UpdateHelpRequest(ctx context.Context, id string, mutator func(*domain.HelpRequest) error) (domain.HelpRequest, domain.Result, error) {
	return apply(ctx, s, "update_help_request", func(tx domain.Transaction) (domain.HelpRequest, error) {
		return tx.UpdateHelpRequest(id, mutator)
	})
}

// DeleteHelpRequest removes a help request.
func (s *Service) DeleteHelpRequest(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_help_request", func(tx domain.Transaction) error {
		return tx.DeleteHelpRequest(id)
	})
}

// CreateResource persists a new resource listing with availability derived
// from its quantity.
func (s *Service) CreateResource(ctx context.Context, resource domain.Resource) (domain.Resource, domain.Result, error) {
	resource.Availability = domain.DeriveAvailability(resource.Quantity, s.limitedThreshold)
	return apply(ctx, s, "create_resource", func(tx domain.Transaction) (domain.Resource, error) {
		return tx.CreateResource(resource)
	})
}

// UpdateResource mutates a resource listing. Availability is re-derived
// from the resulting quantity.
func (s *Service) UpdateResource(ctx context.Context, id string, mutator func(*domain.Resource) error) (domain.Resource, domain.Result, error) {
	return apply(ctx, s, "update_resource", func(tx domain.Transaction) (domain.Resource, error) {
		derived := func(r *domain.Resource) error {
			if err := mutator(r); err != nil {
				return err
			}
			r.Availability = domain.DeriveAvailability(r.Quantity, s.limitedThreshold)
			return nil
		}
		return tx.UpdateResource(id, derived)
	})
}

// DeleteResource removes a resource listing.
func (s *Service) DeleteResource(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_resource", func(tx domain.Transaction) error {
		return tx.DeleteResource(id)
	})
}

// CreateCampaign persists a new campaign.
func (s *Service) CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, domain.Result, error) {
	return apply(ctx, s, "create_campaign", func(tx domain.Transaction) (domain.Campaign, error) {
		return tx.CreateCampaign(campaign)
	})
}

// UpdateCampaign mutates a campaign using the provided mutator.
func (s *Service) UpdateCampaign(ctx context.Context, id string, mutator func(*domain.Campaign) error) (domain.Campaign, domain.Result, error) {
	return apply(ctx, s, "update_campaign", func(tx domain.Transaction) (domain.Campaign, error) {
		return tx.UpdateCampaign(id, mutator)
	})
}

// DeleteCampaign removes a campaign.
func (s *Service) DeleteCampaign(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_campaign", func(tx domain.Transaction) error {
		return tx.DeleteCampaign(id)
	})
}

// CreateDonation persists a donation without applying it. Use RecordDonation
// to apply completed donations in the same transaction.
func (s *Service) CreateDonation(ctx context.Context, donation domain.Donation) (domain.Donation, domain.Result, error) {
	return apply(ctx, s, "create_donation", func(tx domain.Transaction) (domain.Donation, error) {
		return tx.CreateDonation(donation)
	})
}

// UpdateDonation mutates a donation using the provided mutator.
func (s *Service) UpdateDonation(ctx context.Context, id string, mutator func(*domain.Donation) error) (domain.Donation, domain.Result, error) {
	return apply(ctx, s, "update_donation", func(tx domain.Transaction) (domain.Donation, error) {
		return tx.UpdateDonation(id, mutator)
	})
}

// DeleteDonation removes a donation.
func (s *Service) DeleteDonation(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_donation", func(tx domain.Transaction) error {
		return tx.DeleteDonation(id)
	})
}

// CreateVolunteer persists a new volunteer profile.
func (s *Service) CreateVolunteer(ctx context.Context, volunteer domain.Volunteer) (domain.Volunteer, domain.Result, error) {
	return apply(ctx, s, "create_volunteer", func(tx domain.Transaction) (domain.Volunteer, error) {
		return tx.CreateVolunteer(volunteer)
	})
}

// UpdateVolunteer mutates a volunteer profile using the provided mutator.
func (s *Service) UpdateVolunteer(ctx context.Context, id string, mutator func(*domain.Volunteer) error) (domain.Volunteer, domain.Result, error) {
	return apply(ctx, s, "update_volunteer", func(tx domain.Transaction) (domain.Volunteer, error) {
		return tx.UpdateVolunteer(id, mutator)
	})
}

// DeleteVolunteer removes a volunteer profile.
func (s *Service) DeleteVolunteer(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_volunteer", func(tx domain.Transaction) error {
		return tx.DeleteVolunteer(id)
	})
}

// CreateAssignment persists a new assignment.
func (s *Service) CreateAssignment(ctx context.Context, assignment domain.Assignment) (domain.Assignment, domain.Result, error) {
	return apply(ctx, s, "create_assignment", func(tx domain.Transaction) (domain.Assignment, error) {
		return tx.CreateAssignment(assignment)
	})
}

// UpdateAssignment mutates an assignment using the provided mutator.
func (s *Service) UpdateAssignment(ctx context.Context, id string, mutator func(*domain.Assignment) error) (domain.Assignment, domain.Result, error) {
	return apply(ctx, s, "update_assignment", func(tx domain.Transaction) (domain.Assignment, error) {
		return tx.UpdateAssignment(id, mutator)
	})
}

// DeleteAssignment removes an assignment.
func (s *Service) DeleteAssignment(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_assignment", func(tx domain.Transaction) error {
		return tx.DeleteAssignment(id)
	})
}

// CreateUser persists a new user account.
func (s *Service) CreateUser(ctx context.Context, user domain.User) (domain.User, domain.Result, error) {
	return apply(ctx, s, "create_user", func(tx domain.Transaction) (domain.User, error) {
		return tx.CreateUser(user)
	})
}

// UpdateUser mutates a user account using the provided mutator.
func (s *Service) UpdateUser(ctx context.Context, id string, mutator func(*domain.User) error) (domain.User, domain.Result, error) {
	return apply(ctx, s, "update_user", func(tx domain.Transaction) (domain.User, error) {
		return tx.UpdateUser(id, mutator)
	})
}

// DeleteUser removes a user account.
func (s *Service) DeleteUser(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_user", func(tx domain.Transaction) error {
		return tx.DeleteUser(id)
	})
}

// CreateModerationItem persists a new moderation item.
func (s *Service) CreateModerationItem(ctx context.Context, moderationItem domain.ModerationItem) (domain.ModerationItem, domain.Result, error) {
	return apply(ctx, s, "create_moderation_item", func(tx domain.Transaction) (domain.ModerationItem, error) {
		return tx.CreateModerationItem(moderationItem)
	})
}

// UpdateModerationItem mutates a moderation item using the provided mutator.
func (s *Service) UpdateModerationItem(ctx context.Context, id string, mutator func(*domain.ModerationItem) error) (domain.ModerationItem, domain.Result, error) {
	return apply(ctx, s, "update_moderation_item", func(tx domain.Transaction) (domain.ModerationItem, error) {
		return tx.UpdateModerationItem(id, mutator)
	})
}

// DeleteModerationItem removes a moderation item.
func (s *Service) DeleteModerationItem(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_moderation_item", func(tx domain.Transaction) error {
		return tx.DeleteModerationItem(id)
	})
}
