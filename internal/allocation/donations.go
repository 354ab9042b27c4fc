package allocation

import "reliefcore/pkg/domain"

// Contribution is the outcome of applying a donation. Campaign is nil for
// resource donations that do not reference a campaign.
type Contribution struct {
	Donation    domain.Donation
	Campaign    *domain.Campaign
	Application domain.DonationApplication
}

// ApplyDonation credits a completed donation exactly once. Monetary donations
// raise the campaign's total and donor count; resource donations only record
// the application. A donation that was already applied fails with
// AlreadyApplied and changes nothing.
func ApplyDonation(tx domain.Transaction, donationID string) (Contribution, error) {
	donation, ok := tx.FindDonation(donationID)
	if !ok {
		return Contribution{}, domain.NotFound(domain.EntityDonation, donationID)
	}
	if _, applied := tx.FindDonationApplication(donation.ID); applied {
		return Contribution{}, &domain.Error{Kind: domain.KindAlreadyApplied, Entity: domain.EntityDonation, ID: donation.ID}
	}
	if donation.Status != domain.DonationCompleted {
		return Contribution{}, statusError(domain.KindNotCompleted, domain.EntityDonation, donation.ID, string(donation.Status), "")
	}

	out := Contribution{Donation: donation}
	application := domain.DonationApplication{
		DonationID: donation.ID,
		CampaignID: donation.CampaignID,
		Type:       donation.Type,
	}

	switch donation.Type {
	case domain.DonationMonetary:
		campaign, err := activeCampaign(tx, donation)
		if err != nil {
			return Contribution{}, err
		}
		updated, err := tx.UpdateCampaign(campaign.ID, func(c *domain.Campaign) error {
			c.CurrentAmount += donation.Amount
			c.DonorCount++
			return nil
		})
		if err != nil {
			return Contribution{}, err
		}
		out.Campaign = &updated
		application.Amount = donation.Amount
	case domain.DonationResource:
		if donation.CampaignID != "" {
			campaign, ok := tx.FindCampaign(donation.CampaignID)
			if !ok {
				return Contribution{}, &domain.Error{Kind: domain.KindCampaignNotFound, Entity: domain.EntityCampaign, ID: donation.CampaignID}
			}
			out.Campaign = &campaign
		}
	default:
		return Contribution{}, invalid(domain.EntityDonation, donation.ID, "unknown donation type "+string(donation.Type))
	}

	recorded, err := tx.RecordDonationApplication(application)
	if err != nil {
		return Contribution{}, err
	}
	out.Application = recorded
	return out, nil
}

func activeCampaign(tx domain.Transaction, donation domain.Donation) (domain.Campaign, error) {
	if donation.CampaignID == "" {
		return domain.Campaign{}, &domain.Error{Kind: domain.KindCampaignNotFound, Entity: domain.EntityDonation, ID: donation.ID, Detail: "monetary donation has no campaign"}
	}
	campaign, ok := tx.FindCampaign(donation.CampaignID)
	if !ok {
		return domain.Campaign{}, &domain.Error{Kind: domain.KindCampaignNotFound, Entity: domain.EntityCampaign, ID: donation.CampaignID}
	}
	if campaign.Status != domain.CampaignActive {
		return domain.Campaign{}, statusError(domain.KindCampaignNotActive, domain.EntityCampaign, campaign.ID, string(campaign.Status), "")
	}
	return campaign, nil
}

// RecordDonation stores a new donation. A donation submitted as completed is
// applied in the same transaction, so a rejected application also discards
// the donation.
func RecordDonation(tx domain.Transaction, donation domain.Donation) (Contribution, error) {
	if donation.Type == domain.DonationResource {
		donation.Amount = 0
	}
	created, err := tx.CreateDonation(donation)
	if err != nil {
		return Contribution{}, err
	}
	if created.Status != domain.DonationCompleted {
		return Contribution{Donation: created}, nil
	}
	return ApplyDonation(tx, created.ID)
}

// CompleteDonation confirms a pending donation and applies it.
func CompleteDonation(tx domain.Transaction, donationID string) (Contribution, error) {
	if _, err := transitionDonation(tx, donationID, domain.ActionComplete); err != nil {
		return Contribution{}, err
	}
	return ApplyDonation(tx, donationID)
}

// FailDonation marks a pending donation as failed. Failed donations never
// reach campaign totals.
func FailDonation(tx domain.Transaction, donationID string) (domain.Donation, error) {
	return transitionDonation(tx, donationID, domain.ActionFail)
}

func transitionDonation(tx domain.Transaction, donationID string, action domain.Action) (domain.Donation, error) {
	donation, ok := tx.FindDonation(donationID)
	if !ok {
		return domain.Donation{}, domain.NotFound(domain.EntityDonation, donationID)
	}
	next, err := domain.Transition(domain.EntityDonation, donation.ID, string(donation.Status), action)
	if err != nil {
		return domain.Donation{}, err
	}
	return tx.UpdateDonation(donation.ID, func(d *domain.Donation) error {
		d.Status = domain.DonationStatus(next)
		return nil
	})
}
