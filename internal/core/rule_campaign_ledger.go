package core

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"reliefcore/pkg/domain"
)

// NewCampaignLedgerRule returns the rule that keeps campaign totals equal to
// the applied monetary donations recorded against them.
func NewCampaignLedgerRule() domain.Rule {
	return campaignLedgerRule{}
}

type campaignLedgerRule struct{}

func (campaignLedgerRule) Name() string { return "campaign_ledger" }

func (campaignLedgerRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	touched := make(map[string]struct{})
	for _, change := range changes {
		switch change.Entity {
		case domain.EntityCampaign:
			if c, ok := change.After.(domain.Campaign); ok {
				touched[c.ID] = struct{}{}
			}
		case domain.EntityDonationApplication:
			if a, ok := change.After.(domain.DonationApplication); ok && a.CampaignID != "" {
				touched[a.CampaignID] = struct{}{}
			}
		}
	}
	if len(touched) == 0 {
		return domain.Result{}, nil
	}

	type ledger struct {
		amount int64
		donors int
	}
	totals := make(map[string]ledger, len(touched))
	for _, a := range view.ListDonationApplications() {
		if a.Type != domain.DonationMonetary {
			continue
		}
		if _, ok := touched[a.CampaignID]; !ok {
			continue
		}
		l := totals[a.CampaignID]
		l.amount += a.Amount
		l.donors++
		totals[a.CampaignID] = l
	}

	res := domain.Result{}
	for _, id := range slices.Sorted(maps.Keys(touched)) {
		c, ok := view.FindCampaign(id)
		if !ok {
			continue
		}
		l := totals[id]
		if c.CurrentAmount == l.amount && c.DonorCount == l.donors {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "campaign_ledger",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("campaign %s (%s) totals %d from %d donors do not match ledger %d from %d donors", c.Title, c.ID, c.CurrentAmount, c.DonorCount, l.amount, l.donors),
			Entity:   domain.EntityCampaign,
			EntityID: c.ID,
		})
	}
	return res, nil
}
