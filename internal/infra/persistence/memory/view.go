package memory

import "reliefcore/pkg/domain"

// transactionView exposes a read-only snapshot of the transactional state to
// rules, the allocation engine, and aggregation. Every read returns a copy.
type transactionView struct {
	state *memoryState
}

func (v transactionView) ListReports() []domain.DisasterReport { return listRows(v.state.reports) }

func (v transactionView) FindReport(id string) (domain.DisasterReport, bool) {
	return findRow(v.state.reports, id)
}

func (v transactionView) ListHelpRequests() []domain.HelpRequest { return listRows(v.state.requests) }

func (v transactionView) FindHelpRequest(id string) (domain.HelpRequest, bool) {
	return findRow(v.state.requests, id)
}

func (v transactionView) ListResources() []domain.Resource { return listRows(v.state.resources) }

func (v transactionView) FindResource(id string) (domain.Resource, bool) {
	return findRow(v.state.resources, id)
}

func (v transactionView) ListCampaigns() []domain.Campaign { return listRows(v.state.campaigns) }

func (v transactionView) FindCampaign(id string) (domain.Campaign, bool) {
	return findRow(v.state.campaigns, id)
}

func (v transactionView) ListDonations() []domain.Donation { return listRows(v.state.donations) }

func (v transactionView) FindDonation(id string) (domain.Donation, bool) {
	return findRow(v.state.donations, id)
}

func (v transactionView) ListDonationApplications() []domain.DonationApplication {
	return listRows(v.state.applications)
}

func (v transactionView) FindDonationApplication(donationID string) (domain.DonationApplication, bool) {
	return findRow(v.state.applications, donationID)
}

func (v transactionView) ListVolunteers() []domain.Volunteer { return listRows(v.state.volunteers) }

func (v transactionView) FindVolunteer(id string) (domain.Volunteer, bool) {
	return findRow(v.state.volunteers, id)
}

func (v transactionView) ListAssignments() []domain.Assignment { return listRows(v.state.assignments) }

func (v transactionView) FindAssignment(id string) (domain.Assignment, bool) {
	return findRow(v.state.assignments, id)
}

func (v transactionView) ListUsers() []domain.User { return listRows(v.state.users) }

func (v transactionView) FindUser(id string) (domain.User, bool) {
	return findRow(v.state.users, id)
}

func (v transactionView) ListModerationItems() []domain.ModerationItem {
	return listRows(v.state.moderation)
}

func (v transactionView) FindModerationItem(id string) (domain.ModerationItem, bool) {
	return findRow(v.state.moderation, id)
}
