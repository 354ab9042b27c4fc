package domain

import "context"

// TransactionView provides read-only access to snapshot data for rules,
// the allocation engine, and aggregation.
type TransactionView interface {
	ListReports() []DisasterReport
	FindReport(id string) (DisasterReport, bool)
	ListHelpRequests() []HelpRequest
	FindHelpRequest(id string) (HelpRequest, bool)
	ListResources() []Resource
	FindResource(id string) (Resource, bool)
	ListCampaigns() []Campaign
	FindCampaign(id string) (Campaign, bool)
	ListDonations() []Donation
	FindDonation(id string) (Donation, bool)
	ListDonationApplications() []DonationApplication
	FindDonationApplication(donationID string) (DonationApplication, bool)
	ListVolunteers() []Volunteer
	FindVolunteer(id string) (Volunteer, bool)
	ListAssignments() []Assignment
	FindAssignment(id string) (Assignment, bool)
	ListUsers() []User
	FindUser(id string) (User, bool)
	ListModerationItems() []ModerationItem
	FindModerationItem(id string) (ModerationItem, bool)
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Reads observe the transaction's own
// uncommitted writes.
type Transaction interface {
	TransactionView
	Snapshot() TransactionView
	CreateReport(DisasterReport) (DisasterReport, error)
	UpdateReport(id string, mutator func(*DisasterReport) error) (DisasterReport, error)
	DeleteReport(id string) error
	CreateHelpRequest(HelpRequest) (HelpRequest, error)
	UpdateHelpRequest(id string, mutator func(*HelpRequest) error) (HelpRequest, error)
	DeleteHelpRequest(id string) error
	CreateResource(Resource) (Resource, error)
	UpdateResource(id string, mutator func(*Resource) error) (Resource, error)
	DeleteResource(id string) error
	CreateCampaign(Campaign) (Campaign, error)
	UpdateCampaign(id string, mutator func(*Campaign) error) (Campaign, error)
	DeleteCampaign(id string) error
	CreateDonation(Donation) (Donation, error)
	UpdateDonation(id string, mutator func(*Donation) error) (Donation, error)
	DeleteDonation(id string) error
	RecordDonationApplication(DonationApplication) (DonationApplication, error)
	CreateVolunteer(Volunteer) (Volunteer, error)
	UpdateVolunteer(id string, mutator func(*Volunteer) error) (Volunteer, error)
	DeleteVolunteer(id string) error
	CreateAssignment(Assignment) (Assignment, error)
	UpdateAssignment(id string, mutator func(*Assignment) error) (Assignment, error)
	DeleteAssignment(id string) error
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	DeleteUser(id string) error
	CreateModerationItem(ModerationItem) (ModerationItem, error)
	UpdateModerationItem(id string, mutator func(*ModerationItem) error) (ModerationItem, error)
	DeleteModerationItem(id string) error
}

// PersistentStore is a minimal abstraction over durable backends. All writes
// go through RunInTransaction, which either commits every change made by fn
// or none of them.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}
