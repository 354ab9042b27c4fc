// Package domain defines the persistent relief records, their closed status
// sets, and the rule evaluation primitives used by reliefcore.
package domain

import (
	"slices"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityReport identifies a disaster report submitted by a citizen.
	EntityReport EntityType = "disaster_report"
	// EntityHelpRequest identifies a request for help.
	EntityHelpRequest EntityType = "help_request"
	// EntityResource identifies an NGO resource listing.
	EntityResource EntityType = "resource"
	// EntityCampaign identifies a fundraising campaign.
	EntityCampaign EntityType = "campaign"
	// EntityDonation identifies a monetary or in-kind donation.
	EntityDonation EntityType = "donation"
	// EntityDonationApplication identifies the ledger row written when a donation is applied.
	EntityDonationApplication EntityType = "donation_application"
	// EntityVolunteer identifies a volunteer profile.
	EntityVolunteer EntityType = "volunteer"
	// EntityAssignment identifies a volunteer assignment.
	EntityAssignment EntityType = "assignment"
	// EntityUser identifies a platform account.
	EntityUser EntityType = "user"
	// EntityModerationItem identifies a content item awaiting moderation.
	EntityModerationItem EntityType = "moderation_item"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// ReportSeverity grades how serious a reported disaster is.
type ReportSeverity string

// Report severities.
const (
	ReportSeverityLow      ReportSeverity = "low"
	ReportSeverityMedium   ReportSeverity = "medium"
	ReportSeverityHigh     ReportSeverity = "high"
	ReportSeverityCritical ReportSeverity = "critical"
)

// Urgency grades help requests and assignments. It shares the severity scale.
type Urgency = ReportSeverity

// ReportStatus enumerates the disaster report lifecycle.
type ReportStatus string

// Disaster report statuses.
const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusVerified   ReportStatus = "verified"
	ReportStatusResponding ReportStatus = "responding"
	ReportStatusResolved   ReportStatus = "resolved"
)

// ReliefType classifies help requests and resources.
type ReliefType string

// Relief categories shared by help requests and resource listings.
const (
	ReliefFood      ReliefType = "food"
	ReliefShelter   ReliefType = "shelter"
	ReliefMedical   ReliefType = "medical"
	ReliefClothing  ReliefType = "clothing"
	ReliefTransport ReliefType = "transport"
	ReliefOther     ReliefType = "other"
)

// HelpRequestStatus enumerates the help request lifecycle.
type HelpRequestStatus string

// Help request statuses.
const (
	HelpRequestOpen       HelpRequestStatus = "open"
	HelpRequestInProgress HelpRequestStatus = "in-progress"
	HelpRequestFulfilled  HelpRequestStatus = "fulfilled"
	HelpRequestClosed     HelpRequestStatus = "closed"
)

// Availability labels resource stock.
type Availability string

// Resource availability labels, derived from quantity.
const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityLimited     Availability = "limited"
	AvailabilityUnavailable Availability = "unavailable"
)

// CampaignCategory groups campaigns for display.
type CampaignCategory string

// Campaign categories.
const (
	CampaignEmergency      CampaignCategory = "emergency"
	CampaignRelief         CampaignCategory = "relief"
	CampaignReconstruction CampaignCategory = "reconstruction"
	CampaignMedical        CampaignCategory = "medical"
)

// CampaignStatus enumerates the campaign lifecycle.
type CampaignStatus string

// Campaign statuses.
const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignPaused    CampaignStatus = "paused"
)

// DonationType distinguishes money from goods.
type DonationType string

// Donation types.
const (
	DonationMonetary DonationType = "monetary"
	DonationResource DonationType = "resource"
)

// DonationStatus enumerates the donation payment lifecycle.
type DonationStatus string

// Donation statuses.
const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

// VolunteerAvailability tracks whether a volunteer can take an assignment.
type VolunteerAvailability string

// Volunteer availability states.
const (
	VolunteerAvailable   VolunteerAvailability = "available"
	VolunteerBusy        VolunteerAvailability = "busy"
	VolunteerUnavailable VolunteerAvailability = "unavailable"
)

// AssignmentStatus enumerates the assignment lifecycle.
type AssignmentStatus string

// Assignment statuses.
const (
	AssignmentOpen       AssignmentStatus = "open"
	AssignmentInProgress AssignmentStatus = "in-progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

// Role is the actor role of a platform account.
type Role string

// Account roles.
const (
	RoleCitizen   Role = "citizen"
	RoleNGO       Role = "ngo"
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// UserStatus enumerates account states.
type UserStatus string

// Account statuses.
const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserPending   UserStatus = "pending"
)

// ContentType names the record kind behind a moderation item.
type ContentType string

// Moderated content kinds.
const (
	ContentDisasterReport ContentType = "disaster_report"
	ContentHelpRequest    ContentType = "help_request"
	ContentResource       ContentType = "resource"
	ContentDonation       ContentType = "donation"
)

// ModerationStatus enumerates moderation outcomes.
type ModerationStatus string

// Moderation statuses.
const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta exposes the common fields to generic persistence helpers.
func (b *Base) Meta() *Base { return b }

// Coordinates is an optional geographic point attached to a report.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// DisasterReport is a citizen-submitted account of an incident.
type DisasterReport struct {
	Base
	Type        string         `json:"type" validate:"required"`
	Severity    ReportSeverity `json:"severity" validate:"oneof=low medium high critical"`
	Location    string         `json:"location" validate:"required"`
	Coordinates *Coordinates   `json:"coordinates,omitempty" validate:"omitempty"`
	Description string         `json:"description"`
	ReporterID  string         `json:"reporter_id"`
	Images      []string       `json:"images,omitempty"`
	Status      ReportStatus   `json:"status" validate:"oneof=pending verified responding resolved"`
}

// ApplyDefaults fills in the initial status.
func (r *DisasterReport) ApplyDefaults() {
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
}

// Clone returns a deep copy of the report.
func (r DisasterReport) Clone() DisasterReport {
	r.Images = slices.Clone(r.Images)
	if r.Coordinates != nil {
		c := *r.Coordinates
		r.Coordinates = &c
	}
	return r
}

// HelpRequest asks responders for a specific kind of help.
type HelpRequest struct {
	Base
	Type           ReliefType        `json:"type" validate:"oneof=food shelter medical clothing transport other"`
	Urgency        Urgency           `json:"urgency" validate:"oneof=low medium high critical"`
	Title          string            `json:"title" validate:"required"`
	Description    string            `json:"description"`
	Location       string            `json:"location"`
	ContactInfo    string            `json:"contact_info"`
	PeopleAffected int               `json:"people_affected" validate:"gte=0"`
	RequestedBy    string            `json:"requested_by"`
	Status         HelpRequestStatus `json:"status" validate:"oneof=open in-progress fulfilled closed"`
	AssignedTo     *string           `json:"assigned_to,omitempty"`
}

// ApplyDefaults fills in the initial status.
func (r *HelpRequest) ApplyDefaults() {
	if r.Status == "" {
		r.Status = HelpRequestOpen
	}
}

// Clone returns a deep copy of the request.
func (r HelpRequest) Clone() HelpRequest {
	r.AssignedTo = cloneStringPtr(r.AssignedTo)
	return r
}

// Resource is stock an NGO has listed for distribution.
type Resource struct {
	Base
	Type         ReliefType   `json:"type" validate:"oneof=food shelter medical clothing transport other"`
	Name         string       `json:"name" validate:"required"`
	Description  string       `json:"description"`
	Quantity     int          `json:"quantity" validate:"gte=0"`
	Unit         string       `json:"unit"`
	Location     string       `json:"location"`
	ContactInfo  string       `json:"contact_info"`
	NGOID        string       `json:"ngo_id"`
	Availability Availability `json:"availability" validate:"oneof=available limited unavailable"`
}

// ApplyDefaults derives the availability label when none was given.
func (r *Resource) ApplyDefaults() {
	if r.Availability == "" {
		r.Availability = DeriveAvailability(r.Quantity, DefaultLimitedThreshold)
	}
}

// Campaign is a fundraising target that monetary donations accrue to.
type Campaign struct {
	Base
	Title         string           `json:"title" validate:"required"`
	Description   string           `json:"description"`
	Category      CampaignCategory `json:"category" validate:"omitempty,oneof=emergency relief reconstruction medical"`
	TargetAmount  int64            `json:"target_amount" validate:"gt=0"`
	CurrentAmount int64            `json:"current_amount" validate:"gte=0"`
	DonorCount    int              `json:"donor_count" validate:"gte=0"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Status        CampaignStatus   `json:"status" validate:"oneof=active completed paused"`
}

// ApplyDefaults fills in the initial status.
func (c *Campaign) ApplyDefaults() {
	if c.Status == "" {
		c.Status = CampaignActive
	}
}

// Clone returns a deep copy of the campaign.
func (c Campaign) Clone() Campaign {
	if c.EndDate != nil {
		end := *c.EndDate
		c.EndDate = &end
	}
	return c
}

// FundedPercent reports progress toward the target, clamped to 100 for display.
func (c Campaign) FundedPercent() float64 {
	if c.TargetAmount <= 0 {
		return 0
	}
	pct := float64(c.CurrentAmount) / float64(c.TargetAmount) * 100
	return min(pct, 100)
}

// Donation is a monetary gift or an in-kind pledge.
type Donation struct {
	Base
	DonorName           string         `json:"donor_name"`
	DonorEmail          string         `json:"donor_email" validate:"omitempty,email"`
	Amount              int64          `json:"amount" validate:"gte=0"`
	Type                DonationType   `json:"type" validate:"oneof=monetary resource"`
	ResourceType        string         `json:"resource_type,omitempty"`
	ResourceDescription string         `json:"resource_description,omitempty"`
	CampaignID          string         `json:"campaign_id,omitempty"`
	Message             string         `json:"message,omitempty"`
	IsAnonymous         bool           `json:"is_anonymous"`
	Status              DonationStatus `json:"status" validate:"oneof=pending completed failed"`
}

// ApplyDefaults fills in the initial status.
func (d *Donation) ApplyDefaults() {
	if d.Status == "" {
		d.Status = DonationPending
	}
}

// DonationApplication records that a donation's effect was applied exactly once.
// It is keyed by the donation ID.
type DonationApplication struct {
	Base
	DonationID string       `json:"donation_id" validate:"required"`
	CampaignID string       `json:"campaign_id,omitempty"`
	Type       DonationType `json:"type" validate:"oneof=monetary resource"`
	Amount     int64        `json:"amount" validate:"gte=0"`
	AppliedAt  time.Time    `json:"applied_at"`
}

// Volunteer is a person who can be staffed on assignments.
type Volunteer struct {
	Base
	Name                 string                `json:"name" validate:"required"`
	Email                string                `json:"email" validate:"omitempty,email"`
	Phone                string                `json:"phone,omitempty"`
	Location             string                `json:"location,omitempty"`
	Skills               []string              `json:"skills,omitempty"`
	Experience           string                `json:"experience,omitempty"`
	Availability         VolunteerAvailability `json:"availability" validate:"oneof=available busy unavailable"`
	AssignmentsCompleted int                   `json:"assignments_completed" validate:"gte=0"`
	Rating               float64               `json:"rating" validate:"gte=0,lte=5"`
	CurrentAssignmentID  *string               `json:"current_assignment_id,omitempty"`
}

// ApplyDefaults marks new volunteers as available.
func (v *Volunteer) ApplyDefaults() {
	if v.Availability == "" {
		v.Availability = VolunteerAvailable
	}
}

// Clone returns a deep copy of the volunteer.
func (v Volunteer) Clone() Volunteer {
	v.Skills = slices.Clone(v.Skills)
	v.CurrentAssignmentID = cloneStringPtr(v.CurrentAssignmentID)
	return v
}

// Assignment is a staffed task with a fixed number of volunteer slots.
type Assignment struct {
	Base
	Title              string           `json:"title" validate:"required"`
	Description        string           `json:"description"`
	Location           string           `json:"location"`
	Urgency            Urgency          `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
	SkillsRequired     []string         `json:"skills_required,omitempty"`
	VolunteersNeeded   int              `json:"volunteers_needed" validate:"gte=1"`
	VolunteersAssigned int              `json:"volunteers_assigned" validate:"gte=0,ltefield=VolunteersNeeded"`
	AssignedVolunteers []string         `json:"assigned_volunteers"`
	StartDate          *time.Time       `json:"start_date,omitempty"`
	EndDate            *time.Time       `json:"end_date,omitempty"`
	CreatedBy          string           `json:"created_by"`
	Status             AssignmentStatus `json:"status" validate:"oneof=open in-progress completed cancelled"`
}

// ApplyDefaults fills in the initial status.
func (a *Assignment) ApplyDefaults() {
	if a.Status == "" {
		a.Status = AssignmentOpen
	}
}

// Clone returns a deep copy of the assignment.
func (a Assignment) Clone() Assignment {
	a.SkillsRequired = slices.Clone(a.SkillsRequired)
	a.AssignedVolunteers = slices.Clone(a.AssignedVolunteers)
	if a.StartDate != nil {
		start := *a.StartDate
		a.StartDate = &start
	}
	if a.EndDate != nil {
		end := *a.EndDate
		a.EndDate = &end
	}
	return a
}

// OpenSlots returns the number of volunteers still needed.
func (a Assignment) OpenSlots() int {
	return max(a.VolunteersNeeded-a.VolunteersAssigned, 0)
}

// HasVolunteer reports whether the volunteer is already staffed on the assignment.
func (a Assignment) HasVolunteer(id string) bool {
	return slices.Contains(a.AssignedVolunteers, id)
}

// User is a platform account.
type User struct {
	Base
	Name          string     `json:"name" validate:"required"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Role          Role       `json:"role" validate:"oneof=citizen ngo donor volunteer admin"`
	ActivityCount int        `json:"activity_count" validate:"gte=0"`
	LastActive    *time.Time `json:"last_active,omitempty"`
	Status        UserStatus `json:"status" validate:"oneof=active suspended pending"`
}

// ApplyDefaults fills in the initial status.
func (u *User) ApplyDefaults() {
	if u.Status == "" {
		u.Status = UserPending
	}
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	if u.LastActive != nil {
		last := *u.LastActive
		u.LastActive = &last
	}
	return u
}

// ModerationItem is a piece of user content queued for review.
type ModerationItem struct {
	Base
	ContentType ContentType      `json:"content_type" validate:"oneof=disaster_report help_request resource donation"`
	ContentID   string           `json:"content_id"`
	Title       string           `json:"title"`
	AuthorID    string           `json:"author_id"`
	FlagCount   int              `json:"flag_count" validate:"gte=0"`
	Status      ModerationStatus `json:"status" validate:"oneof=pending approved rejected"`
}

// ApplyDefaults fills in the initial status.
func (m *ModerationItem) ApplyDefaults() {
	if m.Status == "" {
		m.Status = ModerationPending
	}
}

// DefaultLimitedThreshold is the quantity at or below which stock is labelled limited.
const DefaultLimitedThreshold = 10

// DeriveAvailability maps a stock quantity onto an availability label.
func DeriveAvailability(quantity, limitedThreshold int) Availability {
	switch {
	case quantity <= 0:
		return AvailabilityUnavailable
	case quantity <= limitedThreshold:
		return AvailabilityLimited
	default:
		return AvailabilityAvailable
	}
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Kind   ChangeKind
	Before any
	After  any
}

// ChangeKind indicates the type of modification performed.
type ChangeKind string

// Change kinds captured for rule evaluation.
const (
	// ChangeCreate indicates an entity was created.
	ChangeCreate ChangeKind = "create"
	// ChangeUpdate indicates an entity was updated.
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
