// Package memory provides an in-memory implementation of the relief
// persistence store used for tests, ephemeral environments, and as the
// transactional engine behind the snapshotting SQL backends.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"reliefcore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	reports      map[string]domain.DisasterReport
	requests     map[string]domain.HelpRequest
	resources    map[string]domain.Resource
	campaigns    map[string]domain.Campaign
	donations    map[string]domain.Donation
	applications map[string]domain.DonationApplication
	volunteers   map[string]domain.Volunteer
	assignments  map[string]domain.Assignment
	users        map[string]domain.User
	moderation   map[string]domain.ModerationItem
}

func (s memoryState) clone() memoryState {
	return memoryState{
		reports:      cloneRows(s.reports),
		requests:     cloneRows(s.requests),
		resources:    cloneRows(s.resources),
		campaigns:    cloneRows(s.campaigns),
		donations:    cloneRows(s.donations),
		applications: cloneRows(s.applications),
		volunteers:   cloneRows(s.volunteers),
		assignments:  cloneRows(s.assignments),
		users:        cloneRows(s.users),
		moderation:   cloneRows(s.moderation),
	}
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Reports      map[string]domain.DisasterReport      `json:"reports"`
	HelpRequests map[string]domain.HelpRequest         `json:"help_requests"`
	Resources    map[string]domain.Resource            `json:"resources"`
	Campaigns    map[string]domain.Campaign            `json:"campaigns"`
	Donations    map[string]domain.Donation            `json:"donations"`
	Applications map[string]domain.DonationApplication `json:"applications"`
	Volunteers   map[string]domain.Volunteer           `json:"volunteers"`
	Assignments  map[string]domain.Assignment          `json:"assignments"`
	Users        map[string]domain.User                `json:"users"`
	Moderation   map[string]domain.ModerationItem      `json:"moderation"`
}

// Bucket pairs a persisted section name with a pointer to its map in a Snapshot.
type Bucket struct {
	Name string
	Data any
}

// Buckets lists the snapshot sections in a stable order. Data fields point
// into s, so they can be used as json.Unmarshal targets.
func (s *Snapshot) Buckets() []Bucket {
	return []Bucket{
		{Name: "reports", Data: &s.Reports},
		{Name: "help_requests", Data: &s.HelpRequests},
		{Name: "resources", Data: &s.Resources},
		{Name: "campaigns", Data: &s.Campaigns},
		{Name: "donations", Data: &s.Donations},
		{Name: "applications", Data: &s.Applications},
		{Name: "volunteers", Data: &s.Volunteers},
		{Name: "assignments", Data: &s.Assignments},
		{Name: "users", Data: &s.Users},
		{Name: "moderation", Data: &s.Moderation},
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Reports:      cloneRows(state.reports),
		HelpRequests: cloneRows(state.requests),
		Resources:    cloneRows(state.resources),
		Campaigns:    cloneRows(state.campaigns),
		Donations:    cloneRows(state.donations),
		Applications: cloneRows(state.applications),
		Volunteers:   cloneRows(state.volunteers),
		Assignments:  cloneRows(state.assignments),
		Users:        cloneRows(state.users),
		Moderation:   cloneRows(state.moderation),
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	return memoryState{
		reports:      cloneRows(s.Reports),
		requests:     cloneRows(s.HelpRequests),
		resources:    cloneRows(s.Resources),
		campaigns:    cloneRows(s.Campaigns),
		donations:    cloneRows(s.Donations),
		applications: cloneRows(s.Applications),
		volunteers:   cloneRows(s.Volunteers),
		assignments:  cloneRows(s.Assignments),
		users:        cloneRows(s.Users),
		moderation:   cloneRows(s.Moderation),
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// Store provides an in-memory transactional store for the relief domain.
// Writers are serialized by a single lock, so a transaction always observes
// every previously committed transaction.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  memoryState{}.clone(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *domain.RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds and no rule
// reports a blocking violation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	tx.transactionView = transactionView{state: &tx.state}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(transactionView{state: &snapshot})
}

type transaction struct {
	transactionView
	store   *Store
	state   memoryState
	changes []domain.Change
	now     time.Time
}

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return transactionView{state: &tx.state}
}

// record is satisfied by pointers to every domain record type.
type record[T any] interface {
	*T
	Meta() *domain.Base
}

type defaulter interface {
	ApplyDefaults()
}

func cloneValue[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

func cloneRows[T any](in map[string]T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func findRow[T any](rows map[string]T, id string) (T, bool) {
	v, ok := rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return cloneValue(v), true
}

// listRows returns clones ordered by creation time, then ID.
func listRows[T any, P record[T]](rows map[string]T) []T {
	out := make([]T, 0, len(rows))
	for _, v := range rows {
		out = append(out, cloneValue(v))
	}
	slices.SortFunc(out, func(a, b T) int {
		ma, mb := P(&a).Meta(), P(&b).Meta()
		if c := ma.CreatedAt.Compare(mb.CreatedAt); c != 0 {
			return c
		}
		switch {
		case ma.ID < mb.ID:
			return -1
		case ma.ID > mb.ID:
			return 1
		}
		return 0
	})
	return out
}

func createRow[T any, P record[T]](tx *transaction, entity domain.EntityType, rows map[string]T, rec T) (T, error) {
	var zero T
	meta := P(&rec).Meta()
	if meta.ID == "" {
		meta.ID = tx.store.newID()
	}
	if _, exists := rows[meta.ID]; exists {
		return zero, &domain.Error{Kind: domain.KindAlreadyExists, Entity: entity, ID: meta.ID}
	}
	if d, ok := any(P(&rec)).(defaulter); ok {
		d.ApplyDefaults()
	}
	meta.CreatedAt = tx.now
	meta.UpdatedAt = tx.now
	if err := domain.Validate(entity, meta.ID, rec); err != nil {
		return zero, err
	}
	rows[meta.ID] = cloneValue(rec)
	tx.recordChange(domain.Change{Entity: entity, Kind: domain.ChangeCreate, After: cloneValue(rec)})
	return cloneValue(rec), nil
}

func updateRow[T any, P record[T]](tx *transaction, entity domain.EntityType, rows map[string]T, id string, mutator func(*T) error) (T, error) {
	var zero T
	stored, ok := rows[id]
	if !ok {
		return zero, domain.NotFound(entity, id)
	}
	before := cloneValue(stored)
	current := cloneValue(stored)
	if err := mutator(&current); err != nil {
		return zero, err
	}
	meta := P(&current).Meta()
	meta.ID = id
	meta.CreatedAt = P(&before).Meta().CreatedAt
	meta.UpdatedAt = tx.now
	if err := domain.Validate(entity, id, current); err != nil {
		return zero, err
	}
	rows[id] = cloneValue(current)
	tx.recordChange(domain.Change{Entity: entity, Kind: domain.ChangeUpdate, Before: before, After: cloneValue(current)})
	return cloneValue(current), nil
}

func deleteRow[T any](tx *transaction, entity domain.EntityType, rows map[string]T, id string, guard func(T) error) error {
	current, ok := rows[id]
	if !ok {
		return domain.NotFound(entity, id)
	}
	if guard != nil {
		if err := guard(current); err != nil {
			return err
		}
	}
	delete(rows, id)
	tx.recordChange(domain.Change{Entity: entity, Kind: domain.ChangeDelete, Before: cloneValue(current)})
	return nil
}

func stillReferenced(entity domain.EntityType, id string, by domain.EntityType, byID string) error {
	return &domain.Error{Kind: domain.KindStillReferenced, Entity: entity, ID: id, Detail: string(by) + " " + byID}
}

// CreateReport stores a new disaster report.
func (tx *transaction) CreateReport(r domain.DisasterReport) (domain.DisasterReport, error) {
	return createRow(tx, domain.EntityReport, tx.state.reports, r)
}

// UpdateReport mutates an existing disaster report.
func (tx *transaction) UpdateReport(id string, mutator func(*domain.DisasterReport) error) (domain.DisasterReport, error) {
	return updateRow(tx, domain.EntityReport, tx.state.reports, id, mutator)
}

// DeleteReport removes a disaster report.
func (tx *transaction) DeleteReport(id string) error {
	return deleteRow(tx, domain.EntityReport, tx.state.reports, id, nil)
}

// CreateHelpRequest stores a new help request.
func (tx *transaction) CreateHelpRequest(r domain.HelpRequest) (domain.HelpRequest, error) {
	return createRow(tx, domain.EntityHelpRequest, tx.state.requests, r)
}

// UpdateHelpRequest mutates an existing help request.
func (tx *transaction) UpdateHelpRequest(id string, mutator func(*domain.HelpRequest) error) (domain.HelpRequest, error) {
	return updateRow(tx, domain.EntityHelpRequest, tx.state.requests, id, mutator)
}

// DeleteHelpRequest removes a help request.
func (tx *transaction) DeleteHelpRequest(id string) error {
	return deleteRow(tx, domain.EntityHelpRequest, tx.state.requests, id, nil)
}

// CreateResource stores a new resource listing.
func (tx *transaction) CreateResource(r domain.Resource) (domain.Resource, error) {
	return createRow(tx, domain.EntityResource, tx.state.resources, r)
}

// UpdateResource mutates an existing resource listing.
func (tx *transaction) UpdateResource(id string, mutator func(*domain.Resource) error) (domain.Resource, error) {
	return updateRow(tx, domain.EntityResource, tx.state.resources, id, mutator)
}

// DeleteResource removes a resource listing.
func (tx *transaction) DeleteResource(id string) error {
	return deleteRow(tx, domain.EntityResource, tx.state.resources, id, nil)
}

// CreateCampaign stores a new campaign. Totals must start at zero; they only
// grow through applied donations.
func (tx *transaction) CreateCampaign(c domain.Campaign) (domain.Campaign, error) {
	if c.CurrentAmount != 0 || c.DonorCount != 0 {
		return domain.Campaign{}, domain.Invalid(domain.EntityCampaign, c.ID, "current amount and donor count must start at zero")
	}
	return createRow(tx, domain.EntityCampaign, tx.state.campaigns, c)
}

// UpdateCampaign mutates an existing campaign.
func (tx *transaction) UpdateCampaign(id string, mutator func(*domain.Campaign) error) (domain.Campaign, error) {
	return updateRow(tx, domain.EntityCampaign, tx.state.campaigns, id, mutator)
}

// DeleteCampaign removes a campaign that no donation points at.
func (tx *transaction) DeleteCampaign(id string) error {
	return deleteRow(tx, domain.EntityCampaign, tx.state.campaigns, id, func(domain.Campaign) error {
		for _, d := range tx.state.donations {
			if d.CampaignID == id {
				return stillReferenced(domain.EntityCampaign, id, domain.EntityDonation, d.ID)
			}
		}
		return nil
	})
}

// CreateDonation stores a new donation.
func (tx *transaction) CreateDonation(d domain.Donation) (domain.Donation, error) {
	return createRow(tx, domain.EntityDonation, tx.state.donations, d)
}

// UpdateDonation mutates an existing donation.
func (tx *transaction) UpdateDonation(id string, mutator func(*domain.Donation) error) (domain.Donation, error) {
	return updateRow(tx, domain.EntityDonation, tx.state.donations, id, mutator)
}

// DeleteDonation removes a donation that has not been applied.
func (tx *transaction) DeleteDonation(id string) error {
	return deleteRow(tx, domain.EntityDonation, tx.state.donations, id, func(domain.Donation) error {
		if _, applied := tx.state.applications[id]; applied {
			return stillReferenced(domain.EntityDonation, id, domain.EntityDonationApplication, id)
		}
		return nil
	})
}

// RecordDonationApplication appends a ledger row keyed by the donation ID.
func (tx *transaction) RecordDonationApplication(a domain.DonationApplication) (domain.DonationApplication, error) {
	a.ID = a.DonationID
	if a.AppliedAt.IsZero() {
		a.AppliedAt = tx.now
	}
	return createRow(tx, domain.EntityDonationApplication, tx.state.applications, a)
}

// CreateVolunteer stores a new volunteer profile.
func (tx *transaction) CreateVolunteer(v domain.Volunteer) (domain.Volunteer, error) {
	return createRow(tx, domain.EntityVolunteer, tx.state.volunteers, v)
}

// UpdateVolunteer mutates an existing volunteer profile.
func (tx *transaction) UpdateVolunteer(id string, mutator func(*domain.Volunteer) error) (domain.Volunteer, error) {
	return updateRow(tx, domain.EntityVolunteer, tx.state.volunteers, id, mutator)
}

// DeleteVolunteer removes a volunteer not staffed on a live assignment.
func (tx *transaction) DeleteVolunteer(id string) error {
	return deleteRow(tx, domain.EntityVolunteer, tx.state.volunteers, id, func(domain.Volunteer) error {
		for _, a := range tx.state.assignments {
			if a.Status != domain.AssignmentOpen && a.Status != domain.AssignmentInProgress {
				continue
			}
			if a.HasVolunteer(id) {
				return stillReferenced(domain.EntityVolunteer, id, domain.EntityAssignment, a.ID)
			}
		}
		return nil
	})
}

// CreateAssignment stores a new assignment.
func (tx *transaction) CreateAssignment(a domain.Assignment) (domain.Assignment, error) {
	if a.AssignedVolunteers == nil {
		a.AssignedVolunteers = []string{}
	}
	return createRow(tx, domain.EntityAssignment, tx.state.assignments, a)
}

// UpdateAssignment mutates an existing assignment.
func (tx *transaction) UpdateAssignment(id string, mutator func(*domain.Assignment) error) (domain.Assignment, error) {
	return updateRow(tx, domain.EntityAssignment, tx.state.assignments, id, mutator)
}

// DeleteAssignment removes an assignment no volunteer is currently working.
func (tx *transaction) DeleteAssignment(id string) error {
	return deleteRow(tx, domain.EntityAssignment, tx.state.assignments, id, func(domain.Assignment) error {
		for _, v := range tx.state.volunteers {
			if v.CurrentAssignmentID != nil && *v.CurrentAssignmentID == id {
				return stillReferenced(domain.EntityAssignment, id, domain.EntityVolunteer, v.ID)
			}
		}
		return nil
	})
}

// CreateUser stores a new account.
func (tx *transaction) CreateUser(u domain.User) (domain.User, error) {
	return createRow(tx, domain.EntityUser, tx.state.users, u)
}

// UpdateUser mutates an existing account.
func (tx *transaction) UpdateUser(id string, mutator func(*domain.User) error) (domain.User, error) {
	return updateRow(tx, domain.EntityUser, tx.state.users, id, mutator)
}

// DeleteUser removes an account.
func (tx *transaction) DeleteUser(id string) error {
	return deleteRow(tx, domain.EntityUser, tx.state.users, id, nil)
}

// CreateModerationItem stores a new moderation item.
func (tx *transaction) CreateModerationItem(m domain.ModerationItem) (domain.ModerationItem, error) {
	return createRow(tx, domain.EntityModerationItem, tx.state.moderation, m)
}

// UpdateModerationItem mutates an existing moderation item.
func (tx *transaction) UpdateModerationItem(id string, mutator func(*domain.ModerationItem) error) (domain.ModerationItem, error) {
	return updateRow(tx, domain.EntityModerationItem, tx.state.moderation, id, mutator)
}

// DeleteModerationItem removes a moderation item.
func (tx *transaction) DeleteModerationItem(id string) error {
	return deleteRow(tx, domain.EntityModerationItem, tx.state.moderation, id, nil)
}
