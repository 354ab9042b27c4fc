package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"reliefcore/internal/allocation"
	"reliefcore/internal/reporting"
	"reliefcore/pkg/domain"
)

// Clock supplies the current time to the service.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the service clock used for date-driven operations.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLimitedThreshold sets the stock level at or below which a resource is
// labelled limited.
func WithLimitedThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limitedThreshold = n
		}
	}
}

// Service exposes transactional relief operations over a persistent store.
type Service struct {
	store            domain.PersistentStore
	logger           *zap.Logger
	metrics          MetricsRecorder
	tracer           Tracer
	clock            Clock
	limitedThreshold int
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:            store,
		logger:           zap.NewNop(),
		metrics:          noopMetrics{},
		tracer:           noopTracer{},
		clock:            ClockFunc(func() time.Time { return time.Now().UTC() }),
		limitedThreshold: domain.DefaultLimitedThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.clock.Now() }

// View runs fn against a consistent read-only snapshot.
func (s *Service) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	return s.store.View(ctx, fn)
}

func (s *Service) run(ctx context.Context, operation string, fn func(domain.Transaction) error) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	started := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	elapsed := time.Since(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, elapsed)

	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.logger.Warn("rule warning",
				zap.String("operation", operation),
				zap.String("rule", v.Rule),
				zap.String("entity", string(v.Entity)),
				zap.String("entity_id", v.EntityID),
				zap.String("message", v.Message))
		}
	}
	if err != nil {
		s.logger.Warn("operation failed",
			zap.String("operation", operation),
			zap.String("kind", string(errorKind(err))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return res, err
	}
	s.logger.Info("operation committed",
		zap.String("operation", operation),
		zap.Duration("elapsed", elapsed))
	return res, nil
}

// errorKind names the failure class for logs and traces.
func errorKind(err error) domain.ErrorKind {
	var rv domain.RuleViolationError
	if errors.As(err, &rv) {
		return "RuleViolation"
	}
	return domain.KindOf(err)
}

func apply[T any](ctx context.Context, s *Service, operation string, fn func(domain.Transaction) (T, error)) (T, domain.Result, error) {
	var out T
	res, err := s.run(ctx, operation, func(tx domain.Transaction) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, res, err
	}
	return out, res, nil
}

// Summary aggregates dashboard statistics from the current state.
func (s *Service) Summary(ctx context.Context) (reporting.Summary, error) {
	var summary reporting.Summary
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		summary = reporting.Summarize(v, s.clock.Now())
		return nil
	})
	return summary, err
}

// AssignVolunteer staffs a volunteer on an open assignment.
func (s *Service) AssignVolunteer(ctx context.Context, assignmentID, volunteerID string) (allocation.Staffing, domain.Result, error) {
	return apply(ctx, s, "assign_volunteer", func(tx domain.Transaction) (allocation.Staffing, error) {
		return allocation.AssignVolunteer(tx, assignmentID, volunteerID)
	})
}

// CompleteAssignment closes an in-progress assignment and releases its volunteers.
func (s *Service) CompleteAssignment(ctx context.Context, assignmentID string) (domain.Assignment, domain.Result, error) {
	return apply(ctx, s, "complete_assignment", func(tx domain.Transaction) (domain.Assignment, error) {
		a, _, err := allocation.CompleteAssignment(tx, assignmentID)
		return a, err
	})
}

// CancelAssignment cancels an assignment and releases its volunteers.
func (s *Service) CancelAssignment(ctx context.Context, assignmentID string) (domain.Assignment, domain.Result, error) {
	return apply(ctx, s, "cancel_assignment", func(tx domain.Transaction) (domain.Assignment, error) {
		a, _, err := allocation.CancelAssignment(tx, assignmentID)
		return a, err
	})
}

// EligibleVolunteers ranks available volunteers for an open assignment.
func (s *Service) EligibleVolunteers(ctx context.Context, assignmentID string) ([]domain.Volunteer, error) {
	var out []domain.Volunteer
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		var err error
		out, err = allocation.EligibleVolunteers(v, assignmentID)
		return err
	})
	return out, err
}

// ApplyDonation credits a completed donation to its campaign exactly once.
func (s *Service) ApplyDonation(ctx context.Context, donationID string) (allocation.Contribution, domain.Result, error) {
	return apply(ctx, s, "apply_donation", func(tx domain.Transaction) (allocation.Contribution, error) {
		return allocation.ApplyDonation(tx, donationID)
	})
}

// RecordDonation stores a donation, applying it when it arrives completed.
func (s *Service) RecordDonation(ctx context.Context, donation domain.Donation) (allocation.Contribution, domain.Result, error) {
	return apply(ctx, s, "record_donation", func(tx domain.Transaction) (allocation.Contribution, error) {
		return allocation.RecordDonation(tx, donation)
	})
}

// CompleteDonation confirms a pending donation and applies it.
func (s *Service) CompleteDonation(ctx context.Context, donationID string) (allocation.Contribution, domain.Result, error) {
	return apply(ctx, s, "complete_donation", func(tx domain.Transaction) (allocation.Contribution, error) {
		return allocation.CompleteDonation(tx, donationID)
	})
}

// FailDonation marks a pending donation as failed.
func (s *Service) FailDonation(ctx context.Context, donationID string) (domain.Donation, domain.Result, error) {
	return apply(ctx, s, "fail_donation", func(tx domain.Transaction) (domain.Donation, error) {
		return allocation.FailDonation(tx, donationID)
	})
}

// AcceptHelpRequest hands an open help request to an assignee.
func (s *Service) AcceptHelpRequest(ctx context.Context, requestID, assigneeID string) (domain.HelpRequest, domain.Result, error) {
	return apply(ctx, s, "accept_help_request", func(tx domain.Transaction) (domain.HelpRequest, error) {
		return allocation.AcceptHelpRequest(tx, requestID, assigneeID)
	})
}

// FulfillHelpRequest marks an in-progress help request as fulfilled.
func (s *Service) FulfillHelpRequest(ctx context.Context, requestID string) (domain.HelpRequest, domain.Result, error) {
	return apply(ctx, s, "fulfill_help_request", func(tx domain.Transaction) (domain.HelpRequest, error) {
		return allocation.FulfillHelpRequest(tx, requestID)
	})
}

// CloseHelpRequest withdraws an open or in-progress help request.
func (s *Service) CloseHelpRequest(ctx context.Context, requestID string) (domain.HelpRequest, domain.Result, error) {
	return apply(ctx, s, "close_help_request", func(tx domain.Transaction) (domain.HelpRequest, error) {
		return allocation.CloseHelpRequest(tx, requestID)
	})
}

// DistributeResource draws stock from a resource listing.
func (s *Service) DistributeResource(ctx context.Context, resourceID string, quantity int) (domain.Resource, domain.Result, error) {
	return apply(ctx, s, "distribute_resource", func(tx domain.Transaction) (domain.Resource, error) {
		return allocation.DistributeResource(tx, resourceID, quantity, s.limitedThreshold)
	})
}

// RestockResource adds stock to a resource listing.
func (s *Service) RestockResource(ctx context.Context, resourceID string, quantity int) (domain.Resource, domain.Result, error) {
	return apply(ctx, s, "restock_resource", func(tx domain.Transaction) (domain.Resource, error) {
		return allocation.RestockResource(tx, resourceID, quantity, s.limitedThreshold)
	})
}

// CloseExpiredCampaigns completes every active campaign past its end date.
func (s *Service) CloseExpiredCampaigns(ctx context.Context) ([]domain.Campaign, domain.Result, error) {
	now := s.clock.Now()
	return apply(ctx, s, "close_expired_campaigns", func(tx domain.Transaction) ([]domain.Campaign, error) {
		return allocation.CloseExpiredCampaigns(tx, now)
	})
}

// TransitionReport applies a lifecycle action to a disaster report.
func (s *Service) TransitionReport(ctx context.Context, id string, action domain.Action) (domain.DisasterReport, domain.Result, error) {
	return apply(ctx, s, "transition_report", func(tx domain.Transaction) (domain.DisasterReport, error) {
		return allocation.TransitionReport(tx, id, action)
	})
}

// TransitionUser applies an admin action to a user account.
func (s *Service) TransitionUser(ctx context.Context, id string, action domain.Action) (domain.User, domain.Result, error) {
	return apply(ctx, s, "transition_user", func(tx domain.Transaction) (domain.User, error) {
		return allocation.TransitionUser(tx, id, action)
	})
}

// TransitionModerationItem records a moderation decision.
func (s *Service) TransitionModerationItem(ctx context.Context, id string, action domain.Action) (domain.ModerationItem, domain.Result, error) {
	return apply(ctx, s, "transition_moderation_item", func(tx domain.Transaction) (domain.ModerationItem, error) {
		return allocation.TransitionModerationItem(tx, id, action)
	})
}

// TransitionCampaign pauses, resumes, or ends a campaign.
func (s *Service) TransitionCampaign(ctx context.Context, id string, action domain.Action) (domain.Campaign, domain.Result, error) {
	return apply(ctx, s, "transition_campaign", func(tx domain.Transaction) (domain.Campaign, error) {
		return allocation.TransitionCampaign(tx, id, action)
	})
}

// TransitionVolunteer lets a volunteer step away or return.
func (s *Service) TransitionVolunteer(ctx context.Context, id string, action domain.Action) (domain.Volunteer, domain.Result, error) {
	return apply(ctx, s, "transition_volunteer", func(tx domain.Transaction) (domain.Volunteer, error) {
		return allocation.TransitionVolunteer(tx, id, action)
	})
}
