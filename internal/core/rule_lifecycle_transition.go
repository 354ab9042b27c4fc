package core

import (
	"context"
	"fmt"

	"reliefcore/pkg/domain"
)

// LifecycleTransitionRule blocks illegal status changes on stateful records.
func LifecycleTransitionRule() domain.Rule {
	return lifecycleTransitionRule{}
}

type lifecycleTransitionRule struct{}

func (lifecycleTransitionRule) Name() string { return "lifecycle_transition" }

func (lifecycleTransitionRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		machine, ok := domain.MachineFor(change.Entity)
		if !ok {
			continue
		}

		afterID, afterState, ok := domain.StatusOf(change.After)
		if !ok {
			continue
		}
		if !machine.Valid(afterState) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lifecycle_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s is set to invalid state %s", machine.Label, afterID, afterState),
				Entity:   machine.Entity,
				EntityID: afterID,
			})
			continue
		}

		beforeID, beforeState, ok := domain.StatusOf(change.Before)
		if !ok || beforeState == afterState {
			continue
		}
		switch {
		case machine.Terminal(beforeState):
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lifecycle_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("cannot move %s %s from terminal state %s to %s", machine.Label, beforeID, beforeState, afterState),
				Entity:   machine.Entity,
				EntityID: afterID,
			})
		case !machine.Allows(beforeState, afterState):
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "lifecycle_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("no transition moves %s %s from %s to %s", machine.Label, beforeID, beforeState, afterState),
				Entity:   machine.Entity,
				EntityID: afterID,
			})
		}
	}
	return res, nil
}
