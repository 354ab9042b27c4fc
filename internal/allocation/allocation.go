// Package allocation applies relief allocation actions as single consistent
// updates spanning two records. Every function operates on a transaction
// supplied by the store, holds no state of its own, and leaves commit or
// rollback to the caller.
package allocation

import "reliefcore/pkg/domain"

// statusError builds a precondition failure for a record in the wrong status.
// When the status is terminal the TerminalState error is attached as the
// cause, so callers can match either kind.
func statusError(kind domain.ErrorKind, entity domain.EntityType, id, status string, action domain.Action) *domain.Error {
	err := &domain.Error{Kind: kind, Entity: entity, ID: id, Status: status, Action: action}
	if m, ok := domain.MachineFor(entity); ok && m.Terminal(status) {
		err.Cause = &domain.Error{Kind: domain.KindTerminalState, Entity: entity, ID: id, Status: status, Action: action}
	}
	return err
}

func invalid(entity domain.EntityType, id, detail string) error {
	return domain.Invalid(entity, id, detail)
}
