package allocation

import "reliefcore/pkg/domain"

// AcceptHelpRequest hands an open help request to an assignee.
func AcceptHelpRequest(tx domain.Transaction, requestID, assigneeID string) (domain.HelpRequest, error) {
	request, ok := tx.FindHelpRequest(requestID)
	if !ok {
		return domain.HelpRequest{}, domain.NotFound(domain.EntityHelpRequest, requestID)
	}
	if request.Status != domain.HelpRequestOpen {
		return domain.HelpRequest{}, statusError(domain.KindNotOpen, domain.EntityHelpRequest, request.ID, string(request.Status), domain.ActionAccept)
	}
	if assigneeID == "" {
		return domain.HelpRequest{}, &domain.Error{
			Kind:   domain.KindInvalidTransition,
			Entity: domain.EntityHelpRequest,
			ID:     request.ID,
			Status: string(request.Status),
			Action: domain.ActionAccept,
			Detail: "assignee is required",
		}
	}
	next, err := domain.Transition(domain.EntityHelpRequest, request.ID, string(request.Status), domain.ActionAccept)
	if err != nil {
		return domain.HelpRequest{}, err
	}
	return tx.UpdateHelpRequest(request.ID, func(r *domain.HelpRequest) error {
		r.Status = domain.HelpRequestStatus(next)
		r.AssignedTo = &assigneeID
		return nil
	})
}

// FulfillHelpRequest marks an in-progress help request as fulfilled.
func FulfillHelpRequest(tx domain.Transaction, requestID string) (domain.HelpRequest, error) {
	request, ok := tx.FindHelpRequest(requestID)
	if !ok {
		return domain.HelpRequest{}, domain.NotFound(domain.EntityHelpRequest, requestID)
	}
	if request.Status != domain.HelpRequestInProgress {
		return domain.HelpRequest{}, statusError(domain.KindNotInProgress, domain.EntityHelpRequest, request.ID, string(request.Status), domain.ActionFulfill)
	}
	next, err := domain.Transition(domain.EntityHelpRequest, request.ID, string(request.Status), domain.ActionFulfill)
	if err != nil {
		return domain.HelpRequest{}, err
	}
	return tx.UpdateHelpRequest(request.ID, func(r *domain.HelpRequest) error {
		r.Status = domain.HelpRequestStatus(next)
		return nil
	})
}

// CloseHelpRequest withdraws an open or in-progress help request.
func CloseHelpRequest(tx domain.Transaction, requestID string) (domain.HelpRequest, error) {
	request, ok := tx.FindHelpRequest(requestID)
	if !ok {
		return domain.HelpRequest{}, domain.NotFound(domain.EntityHelpRequest, requestID)
	}
	next, err := domain.Transition(domain.EntityHelpRequest, request.ID, string(request.Status), domain.ActionClose)
	if err != nil {
		return domain.HelpRequest{}, err
	}
	return tx.UpdateHelpRequest(request.ID, func(r *domain.HelpRequest) error {
		r.Status = domain.HelpRequestStatus(next)
		return nil
	})
}
