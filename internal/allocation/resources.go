package allocation

import (
	"fmt"

	"reliefcore/pkg/domain"
)

// DistributeResource draws quantity units from a resource's stock and
// re-derives its availability. A limitedThreshold of zero or less selects
// domain.DefaultLimitedThreshold.
func DistributeResource(tx domain.Transaction, resourceID string, quantity, limitedThreshold int) (domain.Resource, error) {
	if quantity <= 0 {
		return domain.Resource{}, invalid(domain.EntityResource, resourceID, "quantity must be positive")
	}
	resource, ok := tx.FindResource(resourceID)
	if !ok {
		return domain.Resource{}, domain.NotFound(domain.EntityResource, resourceID)
	}
	if quantity > resource.Quantity {
		return domain.Resource{}, &domain.Error{
			Kind:   domain.KindCapacityExceeded,
			Entity: domain.EntityResource,
			ID:     resource.ID,
			Status: string(resource.Availability),
			Detail: fmt.Sprintf("requested %d, in stock %d", quantity, resource.Quantity),
		}
	}
	return adjustStock(tx, resource.ID, -quantity, limitedThreshold)
}

// RestockResource adds quantity units to a resource's stock.
func RestockResource(tx domain.Transaction, resourceID string, quantity, limitedThreshold int) (domain.Resource, error) {
	if quantity <= 0 {
		return domain.Resource{}, invalid(domain.EntityResource, resourceID, "quantity must be positive")
	}
	if _, ok := tx.FindResource(resourceID); !ok {
		return domain.Resource{}, domain.NotFound(domain.EntityResource, resourceID)
	}
	return adjustStock(tx, resourceID, quantity, limitedThreshold)
}

func adjustStock(tx domain.Transaction, resourceID string, delta, limitedThreshold int) (domain.Resource, error) {
	if limitedThreshold <= 0 {
		limitedThreshold = domain.DefaultLimitedThreshold
	}
	return tx.UpdateResource(resourceID, func(r *domain.Resource) error {
		r.Quantity += delta
		r.Availability = domain.DeriveAvailability(r.Quantity, limitedThreshold)
		return nil
	})
}
