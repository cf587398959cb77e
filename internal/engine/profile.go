// internal/engine/profile.go
package engine

import (
	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/domain"
)

// ResolveProfile assembles the lead-time profile for a product. Shipping
// weeks come from the request override when given, otherwise from the master
// record; either way the value must sit inside the configured bounds. An
// out-of-range value is rejected, never clamped.
func ResolveProfile(p *domain.Product, shippingOverride *int, cfg config.EngineConfig) (LeadTimeProfile, error) {
	if p == nil {
		return LeadTimeProfile{}, domain.ErrNotFound
	}

	shipping := p.ShippingWeeks
	field := "shipping_weeks"
	if shippingOverride != nil {
		shipping = *shippingOverride
		field = "shipping_weeks override"
	}
	if shipping < cfg.ShippingMinWeeks || shipping > cfg.ShippingMaxWeeks {
		return LeadTimeProfile{}, domain.NewValidationError(field,
			"%d is outside the allowed range [%d, %d]",
			shipping, cfg.ShippingMinWeeks, cfg.ShippingMaxWeeks)
	}

	return LeadTimeProfile{
		Production:  p.ProductionWeeks,
		Loading:     cfg.LoadingWeeks,
		Shipping:    shipping,
		SafetyStock: p.SafetyStockWeeks,
	}, nil
}
