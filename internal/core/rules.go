package core

import "reliefcore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *domain.RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := NewRulesEngine()
	engine.Register(LifecycleTransitionRule())
	engine.Register(NewAssignmentCapacityRule())
	engine.Register(NewAllocationPreconditionsRule())
	engine.Register(NewCampaignLedgerRule())
	return engine
}
