package rules

import "context"

// Tank is a resource-holding sub-entity of an actor: an air tank, suit
// reserve, or similar. The actor's aggregate supply total is derived from
// the sum of its active tanks of a kind; tanks are the records mutated by
// depletion.
type Tank struct {
	ID      string `json:"id"`
	ActorID string `json:"actor_id"`
	Name    string `json:"name,omitempty"`
	Kind    string `json:"kind"`
	Supply  int    `json:"supply"`
	Active  bool   `json:"active"`
}

// Store is the slice of the rules engine's persistence the orchestrator
// needs: actor resolution and tank reads/writes.
type Store interface {
	// ActorFor resolves an actor by id, with supply attributes recomputed
	// from its tanks. Returns nil without error when the actor is unknown.
	ActorFor(ctx context.Context, actorID string) (*Actor, error)

	// Tanks lists all tanks attached to an actor.
	Tanks(ctx context.Context, actorID string) ([]Tank, error)

	// SaveTank persists a tank record.
	SaveTank(ctx context.Context, tank Tank) error
}

// Engine identifies the rules engine active on the host.
type Engine interface {
	// ActiveRuleset returns the ruleset tag the host is running.
	ActiveRuleset() string
}
