package services

import (
	"context"

	"zonewatch/internal/rules"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage is the persistence boundary for the rules engine's records:
// actor specs and the tanks depleted by supply rolls.
type Storage interface {
	HealthChecker
	Closer
	rules.Store

	// GetActorSpec loads a stored actor spec. Returns nil if the actor
	// doesn't exist.
	GetActorSpec(ctx context.Context, actorID string) (*rules.ActorSpec, error)

	// SaveActorSpec saves an actor spec keyed by its ID.
	SaveActorSpec(ctx context.Context, spec *rules.ActorSpec) error
}
