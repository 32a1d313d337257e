package rules

import (
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"
)

// ActorSpec is the serializable record for a game actor as stored by the
// rules engine. Attributes carries supply totals keyed by kind; an actor
// that has no key for a kind does not track that resource at all.
type ActorSpec struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	HP         int            `json:"hp,omitempty"`
	MaxHP      int            `json:"max_hp,omitempty"`
	AC         int            `json:"ac,omitempty"`
	Attributes map[string]int `json:"attributes,omitempty"`
}

// Actor is the runtime representation of a game actor.
type Actor struct {
	Spec  *ActorSpec
	Sheet *d20.Actor // Built at runtime from the spec
}

// NewActorFromSpec builds the runtime actor from a stored spec.
func NewActorFromSpec(spec *ActorSpec) (*Actor, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	attrs := make(map[string]int, len(spec.Attributes))
	maps.Copy(attrs, spec.Attributes)

	sheet, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(attrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := sheet.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Actor{Spec: spec, Sheet: sheet}, nil
}

// Supply returns the actor's current total for a resource kind. The second
// return is false when the actor does not track the kind, which callers
// treat as a degraded-but-successful path, not an error.
func (a *Actor) Supply(kind string) (int, bool) {
	return a.Sheet.Attribute(kind)
}
