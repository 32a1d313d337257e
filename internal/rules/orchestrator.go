package rules

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"zonewatch/pkg/chat"
	"zonewatch/pkg/token"
	"zonewatch/pkg/zone"
)

// RulesetAlien is the ruleset tag supply rolls are written against.
const RulesetAlien = "alienrpg"

// Orchestrator runs the supply roll reaction for zones that require one:
// it resolves the token's actor, rolls stress dice equal to the actor's
// remaining supply, and depletes tanks by the number of ones rolled.
// Every failure path degrades to a chat message; nothing here raises past
// the dispatch boundary in normal operation.
type Orchestrator struct {
	engine    Engine
	store     Store
	roller    Roller
	messenger chat.Messenger
	ruleset   string
	speaker   string
	logger    *slog.Logger
}

// NewOrchestrator wires the supply roll orchestrator. ruleset is the tag
// the host must be running for rolls to be attempted.
func NewOrchestrator(engine Engine, store Store, roller Roller, messenger chat.Messenger, ruleset, speaker string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		store:     store,
		roller:    roller,
		messenger: messenger,
		ruleset:   ruleset,
		speaker:   speaker,
		logger:    logger,
	}
}

// HandleEntry reacts to a token entering a supply-roll zone. It matches
// dispatch.HandlerFunc and is registered for the unbreathable zone type.
func (o *Orchestrator) HandleEntry(ctx context.Context, tok token.Token, zn zone.Zone, cfg zone.TypeConfig) error {
	kind := cfg.SupplyKind
	if kind == "" {
		kind = zone.SupplyKindAir
	}

	if active := o.engine.ActiveRuleset(); active != o.ruleset {
		o.logger.Warn("Ruleset mismatch, skipping supply roll",
			"active", active,
			"configured", o.ruleset)
		return o.post(ctx, chat.CategoryOOC, fmt.Sprintf(
			"Supply rolls need the %s ruleset, but the host is running %s. Check the zonewatch configuration.",
			o.ruleset, active))
	}

	if tok.ActorID == "" {
		o.logger.Info("Token has no actor, skipping supply roll", "token_id", tok.ID)
		return nil
	}
	actor, err := o.store.ActorFor(ctx, tok.ActorID)
	if err != nil {
		return fmt.Errorf("failed to resolve actor %s: %w", tok.ActorID, err)
	}
	if actor == nil {
		o.logger.Info("Actor not found, skipping supply roll",
			"token_id", tok.ID,
			"actor_id", tok.ActorID)
		return nil
	}

	supply, tracked := actor.Supply(kind)
	if !tracked {
		o.logger.Info("Actor does not track supply kind",
			"actor_id", tok.ActorID,
			"kind", kind)
		return o.manualPrompt(ctx, tok, zn, kind)
	}

	if supply <= 0 {
		if err := o.post(ctx, chat.CategoryIC, fmt.Sprintf(
			"%s gasps. The %s gauge reads empty.", tok.Name, kind)); err != nil {
			return err
		}
		return o.post(ctx, chat.CategoryOOC, fmt.Sprintf(
			"%s is out of %s in %s!", tok.Name, kind, zn.Name))
	}

	result, err := o.roller.SupplyRoll(ctx, SupplyRollRequest{
		ActorName: actor.Spec.Name,
		Label:     "Supply Roll",
		Base:      0,
		Stress:    supply,
		Blind:     tok.Hostile,
	})
	if err != nil {
		o.logger.Error("Supply roll failed", "error", err, "actor_id", tok.ActorID)
		return o.manualPrompt(ctx, tok, zn, kind)
	}

	if result.Ones == 0 {
		return nil
	}
	return o.deplete(ctx, tok.ActorID, kind, result.Ones)
}

// deplete consumes amount units across the actor's active tanks of the
// given kind, smallest holders first, persisting each decrement.
func (o *Orchestrator) deplete(ctx context.Context, actorID, kind string, amount int) error {
	tanks, err := o.store.Tanks(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to list tanks for %s: %w", actorID, err)
	}

	holders := make([]Tank, 0, len(tanks))
	for _, t := range tanks {
		if t.Active && t.Kind == kind && t.Supply > 0 {
			holders = append(holders, t)
		}
	}
	slices.SortStableFunc(holders, func(a, b Tank) int {
		return cmp.Compare(a.Supply, b.Supply)
	})

	remaining := amount
	for _, t := range holders {
		if remaining <= 0 {
			break
		}
		consumed := min(remaining, t.Supply)
		t.Supply -= consumed
		if err := o.store.SaveTank(ctx, t); err != nil {
			return fmt.Errorf("failed to save tank %s: %w", t.ID, err)
		}
		remaining -= consumed
		o.logger.Debug("Depleted tank",
			"tank_id", t.ID,
			"consumed", consumed,
			"supply", t.Supply)
	}

	if remaining > 0 {
		// The actor's tracked total can exceed the enumerable tanks when
		// external state is inconsistent. Log only.
		o.logger.Warn("Supply depletion exceeded available tanks",
			"actor_id", actorID,
			"kind", kind,
			"requested", amount,
			"unapplied", remaining)
	}
	return nil
}

// manualPrompt is the degraded path: the user always gets an actionable
// message instead of a silent failure.
func (o *Orchestrator) manualPrompt(ctx context.Context, tok token.Token, zn zone.Zone, kind string) error {
	return o.post(ctx, chat.CategoryOOC, fmt.Sprintf(
		"%s entered %s. Make a %s supply roll manually.", tok.Name, zn.Name, kind))
}

func (o *Orchestrator) post(ctx context.Context, category chat.Category, content string) error {
	return o.messenger.Post(ctx, chat.New(o.speaker, category, content))
}
