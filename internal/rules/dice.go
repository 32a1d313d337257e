package rules

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"zonewatch/pkg/chat"
)

// SupplyRollRequest parameterizes a supply roll: zero base dice and one
// stress die per remaining supply unit. Blind rolls are whispered to the
// GM instead of posted openly.
type SupplyRollRequest struct {
	ActorName string
	Label     string
	Base      int
	Stress    int
	Blind     bool
}

// SupplyRollResult is the structured outcome of a supply roll. Ones is the
// count of stress dice that came up 1: each such face consumes one unit.
type SupplyRollResult struct {
	Results []int
	Ones    int
}

// Roller performs a supply roll and returns its outcome directly from the
// call, so callers never read ambient engine state.
type Roller interface {
	SupplyRoll(ctx context.Context, req SupplyRollRequest) (SupplyRollResult, error)
}

// StressRoller rolls six-sided stress dice. Deterministic with respect to
// the seed, so tests can pin outcomes.
type StressRoller struct {
	rng       *rand.Rand
	messenger chat.Messenger
	speaker   string
}

// NewStressRoller creates a roller. A zero seed picks a time-based one.
func NewStressRoller(seed int64, messenger chat.Messenger, speaker string) *StressRoller {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &StressRoller{
		rng:       rand.New(rand.NewSource(seed)),
		messenger: messenger,
		speaker:   speaker,
	}
}

// SupplyRoll rolls the requested stress dice, posts a roll summary to chat
// and returns the structured result.
func (r *StressRoller) SupplyRoll(ctx context.Context, req SupplyRollRequest) (SupplyRollResult, error) {
	if req.Stress <= 0 {
		return SupplyRollResult{}, fmt.Errorf("supply roll requires at least one stress die, got %d", req.Stress)
	}

	result := SupplyRollResult{Results: make([]int, req.Stress)}
	for i := range result.Results {
		face := r.rng.Intn(6) + 1
		result.Results[i] = face
		if face == 1 {
			result.Ones++
		}
	}

	category := chat.CategoryOOC
	if req.Blind {
		category = chat.CategoryWhisper
	}
	msg := chat.New(r.speaker, category, formatRoll(req, result))
	if err := r.messenger.Post(ctx, msg); err != nil {
		return SupplyRollResult{}, fmt.Errorf("failed to post roll summary: %w", err)
	}

	return result, nil
}

func formatRoll(req SupplyRollRequest, result SupplyRollResult) string {
	faces := make([]string, len(result.Results))
	for i, f := range result.Results {
		faces[i] = fmt.Sprint(f)
	}
	return fmt.Sprintf("%s %s: [%s], %d consumed",
		req.ActorName, req.Label, strings.Join(faces, " "), result.Ones)
}
