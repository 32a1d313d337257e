// Package transition detects the moment a token's containment set gains a
// region. The host's update protocol never says "this token just entered
// this zone"; it fires a before notification while the containment state
// still reflects the pre-move position, and an after notification once the
// move has been applied. The Correlator pairs the two phases through a
// pending-transition table and diffs the snapshots.
package transition

import (
	"context"
	"log/slog"
	"slices"

	"zonewatch/pkg/token"
	"zonewatch/pkg/zone"
)

// ContainmentSource exposes the host-maintained containment set for a
// token: the region ids the token currently overlaps. Reads reflect the
// host's state at the instant of the call, which is exactly the asymmetry
// the Correlator exploits between the two notification phases.
type ContainmentSource interface {
	Containment(tokenID string) []string
}

// RegionResolver looks up a region by id. The second return is false for
// unknown or stale ids.
type RegionResolver interface {
	Region(id string) (zone.Zone, bool)
}

// EntryHandler receives each detected entry event. HandleEntry is awaited
// before the next entry of the same move is dispatched.
type EntryHandler interface {
	HandleEntry(ctx context.Context, tok token.Token, zn zone.Zone) error
}

// Correlator converts the host's before/after token notifications into
// entry events. All state lives in the pending table, keyed per token;
// the gateway read loop is the only caller, so no locking is needed.
type Correlator struct {
	containment ContainmentSource
	regions     RegionResolver
	entries     EntryHandler
	logger      *slog.Logger

	// pending maps token id to the containment snapshot taken before the
	// move was applied. Every insertion is deleted again by AfterUpdate,
	// so the table never outlives a single move cycle.
	pending map[string][]string
}

// NewCorrelator creates a correlator with an empty pending table.
func NewCorrelator(containment ContainmentSource, regions RegionResolver, entries EntryHandler, logger *slog.Logger) *Correlator {
	return &Correlator{
		containment: containment,
		regions:     regions,
		entries:     entries,
		logger:      logger,
		pending:     make(map[string][]string),
	}
}

// BeforeUpdate handles the host's pre-move notification. If the update
// moves the token, the current (still pre-move) containment set is
// snapshotted into the pending table, overwriting any stale entry.
func (c *Correlator) BeforeUpdate(tok token.Token, upd token.Update) {
	if !upd.MovesToken() {
		return
	}
	c.pending[tok.ID] = slices.Clone(c.containment.Containment(tok.ID))
}

// AfterUpdate handles the host's post-move notification. It diffs the
// snapshot taken by BeforeUpdate against the now-current containment set
// and dispatches one entry event per newly gained region. The pending
// entry is deleted on every path that could have written one.
func (c *Correlator) AfterUpdate(ctx context.Context, tok token.Token, upd token.Update) {
	if !upd.MovesToken() {
		// BeforeUpdate would not have written an entry either.
		return
	}

	if !tok.PlayerOwned {
		delete(c.pending, tok.ID)
		return
	}

	prior := c.pending[tok.ID]
	current := c.containment.Containment(tok.ID)
	delete(c.pending, tok.ID)

	for _, id := range entered(prior, current) {
		zn, ok := c.regions.Region(id)
		if !ok {
			// Containment can briefly reference a region the registry no
			// longer knows. Expected and non-fatal.
			c.logger.Debug("Skipping unresolvable region id",
				"region_id", id,
				"token_id", tok.ID)
			continue
		}
		if !zn.Flags.Enabled {
			continue
		}
		if err := c.entries.HandleEntry(ctx, tok, zn); err != nil {
			c.logger.Error("Entry dispatch failed",
				"error", err,
				"region_id", id,
				"token_id", tok.ID)
		}
	}
}

// Pending reports the number of live pending-table entries. Zero after
// every completed move cycle.
func (c *Correlator) Pending() int {
	return len(c.pending)
}

// entered returns current \ prior, preserving the order of current.
// Removals are deliberately never surfaced: a move out of region A and
// into region B yields B only.
func entered(prior, current []string) []string {
	var added []string
	for _, id := range current {
		if !slices.Contains(prior, id) {
			added = append(added, id)
		}
	}
	return added
}
