// Package dispatch fans a detected zone entry out to its configured
// reactions: a chat notification and an optional type-specific handler.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"zonewatch/pkg/chat"
	"zonewatch/pkg/token"
	"zonewatch/pkg/zone"
)

// HandlerFunc is a type-specific entry reaction. Handlers are registered
// per zone type tag at startup, so adding a zone type is a data addition,
// not a control-flow edit.
type HandlerFunc func(ctx context.Context, tok token.Token, zn zone.Zone, cfg zone.TypeConfig) error

// Dispatcher resolves a zone's type config and runs the configured
// reactions. Handler failures are isolated here: they are logged and never
// abort later entry events.
type Dispatcher struct {
	registry  *zone.Registry
	messenger chat.Messenger
	handlers  map[string]HandlerFunc
	speaker   string
	logger    *slog.Logger
}

// New creates a dispatcher with an empty handler registry.
func New(registry *zone.Registry, messenger chat.Messenger, speaker string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		messenger: messenger,
		handlers:  make(map[string]HandlerFunc),
		speaker:   speaker,
		logger:    logger,
	}
}

// Register binds a handler to a zone type tag, replacing any previous one.
func (d *Dispatcher) Register(zoneType string, h HandlerFunc) {
	d.handlers[zoneType] = h
}

// HandleEntry processes one entry event. The entry notification, when
// configured, is awaited before the type handler runs so message order
// always matches entry order.
func (d *Dispatcher) HandleEntry(ctx context.Context, tok token.Token, zn zone.Zone) error {
	cfg := d.registry.ConfigFor(zn.Flags.ZoneType)

	if cfg.NotifyOnEntry {
		msg := chat.New(d.speaker, chat.CategoryEmote,
			fmt.Sprintf("%s enters %s.", tok.Name, zn.Name))
		if err := d.messenger.Post(ctx, msg); err != nil {
			return fmt.Errorf("failed to post entry notification: %w", err)
		}
	}

	handler, ok := d.handlers[zn.Flags.ZoneType]
	if !ok {
		// Basic and unregistered types need no further action.
		return nil
	}
	if err := handler(ctx, tok, zn, cfg); err != nil {
		d.logger.Error("Zone handler failed",
			"error", err,
			"zone_id", zn.ID,
			"zone_type", zn.Flags.ZoneType,
			"token_id", tok.ID)
	}
	return nil
}
