// Package gateway maintains the websocket session with the host platform:
// it mirrors the host's region registry and per-token containment sets,
// feeds token update notifications to the correlator, and delivers chat
// messages back to the host.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"zonewatch/pkg/chat"
	"zonewatch/pkg/token"
	"zonewatch/pkg/zone"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// TokenHandler receives the two update phases, in host order.
type TokenHandler interface {
	BeforeUpdate(tok token.Token, upd token.Update)
	AfterUpdate(ctx context.Context, tok token.Token, upd token.Update)
}

// Client is the host gateway session. The read loop is the only writer of
// the mirrored maps and the only caller of the token handler, so handler
// code runs single-threaded.
type Client struct {
	url     string
	logger  *slog.Logger
	handler TokenHandler

	conn *websocket.Conn
	out  chan []byte

	ruleset     string
	regions     map[string]zone.Zone
	containment map[string][]string
}

// NewClient creates a client for the given ws:// URL. Bind must be called
// before Run.
func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		url:         url,
		logger:      logger,
		out:         make(chan []byte, 64),
		regions:     make(map[string]zone.Zone),
		containment: make(map[string][]string),
	}
}

// Bind attaches the token handler. Separate from NewClient because the
// correlator needs the client as its containment source.
func (c *Client) Bind(handler TokenHandler) {
	c.handler = handler
}

// Containment returns the mirrored containment set for a token.
func (c *Client) Containment(tokenID string) []string {
	return c.containment[tokenID]
}

// Region resolves a mirrored region by id.
func (c *Client) Region(id string) (zone.Zone, bool) {
	zn, ok := c.regions[id]
	return zn, ok
}

// ActiveRuleset returns the ruleset announced in the host's welcome
// message. Empty until the handshake completes.
func (c *Client) ActiveRuleset() string {
	return c.ruleset
}

// Post queues a chat message for delivery to the host. Implements
// chat.Messenger; ordering follows call order because the out channel is
// drained by a single writer.
func (c *Client) Post(ctx context.Context, msg chat.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(ChatPostMessage{Type: TypeChatPost, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}
	select {
	case c.out <- data:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chat post cancelled: %w", ctx.Err())
	}
}

// Run dials the host and processes messages until the connection drops or
// the context is cancelled. Callers are expected to restart it with
// backoff.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial host gateway: %w", err)
	}
	c.conn = conn
	defer conn.Close()

	c.logger.Info("Connected to host gateway", "url", c.url)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Writer goroutine.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-c.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					c.logger.Error("Failed to write to host gateway", "error", err)
					cancel()
					return
				}
			}
		}
	}()

	// Reader loop.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("host gateway read failed: %w", err)
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Client) handleMessage(ctx context.Context, msg []byte) {
	base, err := DecodeBase(msg)
	if err != nil {
		c.logger.Warn("Undecodable gateway message", "error", err)
		return
	}

	switch base.Type {
	case TypeWelcome:
		var m WelcomeMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.logger.Warn("Bad welcome message", "error", err)
			return
		}
		c.ruleset = m.Ruleset
		c.logger.Info("Host welcome received", "ruleset", m.Ruleset)

	case TypeTokenPre:
		var m TokenMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.logger.Warn("Bad token message", "error", err, "type", base.Type)
			return
		}
		// Containment in a preUpdate still reflects the pre-move state.
		c.containment[m.Token.ID] = m.Regions
		if c.handler != nil {
			c.handler.BeforeUpdate(m.Token, m.Changes)
		}

	case TypeTokenUpdated:
		var m TokenMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.logger.Warn("Bad token message", "error", err, "type", base.Type)
			return
		}
		c.containment[m.Token.ID] = m.Regions
		if c.handler != nil {
			c.handler.AfterUpdate(ctx, m.Token, m.Changes)
		}

	case TypeRegionSync:
		var m RegionSyncMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.logger.Warn("Bad region sync message", "error", err)
			return
		}
		for _, zn := range m.Regions {
			c.regions[zn.ID] = zn
		}

	case TypeRegionRemoved:
		var m RegionRemovedMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.logger.Warn("Bad region removed message", "error", err)
			return
		}
		delete(c.regions, m.ID)

	case TypeContainment:
		var m ContainmentMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			c.logger.Warn("Bad containment message", "error", err)
			return
		}
		c.containment[m.TokenID] = m.Regions

	default:
		c.logger.Debug("Ignoring gateway message", "type", base.Type)
	}
}
