package gateway

import (
	"encoding/json"

	"zonewatch/pkg/chat"
	"zonewatch/pkg/token"
	"zonewatch/pkg/zone"
)

// Message types on the host gateway socket.
const (
	TypeWelcome       = "welcome"
	TypeTokenPre      = "token.preUpdate"
	TypeTokenUpdated  = "token.updated"
	TypeRegionSync    = "region.sync"
	TypeRegionRemoved = "region.removed"
	TypeContainment   = "containment"
	TypeChatPost      = "chat.post"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// WelcomeMessage is the host's handshake, announcing its active ruleset.
type WelcomeMessage struct {
	Type    string `json:"type"`
	Ruleset string `json:"ruleset"`
}

// TokenMessage carries both update phases. Regions is the token's
// containment set as the host sees it at the instant the message is sent:
// pre-move for token.preUpdate, post-move for token.updated.
type TokenMessage struct {
	Type    string       `json:"type"`
	Token   token.Token  `json:"token"`
	Changes token.Update `json:"changes"`
	Regions []string     `json:"regions"`
}

// RegionSyncMessage upserts regions into the mirrored registry.
type RegionSyncMessage struct {
	Type    string      `json:"type"`
	Regions []zone.Zone `json:"regions"`
}

// RegionRemovedMessage drops a region from the mirrored registry.
type RegionRemovedMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ContainmentMessage replaces a token's containment set outside a move,
// e.g. after a scene load.
type ContainmentMessage struct {
	Type    string   `json:"type"`
	TokenID string   `json:"token_id"`
	Regions []string `json:"regions"`
}

// ChatPostMessage is the outbound envelope for a chat message.
type ChatPostMessage struct {
	Type    string       `json:"type"`
	Message chat.Message `json:"message"`
}
