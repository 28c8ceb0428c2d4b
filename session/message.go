package session

import (
	"encoding/json"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
)

// MessageType enumerates the session store operations. Unrecognized types
// fall through to the extension bag.
type MessageType string

const (
	MessageClear           MessageType = "clear"
	MessageInit            MessageType = "init"
	MessageSetState        MessageType = "setState"
	MessageGetState        MessageType = "getState"
	MessageSetCodeVerifier MessageType = "setCodeVerifier"
	MessageGetCodeVerifier MessageType = "getCodeVerifier"
	MessageSetSessionState MessageType = "setSessionState"
	MessageGetSessionState MessageType = "getSessionState"
	MessageSetNonce        MessageType = "setNonce"
)

// Message is one session store request. Every message is addressed by
// configuration name and answered exactly once on the caller-supplied Reply
// channel; the channel should have capacity 1 so delivery never blocks the
// dispatcher.
type Message struct {
	ID                string          `json:"id,omitempty"`
	ConfigurationName string          `json:"configurationName"`
	Type              MessageType     `json:"type"`
	Data              json.RawMessage `json:"data,omitempty"`

	Reply chan<- Reply `json:"-"`
}

// Reply is the type-specific answer to a message. ConfigurationName is always
// set; Tokens and Status are populated for init replies, Value for the getter
// operations.
type Reply struct {
	ConfigurationName string           `json:"configurationName"`
	Status            Status           `json:"status,omitempty"`
	Tokens            *oauth2.TokenSet `json:"tokens"`
	Value             string           `json:"value,omitempty"`
}

// InitData is the payload of an init message.
type InitData struct {
	Endpoints         oauth2.Endpoints `json:"endpoints"`
	Runtime           RuntimeConfig    `json:"runtime"`
	FromLoginCallback bool             `json:"fromLoginCallback,omitempty"`
}

// ClearData is the payload of a clear message.
type ClearData struct {
	Status Status `json:"status"`
}

// ValueData is the payload of the single-value setter messages.
type ValueData struct {
	Value string `json:"value"`
}

// NonceData is the payload of a setNonce message.
type NonceData struct {
	Nonce string `json:"nonce"`
}
