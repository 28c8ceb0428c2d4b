package session

import (
	"encoding/json"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
)

// Status is the connection status of a configuration.
type Status string

const (
	StatusLogged               Status = "LOGGED"
	StatusLoggedIn             Status = "LOGGED_IN"
	StatusLoggedOut            Status = "LOGGED_OUT"
	StatusNotConnected         Status = "NOT_CONNECTED"
	StatusLogoutFromAnotherTab Status = "LOGOUT_FROM_ANOTHER_TAB"
	StatusSessionLost          Status = "SESSION_LOST"
	StatusRequireSyncTokens    Status = "REQUIRE_SYNC_TOKENS"
	StatusForceRefresh         Status = "FORCE_REFRESH"
	StatusNone                 Status = "NONE"
)

// Nonce wraps the per-login nonce in a presence marker: a nil *Nonce means no
// nonce is held, an empty value is still a held nonce. A nonce remains stored
// after successful validation until explicitly replaced.
type Nonce struct {
	Value string `json:"nonce"`
}

// RuntimeConfig is the per-configuration renewal and request behaviour
// supplied by the host application over init.
type RuntimeConfig struct {
	TokenRenewMode           oauth2.RenewMode `json:"token_renew_mode,omitempty"`
	ConvertAllRequestsToCors bool             `json:"convert_all_requests_to_cors,omitempty"`
}

// Configuration is the per-name mutable record held by the store. Real
// secrets (tokens, nonce, code verifier) live here and are never observable
// outside the store except inside the outgoing requests they are substituted
// into.
type Configuration struct {
	Name         string
	Tokens       *oauth2.TokenSet
	Status       Status
	State        string
	CodeVerifier string
	Nonce        *Nonce
	Endpoints    *oauth2.Endpoints
	Runtime      RuntimeConfig
	SessionState string

	// Extensions is the namespaced escape hatch for unrecognized message
	// types, keyed by message type.
	Extensions map[string]json.RawMessage

	// PendingCodeExchange marks a configuration whose most recent init
	// originated from a login-callback/resume flow and whose code exchange
	// has not completed yet.
	PendingCodeExchange bool
}

func newConfiguration(name string) *Configuration {
	return &Configuration{
		Name:       name,
		Status:     StatusNone,
		Extensions: make(map[string]json.RawMessage),
	}
}
