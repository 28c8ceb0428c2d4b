package session

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/jrsteele09/go-oidc-broker/token"
	"github.com/jrsteele09/go-oidc-broker/trust"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	ConfigurationNotFoundErr = errors.New("configuration not found")
	MissingReplyChannelErr   = errors.New("message has no reply channel")
)

// Store holds all configuration records and serves the message protocol.
// Records are created and removed through explicit calls only; plain lookups
// never materialize anything. All state is process-lifetime and in-memory.
type Store struct {
	mu             sync.RWMutex
	configurations map[string]*Configuration
	matcher        *trust.Matcher
}

// NewStore creates a Store with the given trust matcher.
func NewStore(matcher *trust.Matcher) *Store {
	if matcher == nil {
		matcher = trust.NewMatcher(nil)
	}
	return &Store{
		configurations: make(map[string]*Configuration),
		matcher:        matcher,
	}
}

// Matcher returns the trust matcher the store was built with.
func (s *Store) Matcher() *trust.Matcher { return s.matcher }

// Create materializes an empty record for the configuration name. Creating an
// existing name is a no-op. Unknown names carry the open wildcard trust list,
// which is the matcher's default for unlisted configurations.
func (s *Store) Create(configurationName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configurations[configurationName]; !ok {
		s.configurations[configurationName] = newConfiguration(configurationName)
	}
}

// Delete removes a configuration record.
func (s *Store) Delete(configurationName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configurations, configurationName)
}

// Names returns the configuration names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.configurations))
	for name := range s.configurations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch handles one message and delivers exactly one reply on the
// message's reply channel. Unknown configuration names are materialized
// before the operation proceeds. A trust violation during init is a fatal
// configuration error: no reply is delivered and the error is returned.
func (s *Store) Dispatch(msg Message) error {
	if msg.Reply == nil {
		return errors.Wrap(MissingReplyChannelErr, "[Store.Dispatch]")
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	log.Debug().
		Str("message_id", msg.ID).
		Str("configuration", msg.ConfigurationName).
		Str("type", string(msg.Type)).
		Msg("session message")

	s.Create(msg.ConfigurationName)

	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.configurations[msg.ConfigurationName]

	reply := Reply{ConfigurationName: cfg.Name}

	switch msg.Type {
	case MessageClear:
		var data ClearData
		if err := unmarshalData(msg.Data, &data); err != nil {
			return errors.Wrap(err, "[Store.Dispatch] clear")
		}
		cfg.Tokens = nil
		cfg.State = ""
		cfg.CodeVerifier = ""
		cfg.Status = data.Status

	case MessageInit:
		var data InitData
		if err := unmarshalData(msg.Data, &data); err != nil {
			return errors.Wrap(err, "[Store.Dispatch] init")
		}
		if err := s.matcher.CheckEndpoints(cfg.Name, data.Endpoints); err != nil {
			// Fail closed: the caller's init stalls undelivered rather than
			// operating against an untrusted authorization server.
			log.Error().Err(err).Str("configuration", cfg.Name).Msg("init rejected")
			return err
		}
		endpoints := data.Endpoints
		cfg.Endpoints = &endpoints
		cfg.Runtime = data.Runtime
		if data.FromLoginCallback {
			cfg.PendingCodeExchange = true
		}
		reply.Status = cfg.Status
		reply.Tokens = token.Redact(cfg.Name, cfg.Tokens)

	case MessageSetState:
		var data ValueData
		if err := unmarshalData(msg.Data, &data); err != nil {
			return errors.Wrap(err, "[Store.Dispatch] setState")
		}
		cfg.State = data.Value

	case MessageGetState:
		reply.Value = cfg.State

	case MessageSetCodeVerifier:
		var data ValueData
		if err := unmarshalData(msg.Data, &data); err != nil {
			return errors.Wrap(err, "[Store.Dispatch] setCodeVerifier")
		}
		cfg.CodeVerifier = data.Value

	case MessageGetCodeVerifier:
		// The real verifier never leaves the store; callers only see its
		// placeholder form.
		if cfg.CodeVerifier != "" {
			reply.Value = token.CodeVerifierPlaceholder(cfg.Name)
		}

	case MessageSetSessionState:
		var data ValueData
		if err := unmarshalData(msg.Data, &data); err != nil {
			return errors.Wrap(err, "[Store.Dispatch] setSessionState")
		}
		cfg.SessionState = data.Value

	case MessageGetSessionState:
		reply.Value = cfg.SessionState

	case MessageSetNonce:
		var data NonceData
		if err := unmarshalData(msg.Data, &data); err != nil {
			return errors.Wrap(err, "[Store.Dispatch] setNonce")
		}
		cfg.Nonce = &Nonce{Value: data.Nonce}

	default:
		// Namespaced extension point: the payload is stored verbatim under
		// the message type.
		cfg.Extensions[string(msg.Type)] = msg.Data
	}

	msg.Reply <- reply
	return nil
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// EndpointHit names a configuration whose token or revocation endpoint
// equals an outbound URL.
type EndpointHit struct {
	Name       string
	Revocation bool
}

// EndpointHits returns every configuration whose token or revocation
// endpoint equals the URL, in name order.
func (s *Store) EndpointHits(url string) []EndpointHit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []EndpointHit
	for _, name := range s.sortedNamesLocked() {
		cfg := s.configurations[name]
		if cfg.Endpoints == nil {
			continue
		}
		switch url {
		case cfg.Endpoints.TokenEndpoint:
			hits = append(hits, EndpointHit{Name: name})
		case cfg.Endpoints.RevocationEndpoint:
			hits = append(hits, EndpointHit{Name: name, Revocation: true})
		}
	}
	return hits
}

// RouteBearer selects the configuration whose trust list matches the
// outbound URL for bearer attachment. Configurations whose token or
// revocation endpoint equals the URL are skipped (those take the body
// substitution path). The first trust match decides: it is selected only if
// it currently holds tokens, otherwise routing yields no match.
func (s *Store) RouteBearer(url string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range s.sortedNamesLocked() {
		cfg := s.configurations[name]
		if cfg.Endpoints == nil {
			continue
		}
		if url == cfg.Endpoints.TokenEndpoint || (cfg.Endpoints.RevocationEndpoint != "" && url == cfg.Endpoints.RevocationEndpoint) {
			continue
		}
		if !trust.MatchesRequest(s.matcher.ListFor(name), url, cfg.Endpoints.UserInfoEndpoint) {
			continue
		}
		if cfg.Tokens == nil {
			return "", false
		}
		return name, true
	}
	return "", false
}

// TokensFor returns a copy of the configuration's stored token set.
func (s *Store) TokensFor(configurationName string) (*oauth2.TokenSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok || cfg.Tokens == nil {
		return nil, false
	}
	return cfg.Tokens.Clone(), true
}

// SecretsFor returns the real access and refresh tokens held for a
// configuration, for substitution into an outgoing request only.
func (s *Store) SecretsFor(configurationName string) (token.Secrets, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok || cfg.Tokens == nil {
		return token.Secrets{}, false
	}
	return token.Secrets{
		AccessToken:  cfg.Tokens.AccessToken,
		RefreshToken: cfg.Tokens.RefreshToken,
	}, true
}

// RuntimeFor returns the configuration's runtime settings.
func (s *Store) RuntimeFor(configurationName string) (RuntimeConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok {
		return RuntimeConfig{}, false
	}
	return cfg.Runtime, true
}

// EndpointsFor returns a copy of the configuration's server metadata.
func (s *Store) EndpointsFor(configurationName string) (oauth2.Endpoints, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok || cfg.Endpoints == nil {
		return oauth2.Endpoints{}, false
	}
	return *cfg.Endpoints, true
}

// NonceFor returns the stored nonce value and its presence marker.
func (s *Store) NonceFor(configurationName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok || cfg.Nonce == nil {
		return "", false
	}
	return cfg.Nonce.Value, true
}

// SetTokens stores a token set and status for a configuration. The overall
// expiry of the set is always derived by the codec, never set by a caller.
func (s *Store) SetTokens(configurationName string, tokens *oauth2.TokenSet, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configurations[configurationName]
	if !ok {
		return errors.Wrapf(ConfigurationNotFoundErr, "[Store.SetTokens] %q", configurationName)
	}
	cfg.Tokens = tokens
	cfg.Status = status
	return nil
}

// ExtensionFor returns the stored extension payload for a message type.
func (s *Store) ExtensionFor(configurationName, messageType string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok {
		return nil, false
	}
	payload, ok := cfg.Extensions[messageType]
	return payload, ok
}

// PendingCodeExchanges returns the names of configurations currently
// completing a login callback, in name order.
func (s *Store) PendingCodeExchanges() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for _, name := range s.sortedNamesLocked() {
		if s.configurations[name].PendingCodeExchange {
			names = append(names, name)
		}
	}
	return names
}

// CodeVerifierFor returns the real code verifier held for a configuration,
// for substitution into an outgoing request only.
func (s *Store) CodeVerifierFor(configurationName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configurations[configurationName]
	if !ok || cfg.CodeVerifier == "" {
		return "", false
	}
	return cfg.CodeVerifier, true
}

// ClearPendingCodeExchange clears the login-callback marker once the code
// exchange request has been substituted.
func (s *Store) ClearPendingCodeExchange(configurationName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configurations[configurationName]; ok {
		cfg.PendingCodeExchange = false
	}
}

func (s *Store) sortedNamesLocked() []string {
	names := make([]string, 0, len(s.configurations))
	for name := range s.configurations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
