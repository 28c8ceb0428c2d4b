package interceptor

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-oidc-broker/session"
	"github.com/jrsteele09/go-oidc-broker/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// TokenNotReadyErr is returned when a held token set does not become
	// valid within the readiness ceiling.
	TokenNotReadyErr = errors.New("token set did not become valid in time")
)

const (
	defaultReadinessTimeout = 2 * time.Minute
	defaultPollInterval     = 200 * time.Millisecond
)

// Transport is the request interceptor. It wraps a base http.RoundTripper
// and inspects every outgoing request/response pair: heartbeat probes are
// answered locally, trusted requests get a bearer credential attached, and
// POST bodies destined for a token or revocation endpoint have their
// placeholder literals substituted with the real secrets in custody. Every
// other request passes through unmodified.
type Transport struct {
	base  http.RoundTripper
	store *session.Store
	codec *token.Codec
	cache *Cache

	readinessTimeout    time.Duration
	pollInterval        time.Duration
	heartbeatIterations int
	heartbeatSpacing    func() time.Duration
	nowTime             func() time.Time
}

// TransportOption defines a function type to modify the Transport instance.
type TransportOption func(*Transport)

// WithBase sets the underlying RoundTripper requests are forwarded through.
func WithBase(base http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.base = base
	}
}

// WithCodec sets the placeholder codec applied to token endpoint responses.
func WithCodec(codec *token.Codec) TransportOption {
	return func(t *Transport) {
		t.codec = codec
	}
}

// WithReadinessTimeout bounds the bearer-attachment wait for a token set to
// become valid.
func WithReadinessTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) {
		t.readinessTimeout = timeout
	}
}

// WithPollInterval sets the cooperative polling interval of the
// bearer-attachment wait (primarily for testing).
func WithPollInterval(interval time.Duration) TransportOption {
	return func(t *Transport) {
		t.pollInterval = interval
	}
}

// WithHeartbeat overrides the keep-alive loop bounds (primarily for testing).
func WithHeartbeat(iterations int, spacing func() time.Duration) TransportOption {
	return func(t *Transport) {
		t.heartbeatIterations = iterations
		t.heartbeatSpacing = spacing
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) TransportOption {
	return func(t *Transport) {
		t.nowTime = nowFunc
	}
}

// NewTransport creates a Transport over the given session store.
func NewTransport(store *session.Store, options ...TransportOption) *Transport {
	t := &Transport{
		base:                http.DefaultTransport,
		store:               store,
		codec:               token.NewCodec(),
		cache:               NewCache(),
		readinessTimeout:    defaultReadinessTimeout,
		pollInterval:        defaultPollInterval,
		heartbeatIterations: defaultHeartbeatIterations,
		heartbeatSpacing:    defaultHeartbeatSpacing,
		nowTime:             time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Cache returns the heartbeat cache.
func (t *Transport) Cache() *Cache { return t.cache }

// RoundTrip implements http.RoundTripper. Exactly one of the interception
// cases applies per request; the default is passthrough.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Path, KeepAliveResourceName) {
		return t.heartbeat(req)
	}

	url := req.URL.String()

	if req.Method == http.MethodPost {
		if hits := t.store.EndpointHits(url); len(hits) > 0 {
			return t.roundTripEndpointPost(req, hits)
		}
	}

	if name, ok := t.store.RouteBearer(url); ok {
		return t.roundTripBearer(req, name)
	}

	return t.base.RoundTrip(req)
}

// roundTripEndpointPost handles a POST to a token or revocation endpoint:
// placeholder literals in the body are substituted with the real secrets,
// the request is forwarded, and token endpoint responses are run through the
// placeholder codec before being returned.
func (t *Transport) roundTripEndpointPost(req *http.Request, hits []session.EndpointHit) (*http.Response, error) {
	body, err := readRequestBody(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Transport.RoundTrip] read request body")
	}

	substituted := false
	owner := session.EndpointHit{}
	for _, hit := range hits {
		if !token.ContainsSecretPlaceholder(body, hit.Name) {
			continue
		}
		secrets, ok := t.store.SecretsFor(hit.Name)
		if !ok {
			// Latent defect kept as documented behaviour: an unresolved
			// placeholder is forwarded as-is.
			log.Warn().Str("configuration", hit.Name).Msg("placeholder left unresolved, no secrets in custody")
			continue
		}
		body, _ = token.ReplaceSecrets(body, hit.Name, secrets)
		substituted = true
		owner = hit
	}

	if !substituted && strings.Contains(body, "code_verifier=") {
		for _, name := range t.store.PendingCodeExchanges() {
			verifier, ok := t.store.CodeVerifierFor(name)
			if !ok {
				continue
			}
			rewritten, replaced := token.ReplaceCodeVerifier(body, name, verifier)
			if !replaced {
				continue
			}
			body = rewritten
			substituted = true
			owner = session.EndpointHit{Name: name}
			t.store.ClearPendingCodeExchange(name)
			break
		}
	}

	outbound := req.Clone(req.Context())
	setRequestBody(outbound, body)

	resp, err := t.base.RoundTrip(outbound)
	if err != nil {
		return nil, err
	}

	if !substituted || owner.Revocation {
		return resp, nil
	}
	return t.hideResponseTokens(resp, owner.Name)
}

// hideResponseTokens applies the placeholder codec to a successful token
// endpoint response, stores the admitted token set, and returns the
// secret-free body to the caller. A validation failure rejects the
// intercepted call and leaves the store untouched.
func (t *Transport) hideResponseTokens(resp *http.Response, configurationName string) (*http.Response, error) {
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	rawBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "[Transport.RoundTrip] read token response body")
	}

	storedTokens, _ := t.store.TokensFor(configurationName)
	storedNonce, hasNonce := t.store.NonceFor(configurationName)
	endpoints, _ := t.store.EndpointsFor(configurationName)
	runtime, _ := t.store.RuntimeFor(configurationName)

	tokens, exposed, err := t.codec.HideTokens(configurationName, token.HideInput{
		Body:           rawBody,
		StoredTokens:   storedTokens,
		StoredNonce:    storedNonce,
		HasStoredNonce: hasNonce,
		Issuer:         endpoints.Issuer,
		RenewMode:      runtime.TokenRenewMode,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Transport.RoundTrip] hide tokens")
	}

	if err := t.store.SetTokens(configurationName, tokens, session.StatusLoggedIn); err != nil {
		return nil, errors.Wrap(err, "[Transport.RoundTrip] store tokens")
	}

	log.Debug().Str("configuration", configurationName).Int64("expires_at", tokens.ExpiresAt).Msg("token set admitted")

	resp.Body = io.NopCloser(bytes.NewReader(exposed))
	resp.ContentLength = int64(len(exposed))
	resp.Header.Del("Content-Length")
	return resp, nil
}

// roundTripBearer waits until the selected configuration's token set is
// valid, then forwards the request with a bearer authorization header built
// from the real access token. The wait polls cooperatively and is bounded by
// the request's own context plus the readiness ceiling.
func (t *Transport) roundTripBearer(req *http.Request, configurationName string) (*http.Response, error) {
	ctx := req.Context()
	deadline := time.NewTimer(t.readinessTimeout)
	defer deadline.Stop()

	for {
		tokens, ok := t.store.TokensFor(configurationName)
		if !ok {
			// Tokens were cleared while waiting; nothing to attach.
			return t.base.RoundTrip(req)
		}
		if tokens.ExpiresAt > t.nowTime().Unix() {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "[Transport.RoundTrip] bearer wait cancelled")
		case <-deadline.C:
			return nil, errors.Wrapf(TokenNotReadyErr, "[Transport.RoundTrip] %q", configurationName)
		case <-time.After(t.pollInterval):
		}
	}

	secrets, ok := t.store.SecretsFor(configurationName)
	if !ok {
		return t.base.RoundTrip(req)
	}

	outbound := req.Clone(ctx)
	outbound.Header.Set("Authorization", "Bearer "+secrets.AccessToken)
	if runtime, ok := t.store.RuntimeFor(configurationName); ok && runtime.ConvertAllRequestsToCors {
		outbound.Header.Set("Sec-Fetch-Mode", "cors")
	}
	return t.base.RoundTrip(outbound)
}

func readRequestBody(req *http.Request) (string, error) {
	if req.Body == nil {
		return "", nil
	}
	defer req.Body.Close()
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func setRequestBody(req *http.Request, body string) {
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
}

func staticJSONResponse(req *http.Request, body string) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", "application/json; charset=utf-8")
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
