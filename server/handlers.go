package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-broker/session"
	"github.com/jrsteele09/go-oidc-broker/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ForwardURLHeader names the target URL of a forwarded request.
const ForwardURLHeader = "X-Forward-Url"

// SessionMessageHandler accepts session store messages over HTTP. The reply
// is delivered in the response body; a fatal configuration error (trust
// violation at init) yields no reply payload, mirroring the undelivered
// reply of the message protocol.
func (s *Server) SessionMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg session.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid message", http.StatusBadRequest)
			return
		}

		replyCh := make(chan session.Reply, 1)
		msg.Reply = replyCh
		if err := s.store.Dispatch(msg); err != nil {
			log.Error().Err(err).Str("configuration", msg.ConfigurationName).Msg("message rejected")
			http.Error(w, "message rejected", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		if err := json.NewEncoder(w).Encode(<-replyCh); err != nil {
			log.Error().Err(err).Msg("encode reply")
		}
	}
}

// LoginHandler starts an authorization code flow for a configuration: it
// generates the state, nonce and PKCE verifier, places them in custody, and
// returns the authorization URL. The caller only ever sees the verifier's
// placeholder form.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		configurationName := query.Get("configuration")
		clientID := query.Get("client_id")
		redirectURI := query.Get("redirect_uri")
		if configurationName == "" || clientID == "" || redirectURI == "" {
			http.Error(w, "configuration, client_id and redirect_uri are required", http.StatusBadRequest)
			return
		}

		endpoints, ok := s.store.EndpointsFor(configurationName)
		if !ok {
			http.Error(w, "configuration not initialized", http.StatusConflict)
			return
		}

		state := uuid.New().String()
		nonce := uuid.New().String()
		verifier := oauth2.GenerateVerifier()

		if err := s.dispatchAll(configurationName, map[session.MessageType]any{
			session.MessageSetState:        session.ValueData{Value: state},
			session.MessageSetCodeVerifier: session.ValueData{Value: verifier},
			session.MessageSetNonce:        session.NonceData{Nonce: nonce},
		}); err != nil {
			log.Error().Err(err).Str("configuration", configurationName).Msg("login setup")
			http.Error(w, "login setup failed", http.StatusInternalServerError)
			return
		}

		oauthConfig := &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Scopes:      strings.Fields(query.Get("scope")),
			Endpoint: oauth2.Endpoint{
				AuthURL:  endpoints.AuthorizationEndpoint,
				TokenURL: endpoints.TokenEndpoint,
			},
		}
		authorizationURL := oauthConfig.AuthCodeURL(state,
			oauth2.S256ChallengeOption(verifier),
			oauth2.SetAuthURLParam("nonce", nonce),
		)

		w.Header().Set("Content-Type", contentTypeJSON)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"authorization_url": authorizationURL,
			"state":             state,
			"code_verifier":     token.CodeVerifierPlaceholder(configurationName),
		}); err != nil {
			log.Error().Err(err).Msg("encode login response")
		}
	}
}

// ForwardHandler proxies the incoming request to the URL named by the
// X-Forward-Url header, through the interceptor.
func (s *Server) ForwardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.Header.Get(ForwardURLHeader)
		if target == "" {
			http.Error(w, ForwardURLHeader+" header is required", http.StatusBadRequest)
			return
		}

		outbound, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
		if err != nil {
			http.Error(w, "invalid target url", http.StatusBadRequest)
			return
		}
		copyForwardHeaders(outbound.Header, r.Header)

		resp, err := s.client.Do(outbound)
		if err != nil {
			log.Warn().Err(err).Str("url", target).Msg("forward failed")
			http.Error(w, "forward failed", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			log.Warn().Err(err).Msg("copy forward response")
		}
	}
}

func (s *Server) dispatchAll(configurationName string, messages map[session.MessageType]any) error {
	for messageType, data := range messages {
		payload, err := json.Marshal(data)
		if err != nil {
			return errors.Wrapf(err, "[Server.dispatchAll] marshal %s", messageType)
		}
		replyCh := make(chan session.Reply, 1)
		if err := s.store.Dispatch(session.Message{
			ConfigurationName: configurationName,
			Type:              messageType,
			Data:              payload,
			Reply:             replyCh,
		}); err != nil {
			return errors.Wrapf(err, "[Server.dispatchAll] dispatch %s", messageType)
		}
		<-replyCh
	}
	return nil
}

func copyForwardHeaders(dst, src http.Header) {
	for _, key := range []string{"Content-Type", "Accept", "Oidc-Vanilla"} {
		if value := src.Get(key); value != "" {
			dst.Set(key, value)
		}
	}
}
