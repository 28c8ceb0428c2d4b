package trust

import (
	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/pkg/errors"
)

// UntrustedEndpointErr is returned when an authorization server endpoint does
// not match any pattern of the configuration's trust list. Initialization
// fails closed on this error.
var UntrustedEndpointErr = errors.New("untrusted endpoint")

// Matcher evaluates configuration trust lists against URLs. The lists come
// from the external trusted-domain table loaded once at startup; a
// configuration without an entry is treated as fully open (wildcard), which
// is how lazily materialized configurations behave.
type Matcher struct {
	lists map[string]List
}

// NewMatcher creates a Matcher over the given trusted-domain table.
func NewMatcher(lists map[string]List) *Matcher {
	if lists == nil {
		lists = make(map[string]List)
	}
	return &Matcher{lists: lists}
}

// ListFor returns the trust list for a configuration name. Unknown names get
// the open wildcard list.
func (m *Matcher) ListFor(configurationName string) List {
	if list, ok := m.lists[configurationName]; ok {
		return list
	}
	return List{Wildcard()}
}

// CheckEndpoints verifies that each non-empty endpoint URL of the server
// metadata matches at least one trusted pattern of the configuration's trust
// list. The check is skipped entirely when the list is wildcard. A non-match
// is a fatal configuration error.
func (m *Matcher) CheckEndpoints(configurationName string, endpoints oauth2.Endpoints) error {
	list := m.ListFor(configurationName)
	if list.IsWildcard() {
		return nil
	}

	checked := []string{
		endpoints.TokenEndpoint,
		endpoints.RevocationEndpoint,
		endpoints.UserInfoEndpoint,
		endpoints.Issuer,
	}
	for _, url := range checked {
		if url == "" {
			continue
		}
		if !list.Matches(url) {
			return errors.Wrapf(UntrustedEndpointErr, "[Matcher.CheckEndpoints] %q is not in the trusted list of %q", url, configurationName)
		}
	}
	return nil
}

// MatchesRequest reports whether an outbound URL is trusted for bearer
// attachment under the given list. The candidate set is the configuration's
// userInfo endpoint, if any, plus the trust list itself; wildcard matches
// unconditionally.
func MatchesRequest(list List, url, userInfoEndpoint string) bool {
	if list.IsWildcard() {
		return true
	}
	if userInfoEndpoint != "" && Prefix(userInfoEndpoint).Matches(url) {
		return true
	}
	return list.Matches(url)
}
