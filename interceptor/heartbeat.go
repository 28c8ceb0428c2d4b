package interceptor

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// KeepAliveResourceName is the reserved resource name that identifies a
	// heartbeat probe.
	KeepAliveResourceName = "OidcKeepAliveServiceWorker.json"

	// KeepAliveOptOutHeader suppresses the background refresh loop when
	// present on a heartbeat probe.
	KeepAliveOptOutHeader = "Oidc-Vanilla"

	// keepAliveCacheEntry is the named cache entry the loop refreshes.
	keepAliveCacheEntry = "oidc"

	defaultHeartbeatIterations = 240
)

// defaultHeartbeatSpacing returns a randomized 1-2 second delay between
// refresh iterations.
func defaultHeartbeatSpacing() time.Duration {
	return time.Second + time.Duration(rand.Int64N(int64(time.Second)))
}

// heartbeat answers a keep-alive probe with a static success payload and,
// unless the opt-out marker header is present, starts the bounded background
// refresh loop. The loop is purely a liveness signal and never user-visible.
func (t *Transport) heartbeat(req *http.Request) (*http.Response, error) {
	if req.Header.Get(KeepAliveOptOutHeader) == "" {
		go t.keepAlive(uuid.New().String())
	}
	return staticJSONResponse(req, "{}"), nil
}

// keepAlive periodically refreshes the named cache entry, then terminates.
// It self-terminates after the bounded iteration count; there is no external
// cancellation hook beyond the initial opt-out check.
func (t *Transport) keepAlive(runID string) {
	for i := 0; i < t.heartbeatIterations; i++ {
		time.Sleep(t.heartbeatSpacing())
		t.cache.Refresh(keepAliveCacheEntry)
	}
	log.Debug().Str("run_id", runID).Int("iterations", t.heartbeatIterations).Msg("keep-alive loop finished")
}
