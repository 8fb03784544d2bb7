// Package testutil holds helpers shared by the integration tests of the
// spares ledger: an HTTP client for the API envelope, an event sink for the
// in-memory bus and polling assertions.
package testutil

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// PollInterval is how often Eventually and Never re-check their condition
const PollInterval = 10 * time.Millisecond

func init() {
	gin.SetMode(gin.TestMode)
}

type helper interface{ Helper() }

// Eventually fails t unless cond holds before within elapses
func Eventually(t require.TestingT, within time.Duration, cond func() bool, msgAndArgs ...any) {
	if h, ok := t.(helper); ok {
		h.Helper()
	}
	timer := time.NewTimer(within)
	defer timer.Stop()
	tick := time.NewTicker(PollInterval)
	defer tick.Stop()

	for !cond() {
		select {
		case <-timer.C:
			require.Fail(t, "condition not met after "+within.String(), msgAndArgs...)
			return
		case <-tick.C:
		}
	}
}

// Never fails t if cond holds at any poll during window
func Never(t require.TestingT, window time.Duration, cond func() bool, msgAndArgs ...any) {
	if h, ok := t.(helper); ok {
		h.Helper()
	}
	timer := time.NewTimer(window)
	defer timer.Stop()
	tick := time.NewTicker(PollInterval)
	defer tick.Stop()

	for {
		if cond() {
			require.Fail(t, "condition unexpectedly held", msgAndArgs...)
			return
		}
		select {
		case <-timer.C:
			return
		case <-tick.C:
		}
	}
}
