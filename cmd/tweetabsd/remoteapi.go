package main

import (
	"fmt"

	"github.com/pinard/tweetabs"
)

// newRemoteApi would build the concrete client talking to the actual
// remote timeline service (authentication, HTTP transport, rate-limit
// header parsing and all), the one piece this module stops short of:
// every other component here consumes the tweetabs.RemoteApi capability
// without caring who implements it.
//
// Wiring a real client in is a matter of satisfying that interface and
// dropping the replacement in here; nothing else in the runner changes.
func newRemoteApi(cfg *tweetabs.RuntimeConfig) (tweetabs.RemoteApi, error) {
	return nil, fmt.Errorf("no RemoteApi client wired in for instance %q", cfg.Instance)
}
