/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package session implements the withSession pattern: open a transport,
// run a protocol body, and regardless of outcome perform a best-effort
// protocol-specific cleanup (QUIT, LOGOFF, tree-disconnect, ...) before
// always closing the transport.
package session

import (
	"context"
	"time"

	"github.com/rossgg/portofcall/internal/engine/transport"
)

// maxCleanupDeadline bounds every cleanup action to at most 2 seconds,
// per spec §5.
const maxCleanupDeadline = 2 * time.Second

// Cleanup is invoked after body returns, on every path including panics
// recovered by the caller's own operation boundary. Its own errors are
// swallowed — cleanup exists only to be polite to the peer.
type Cleanup func(tr *transport.Transport)

// Run opens a transport to target, executes body, and always runs
// cleanup (if non-nil) before closing the transport. The transport
// parameter handed to body and cleanup is the same instance; no other
// component may touch it directly.
func Run[T any](ctx context.Context, target transport.Target, cleanup Cleanup, body func(tr *transport.Transport) (T, error)) (result T, err error) {
	tr, openErr := transport.Open(ctx, target)
	if openErr != nil {
		err = openErr
		return
	}
	defer tr.Close()
	defer runCleanup(tr, cleanup)

	result, err = body(tr)
	return
}

// runCleanup clamps the transport's remaining deadline to at most 2s and
// swallows any error the cleanup function returns via panic recovery —
// cleanup code is expected to return errors normally, but a defensive
// recover here ensures a buggy cleanup can never escape and mask the
// operation's real result.
func runCleanup(tr *transport.Transport, cleanup Cleanup) {
	if cleanup == nil {
		return
	}
	defer func() { _ = recover() }()
	remaining := tr.RemainingDeadline()
	if remaining <= 0 || remaining > maxCleanupDeadline {
		remaining = maxCleanupDeadline
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = recover() }()
		cleanup(tr)
	}()
	select {
	case <-done:
	case <-time.After(remaining):
	}
}
