package client

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrRefreshInFlight signals that another refresh call is already running.
// Callers should treat it as "no credential right now" and retry on their
// next read rather than assume logout.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// Coordinator is a single-flight guard over the network refresh call: of any
// set of concurrent callers, exactly one performs the request. The rest are
// rejected immediately instead of queued, so a refresh storm collapses into
// one round trip.
type Coordinator struct {
	client *Client
	store  TokenStore

	inFlight atomic.Bool
}

// NewCoordinator wires a Coordinator over the given client and token store.
func NewCoordinator(client *Client, store TokenStore) *Coordinator {
	return &Coordinator{client: client, store: store}
}

// Refresh rotates the stored refresh secret and persists the new pair.
// It returns the fresh access token, or ErrRefreshInFlight when another call
// holds the guard. The guard is released on every exit path.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrRefreshInFlight
	}
	defer c.inFlight.Store(false)

	secret, err := c.store.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", ErrUnauthorized
	}

	pair, err := c.client.Refresh(ctx, secret)
	if err != nil {
		return "", err
	}

	if err := c.store.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}
