// Package client is the Go SDK for the Lingua auth server. It wraps the HTTP
// endpoints, caches the token pair in a pluggable store, and collapses
// concurrent refresh attempts into a single network call.
package client
