// Package client talks to the luckywData HTTP API on behalf of the CLI.
//
// # Overview
//
// Client is the transport-agnostic contract (Register, Login, Health);
// HTTPClient implements it over net/http and JSON.
//
// # Error Handling
//
// Non-2xx responses become *APIError, which carries the server's message and
// code and matches one of the sentinels through errors.Is: ErrBadRequest,
// ErrUnauthorized, ErrNotFound. Transport failures match ErrUnavailable.
//
// All operations accept context.Context and honor cancellation.
package client
