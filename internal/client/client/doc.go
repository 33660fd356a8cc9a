// Package client contains the client-side transport for TuneKeeper.
//
// GRPCClient talks to the auth service, keeps the current session and
// refresh tokens in memory, attaches the session token to protected calls
// and, when the server rejects it as invalid, refreshes the pair once and
// retries. gRPC status codes are mapped to the sentinel errors in errors.go.
//
// InitDatabase opens the local SQLite store and applies its migrations.
package client
