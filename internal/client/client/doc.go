// Package client contains the client-side building blocks that talk to the
// LifeLink directory service and bootstrap local storage.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the
//     directory operations: Register, Login, GetProfile, GetUserProfile,
//     UpdateProfile, UpdateLocation, ToggleAvailability, SearchDonors and
//     GetDonorStats.
//  2. A REST implementation (see HTTPClient) that attaches the bearer
//     credential from a TokenSource, tags each call with an X-Request-ID and
//     classifies failures.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are matched with errors.Is against ErrUnavailable (no answer),
// ErrUnauthorized (401), ErrRejected (other 4xx) and ErrMalformedResponse.
// Non-2xx answers are returned as *APIError carrying the server message.
//
// # Session expiry
//
// Every 401, whichever operation produced it, is published as
// EventSessionExpired to the functions registered with Subscribe. The
// session subscribes once and performs the forced logout centrally.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation and deadlines.
package client
