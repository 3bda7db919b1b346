// Package services provides typed access to the are.na v2 REST API.
//
// The [Service] interface abstracts the four read operations the comparison
// engine needs: resolving a username, listing a user's channels, fetching a
// channel's metadata, and paging through a channel's contents. [ArenaService]
// is the production implementation; it presents a bearer token on every
// request and applies a configurable per-request timeout.
//
// # Error Taxonomy
//
// Failures are classified with sentinel errors from internal/shared:
//
//   - [shared.ErrTransientFetch] : network failures and non-2xx responses
//   - [shared.ErrMalformedResponse] : bodies that fail to decode
//   - [shared.ErrUserNotFound] : a username that resolves to no account
//
// The client performs no retries and no rate-limit-aware backoff; callers own
// the isolation decision when a request fails.
//
// # Pagination
//
// Channel contents are fetched with a fixed page size of [PageSize] items.
// Pages are 1-based, matching the upstream API.
package services
