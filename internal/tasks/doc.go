// Package tasks contains the concurrent collection engine and the
// reconciliation step that together answer "which blocks do these two users
// share".
//
// # Collection
//
// For each username the engine resolves the profile, lists the channels,
// filters and sorts them with [SelectChannels], then fetches every page of
// every selected channel. Channels run in consecutive groups of the
// configured concurrency limit; pages within one channel are always fetched
// sequentially. All page tasks for one user ingest into a single shared
// [BlocksMap], which deduplicates by block id and unions channel titles.
//
// # Progress
//
// Every checkpoint (user start, channel start, page ingested, channel done,
// scoped failure) emits a typed event through the [Emitter] immediately. The
// emitter is append-only; the engine never reads back from it. An emit
// failure means the consumer disconnected and stops the run.
//
// # Failure isolation
//
// A failing page or channel produces a channel-scoped error event and
// abandons only that channel's remaining pages. A failure resolving a user's
// profile or channel list produces a user-scoped error event and leaves the
// other user's collection untouched. The final payload is emitted either way.
//
// # Reconciliation
//
// Once both collections are final, [Matcher.Common] matches user2's blocks
// against user1's by exact id first, then by equal source URL (skipping a
// configurable exclusion list of generic platform URLs). Matched blocks merge
// both sides' channel lists.
package tasks
