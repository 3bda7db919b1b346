// Package models defines domain entities for the arx block comparison service.
//
// The package contains lightweight structs representing are.na data as the
// comparison engine sees it:
//   - [Block] : A single content item with the channel titles it was sighted in
//   - [Channel] : Read-only metadata for one of a user's collections
//   - [UserProfile] : Resolved profile info for an are.na username
//
// Blocks are created on first sighting during page processing and live only
// for the duration of one comparison run; nothing in this package is
// persisted. A Channel is fetched once per run and never mutated.
package models
