// package models defines the data model for the arx block comparison service
package models

import "time"

// Block represents a single content item as collected for one user.
//
// Invariant: within one user's run at most one Block exists per ID; repeated
// sightings across channels only extend Channels.
type Block struct {
	ID       int      `json:"blockId"`            // Upstream-assigned identifier, stable across channels
	Source   *string  `json:"source"`             // Canonical URL the block points to, nil when absent
	ImageURL *string  `json:"imageURL"`           // Thumbnail URL, nil when absent
	Channels []string `json:"channels"`           // Titles of the channels containing this block, deduplicated
}

// HasChannel reports whether the block was already sighted in the named channel.
func (b *Block) HasChannel(title string) bool {
	for _, c := range b.Channels {
		if c == title {
			return true
		}
	}
	return false
}

// Channel represents metadata for one of a user's content collections.
type Channel struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"` // Stable identifier usable in further API calls
	UpdatedAt time.Time `json:"updated_at"`
	Published bool      `json:"published"`
	UserID    int       `json:"user_id"` // Owning user
	Length    int       `json:"length"`  // Item count reported by the upstream API
}

// UserProfile represents resolved profile info for an are.na username.
type UserProfile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// Valid reports whether the profile looks like a real are.na user.
//
// The upstream API returns a body without an avatar for unknown usernames.
func (u *UserProfile) Valid() bool {
	return u != nil && u.Avatar != ""
}
