package tasks

import "github.com/desertthunder/arx/internal/models"

// DefaultExcludedSources lists generic destination URLs that never count as
// evidence of a shared source. Many unrelated blocks legitimately point at
// the home or feed page of a large platform, so source equality on these
// URLs is meaningless.
var DefaultExcludedSources = []string{
	"https://www.instagram.com/",
	"https://www.twitter.com/",
	"https://twitter.com/home",
	"https://www.tumblr.com/dashboard",
	"https://www.tumblr.com/explore/recommended-for-you",
	"https://www.tumblr.com/likes",
}

// Matcher computes the common-block set between two users' finalized
// collections using exact block-id matching with a source-URL fallback.
//
// The exclusion set is injected at construction so the matching algorithm
// stays testable independent of the list's contents.
type Matcher struct {
	excluded map[string]struct{}
}

// NewMatcher creates a Matcher with the given source-URL exclusion list.
func NewMatcher(excluded []string) *Matcher {
	set := make(map[string]struct{}, len(excluded))
	for _, url := range excluded {
		set[url] = struct{}{}
	}
	return &Matcher{excluded: set}
}

// Excluded reports whether a source URL is barred from fallback matching.
func (m *Matcher) Excluded(url string) bool {
	_, ok := m.excluded[url]
	return ok
}

// Common returns the blocks judged shared between the two collections.
//
// Each user2 block is matched first by block id against user1, then, when the
// block has a non-excluded source URL, by a linear scan over user1's blocks
// for an equal source. First match wins. Matched blocks keep user2's id,
// source, and image, with the channel lists of both sides unioned. Blocks with
// no match are dropped. The result follows user2's iteration order, so running
// Common twice on the same inputs yields identical output.
func (m *Matcher) Common(user1, user2 []models.Block) []models.Block {
	byID := make(map[int]*models.Block, len(user1))
	for i := range user1 {
		byID[user1[i].ID] = &user1[i]
	}

	common := make([]models.Block, 0)
	for _, block := range user2 {
		counterpart := byID[block.ID]

		if counterpart == nil && block.Source != nil && !m.Excluded(*block.Source) {
			for i := range user1 {
				if user1[i].Source != nil && *user1[i].Source == *block.Source {
					counterpart = &user1[i]
					break
				}
			}
		}

		if counterpart == nil {
			continue
		}

		common = append(common, models.Block{
			ID:       block.ID,
			Source:   block.Source,
			ImageURL: block.ImageURL,
			Channels: unionChannels(counterpart.Channels, block.Channels),
		})
	}

	return common
}

// unionChannels merges two channel lists preserving first-seen order.
func unionChannels(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, title := range list {
			if _, ok := seen[title]; ok {
				continue
			}
			seen[title] = struct{}{}
			merged = append(merged, title)
		}
	}
	return merged
}
