package tasks

import (
	"sort"

	"github.com/desertthunder/arx/internal/models"
)

// SelectChannels filters a user's full channel list down to the channels a
// comparison run will process.
//
// Only published channels owned by userID are retained. The result is sorted
// most-recently-updated first (ties keep upstream listing order) and truncated
// to max entries; max <= 0 means no truncation. Position in the returned slice
// becomes the externally visible 1-based channel index.
func SelectChannels(channels []models.Channel, userID, max int) []models.Channel {
	selected := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.Published && ch.UserID == userID {
			selected = append(selected, ch)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].UpdatedAt.After(selected[j].UpdatedAt)
	})

	if max > 0 && len(selected) > max {
		selected = selected[:max]
	}

	return selected
}
