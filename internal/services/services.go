// package services defines interface Service for interacting with HTTP APIs
//
// are.na v2 REST API
package services

import (
	"context"

	"github.com/desertthunder/arx/internal/models"
)

// PageSize is the fixed per-page item count for channel content requests.
const PageSize = 50

// Service defines the interface for content curation providers (are.na) that expose
// user profiles, channel listings, and paginated channel contents.
//
// No retries are performed at this layer; failures propagate to the caller so the
// comparison engine can decide isolation scope.
type Service interface {
	// User resolves a username to its profile, including the numeric id used in further calls.
	User(ctx context.Context, username string) (*models.UserProfile, error)

	// UserChannels retrieves the full channel listing for a user id.
	UserChannels(ctx context.Context, userID int) ([]models.Channel, error)

	// Channel retrieves metadata for a single channel by slug, including its item count.
	Channel(ctx context.Context, slug string) (*models.Channel, error)

	// ChannelContents retrieves one page of a channel's contents (1-based page, PageSize items per page).
	// Returned blocks carry no channel membership; callers attach channel titles on ingest.
	ChannelContents(ctx context.Context, slug string, page int) ([]models.Block, error)

	// Name returns the name of the service (e.g. "are.na")
	Name() string
}
