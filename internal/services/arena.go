// are.na API implementation of [Service]
//
// are.na API response types based on https://dev.are.na/documentation/channels
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/arx/internal/models"
	"github.com/desertthunder/arx/internal/shared"
)

const arenaBaseURL = "https://api.are.na/v2"

// ArenaUser represents an are.na user profile.
type ArenaUser struct {
	ID       int    `json:"id"`
	Slug     string `json:"slug"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// ArenaChannel represents an are.na channel.
type ArenaChannel struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Published bool      `json:"published"`
	UserID    int       `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Length    int       `json:"length"`
}

// ArenaChannelList represents the response of a user channel listing.
type ArenaChannelList struct {
	Channels []ArenaChannel `json:"channels"`
	Length   int            `json:"length"`
	Page     int            `json:"current_page"`
	Pages    int            `json:"total_pages"`
}

type blockSource struct {
	URL string `json:"url"`
}

type blockImageVariant struct {
	URL string `json:"url"`
}

type blockImage struct {
	Square blockImageVariant `json:"square"`
}

// ArenaBlock represents a single content item within a channel.
type ArenaBlock struct {
	ID     int          `json:"id"`
	Title  string       `json:"title"`
	Class  string       `json:"class"`
	Source *blockSource `json:"source"`
	Image  *blockImage  `json:"image"`
}

// ArenaChannelContents represents one page of a channel's contents.
type ArenaChannelContents struct {
	Contents []ArenaBlock `json:"contents"`
}

// ArenaService implements the Service interface for are.na API interactions.
// Presents a bearer credential on every request and applies a bounded per-request timeout.
type ArenaService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewArenaService creates a new are.na service from the given configuration.
//
// An empty base URL falls back to the public are.na v2 endpoint. A zero timeout
// disables the per-request bound.
func NewArenaService(cfg shared.ArenaConfig) *ArenaService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = arenaBaseURL
	}

	client := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &ArenaService{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: client,
	}
}

func (s *ArenaService) Name() string {
	return "are.na"
}

// doRequest performs an authenticated GET request against the are.na API.
//
// Network and non-2xx failures wrap [shared.ErrTransientFetch]; undecodable
// bodies wrap [shared.ErrMalformedResponse].
func (s *ArenaService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: are.na API status %d for %s", shared.ErrTransientFetch, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}

	return nil
}

// User resolves a username to its profile.
func (s *ArenaService) User(ctx context.Context, username string) (*models.UserProfile, error) {
	var user ArenaUser
	endpoint := fmt.Sprintf("/users/%s", username)
	if err := s.doRequest(ctx, endpoint, &user); err != nil {
		return nil, err
	}

	if user.ID == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, username)
	}

	return &models.UserProfile{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Avatar:   user.Avatar,
	}, nil
}

// UserChannels retrieves the full channel listing for a user id.
func (s *ArenaService) UserChannels(ctx context.Context, userID int) ([]models.Channel, error) {
	var list ArenaChannelList
	endpoint := fmt.Sprintf("/users/%d/channels", userID)
	if err := s.doRequest(ctx, endpoint, &list); err != nil {
		return nil, err
	}

	channels := make([]models.Channel, 0, len(list.Channels))
	for _, ch := range list.Channels {
		channels = append(channels, models.Channel{
			ID:        ch.ID,
			Title:     ch.Title,
			Slug:      ch.Slug,
			UpdatedAt: ch.UpdatedAt,
			Published: ch.Published,
			UserID:    ch.UserID,
			Length:    ch.Length,
		})
	}

	return channels, nil
}

// Channel retrieves metadata for a single channel by slug.
func (s *ArenaService) Channel(ctx context.Context, slug string) (*models.Channel, error) {
	var ch ArenaChannel
	endpoint := fmt.Sprintf("/channels/%s", slug)
	if err := s.doRequest(ctx, endpoint, &ch); err != nil {
		return nil, err
	}

	return &models.Channel{
		ID:        ch.ID,
		Title:     ch.Title,
		Slug:      ch.Slug,
		UpdatedAt: ch.UpdatedAt,
		Published: ch.Published,
		UserID:    ch.UserID,
		Length:    ch.Length,
	}, nil
}

// ChannelContents retrieves one page of a channel's contents.
func (s *ArenaService) ChannelContents(ctx context.Context, slug string, page int) ([]models.Block, error) {
	if page < 1 {
		page = 1
	}

	var contents ArenaChannelContents
	endpoint := fmt.Sprintf("/channels/%s/contents?per=%d&page=%d", slug, PageSize, page)
	if err := s.doRequest(ctx, endpoint, &contents); err != nil {
		return nil, err
	}

	blocks := make([]models.Block, 0, len(contents.Contents))
	for _, raw := range contents.Contents {
		block := models.Block{ID: raw.ID}
		if raw.Source != nil && raw.Source.URL != "" {
			url := raw.Source.URL
			block.Source = &url
		}
		if raw.Image != nil && raw.Image.Square.URL != "" {
			url := raw.Image.Square.URL
			block.ImageURL = &url
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}
