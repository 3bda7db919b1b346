package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/arx/internal/models"
	"github.com/desertthunder/arx/internal/services"
	"github.com/desertthunder/arx/internal/shared"
)

// ChannelListing is the response body of the channel listing endpoint.
type ChannelListing struct {
	User     *models.UserProfile `json:"user"`
	Channels []models.Channel    `json:"channels"`
}

// ChannelsHandler resolves a username and returns its full channel listing.
//
// Input-field feedback uses this endpoint: a username is considered valid
// when the profile resolves and carries an avatar. Not part of a comparison
// run.
type ChannelsHandler struct {
	arena  services.Service
	logger *log.Logger
}

// NewChannelsHandler creates the channel listing handler.
func NewChannelsHandler(arena services.Service, logger *log.Logger) *ChannelsHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ChannelsHandler{arena: arena, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ChannelsHandler) Routes() []string {
	return []string{"/api/channels"}
}

func (h *ChannelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeJSONError(w, http.StatusBadRequest, "Username parameter is required")
		return
	}

	ctx := r.Context()

	user, err := h.arena.User(ctx, username)
	if err != nil {
		h.logger.Warn("failed to resolve user", "username", username, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "An error occurred while fetching user channels")
		return
	}

	channels, err := h.arena.UserChannels(ctx, user.ID)
	if err != nil {
		h.logger.Warn("failed to list channels", "username", username, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "An error occurred while fetching user channels")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ChannelListing{User: user, Channels: channels})
}

// HealthHandler reports process liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "arx"})
}
