package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/arx/internal/shared"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*ArenaService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc := NewArenaService(shared.ArenaConfig{APIKey: "test-key", BaseURL: server.URL})
	return svc, server
}

func TestUser(t *testing.T) {
	t.Run("Resolves Profile", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/alice" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("expected bearer credential, got %q", got)
			}
			w.Write([]byte(`{"id": 42, "username": "alice", "full_name": "Alice A", "avatar": "https://img.example/a"}`))
		})

		user, err := svc.User(context.Background(), "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != 42 || user.Username != "alice" || user.FullName != "Alice A" {
			t.Errorf("unexpected profile: %+v", user)
		}
		if !user.Valid() {
			t.Error("profile with avatar should be valid")
		}
	})

	t.Run("Zero ID Means Not Found", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		_, err := svc.User(context.Background(), "ghost")
		if !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected user-not-found, got %v", err)
		}
	})

	t.Run("Upstream Status Wraps Transient", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := svc.User(context.Background(), "alice")
		if !errors.Is(err, shared.ErrTransientFetch) {
			t.Errorf("expected transient fetch error, got %v", err)
		}
	})

	t.Run("Undecodable Body Wraps Malformed", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>not json</html>`))
		})

		_, err := svc.User(context.Background(), "alice")
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected malformed response error, got %v", err)
		}
	})

	t.Run("Unreachable Host Wraps Transient", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		svc := NewArenaService(shared.ArenaConfig{BaseURL: url})
		_, err := svc.User(context.Background(), "alice")
		if !errors.Is(err, shared.ErrTransientFetch) {
			t.Errorf("expected transient fetch error, got %v", err)
		}
	})
}

func TestUserChannels(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/42/channels" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"channels": [
				{"id": 1, "title": "Design", "slug": "design-abc", "published": true, "user_id": 42, "updated_at": "2024-03-01T12:00:00Z", "length": 75},
				{"id": 2, "title": "Drafts", "slug": "drafts-xyz", "published": false, "user_id": 42, "length": 3}
			],
			"length": 2, "current_page": 1, "total_pages": 1
		}`))
	})

	channels, err := svc.UserChannels(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	first := channels[0]
	if first.Slug != "design-abc" || first.Title != "Design" || !first.Published || first.Length != 75 {
		t.Errorf("unexpected channel mapping: %+v", first)
	}
	if first.UpdatedAt.IsZero() {
		t.Error("updated_at should be parsed")
	}
	if channels[1].Published {
		t.Error("second channel should be unpublished")
	}
}

func TestChannel(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/design-abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id": 1, "title": "Design", "slug": "design-abc", "published": true, "user_id": 42, "length": 120}`))
	})

	ch, err := svc.Channel(context.Background(), "design-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Length != 120 || ch.Slug != "design-abc" {
		t.Errorf("unexpected channel: %+v", ch)
	}
}

func TestChannelContents(t *testing.T) {
	t.Run("Maps Blocks And Pagination Params", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/channels/design-abc/contents" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("per") != "50" || q.Get("page") != "2" {
				t.Errorf("unexpected pagination params: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{
				"contents": [
					{"id": 10, "class": "Link", "source": {"url": "https://example.com/a"}, "image": {"square": {"url": "https://img.example/10.png"}}},
					{"id": 11, "class": "Text", "source": {"url": ""}},
					{"id": 12, "class": "Image"}
				]
			}`))
		})

		blocks, err := svc.ChannelContents(context.Background(), "design-abc", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(blocks) != 3 {
			t.Fatalf("expected 3 blocks, got %d", len(blocks))
		}

		if blocks[0].Source == nil || *blocks[0].Source != "https://example.com/a" {
			t.Errorf("unexpected source: %v", blocks[0].Source)
		}
		if blocks[0].ImageURL == nil || *blocks[0].ImageURL != "https://img.example/10.png" {
			t.Errorf("unexpected image: %v", blocks[0].ImageURL)
		}
		// Empty and absent sources both normalize to nil.
		if blocks[1].Source != nil {
			t.Errorf("empty source url should map to nil, got %v", *blocks[1].Source)
		}
		if blocks[2].Source != nil || blocks[2].ImageURL != nil {
			t.Error("absent source and image should map to nil")
		}
	})

	t.Run("Page Floor Is One", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("page"); got != "1" {
				t.Errorf("expected page 1, got %s", got)
			}
			w.Write([]byte(`{"contents": []}`))
		})

		if _, err := svc.ChannelContents(context.Background(), "design-abc", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestNewArenaService(t *testing.T) {
	t.Run("Defaults To Public Endpoint", func(t *testing.T) {
		svc := NewArenaService(shared.ArenaConfig{})
		if svc.baseURL != arenaBaseURL {
			t.Errorf("expected %s, got %s", arenaBaseURL, svc.baseURL)
		}
		if svc.httpClient.Timeout != 0 {
			t.Errorf("zero timeout config should leave client unbounded, got %v", svc.httpClient.Timeout)
		}
	})

	t.Run("Applies Timeout", func(t *testing.T) {
		svc := NewArenaService(shared.ArenaConfig{TimeoutSeconds: 30})
		if svc.httpClient.Timeout.Seconds() != 30 {
			t.Errorf("expected 30s timeout, got %v", svc.httpClient.Timeout)
		}
	})

	t.Run("Skips Credential When Unset", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("expected no credential, got %q", got)
			}
			w.Write([]byte(`{"id": 1, "username": "alice"}`))
		}))
		defer server.Close()

		svc := NewArenaService(shared.ArenaConfig{BaseURL: server.URL})
		if _, err := svc.User(context.Background(), "alice"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
