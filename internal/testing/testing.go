// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/arx/internal/models"
)

// MockService is a configurable test double for [services.Service].
type MockService struct {
	Users        map[string]*models.UserProfile
	Channels     map[int][]models.Channel
	Metadata     map[string]*models.Channel
	Contents     map[string]map[int][]models.Block // slug → page → blocks
	UserErr      error
	ChannelsErr  error
	MetadataErr  error
	ContentsErr  error
	ContentsErrs map[string]map[int]error // per-slug, per-page failures
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) User(ctx context.Context, username string) (*models.UserProfile, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if user, ok := m.Users[username]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *MockService) UserChannels(ctx context.Context, userID int) ([]models.Channel, error) {
	if m.ChannelsErr != nil {
		return nil, m.ChannelsErr
	}
	return m.Channels[userID], nil
}

func (m *MockService) Channel(ctx context.Context, slug string) (*models.Channel, error) {
	if m.MetadataErr != nil {
		return nil, m.MetadataErr
	}
	if ch, ok := m.Metadata[slug]; ok {
		return ch, nil
	}
	return nil, errors.New("channel not found")
}

func (m *MockService) ChannelContents(ctx context.Context, slug string, page int) ([]models.Block, error) {
	if m.ContentsErr != nil {
		return nil, m.ContentsErr
	}
	if pages, ok := m.ContentsErrs[slug]; ok {
		if err, ok := pages[page]; ok && err != nil {
			return nil, err
		}
	}
	if pages, ok := m.Contents[slug]; ok {
		return pages[page], nil
	}
	return nil, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Str returns a pointer to s, for building optional source and image fields.
func Str(s string) *string { return &s }
