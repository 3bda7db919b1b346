package tasks

import (
	"fmt"

	"github.com/desertthunder/arx/internal/models"
)

// Emitter receives progress events the moment a checkpoint is reached.
//
// Implementations must write (or render) the event before returning; the
// engine never batches or buffers. A returned error is treated as "consumer
// disconnected" and stops the run promptly. Emit may be called from
// concurrently running channel tasks and must serialize its own writes.
type Emitter interface {
	Emit(event any) error
}

// EmitterFunc adapts a plain function to the [Emitter] interface.
type EmitterFunc func(event any) error

func (f EmitterFunc) Emit(event any) error { return f(event) }

// EventType identifies a typed progress event on the stream.
type EventType string

const (
	EventUserStart       EventType = "userStart"
	EventChannelStart    EventType = "channelStart"
	EventChannelProgress EventType = "channelProgress"
	EventChannelComplete EventType = "channelComplete"
)

// UserStart announces that a user's channel batch is about to be processed.
type UserStart struct {
	Type          EventType `json:"type"`
	Username      string    `json:"username"`
	TotalChannels int       `json:"totalChannels"`
}

// ChannelStart announces that a channel's pages are about to be fetched.
type ChannelStart struct {
	Type           EventType `json:"type"`
	Username       string    `json:"username"`
	ChannelIndex   int       `json:"channelIndex"`
	TotalChannels  int       `json:"totalChannels"`
	ChannelName    string    `json:"channelName"`
	PagesInChannel int       `json:"pagesInChannel"`
}

// ChannelProgress reports that one page of a channel has been ingested.
//
// BlocksFetched is the user-wide unique block count at emit time, not a
// per-channel figure.
type ChannelProgress struct {
	Type           EventType `json:"type"`
	Username       string    `json:"username"`
	ChannelIndex   int       `json:"channelIndex"`
	TotalChannels  int       `json:"totalChannels"`
	ChannelName    string    `json:"channelName"`
	Page           int       `json:"page"`
	PagesInChannel int       `json:"pagesInChannel"`
	BlocksFetched  int       `json:"blocksFetched"`
}

// ChannelComplete reports that every page of a channel has been ingested.
type ChannelComplete struct {
	Type           EventType `json:"type"`
	Username       string    `json:"username"`
	ChannelIndex   int       `json:"channelIndex"`
	TotalChannels  int       `json:"totalChannels"`
	ChannelName    string    `json:"channelName"`
	PagesInChannel int       `json:"pagesInChannel"`
	PagesFetched   int       `json:"pagesFetched"`
	BlocksFetched  int       `json:"blocksFetched"`
}

// StreamError reports a failure scoped to one channel or one user.
// It carries no type discriminator on the wire.
type StreamError struct {
	Error    string `json:"error"`
	Username string `json:"username,omitempty"`
}

// FinalResult is the terminal payload of a comparison stream.
type FinalResult struct {
	CommonBlocks []models.Block `json:"commonBlocks"`
	User1Blocks  []models.Block `json:"user1Blocks"`
	User2Blocks  []models.Block `json:"user2Blocks"`
}

func userStartEvent(username string, totalChannels int) UserStart {
	return UserStart{
		Type:          EventUserStart,
		Username:      username,
		TotalChannels: totalChannels,
	}
}

func channelStartEvent(username string, index, total int, name string, pages int) ChannelStart {
	return ChannelStart{
		Type:           EventChannelStart,
		Username:       username,
		ChannelIndex:   index,
		TotalChannels:  total,
		ChannelName:    name,
		PagesInChannel: pages,
	}
}

func channelProgressEvent(username string, index, total int, name string, page, pages, blocks int) ChannelProgress {
	return ChannelProgress{
		Type:           EventChannelProgress,
		Username:       username,
		ChannelIndex:   index,
		TotalChannels:  total,
		ChannelName:    name,
		Page:           page,
		PagesInChannel: pages,
		BlocksFetched:  blocks,
	}
}

func channelCompleteEvent(username string, index, total int, name string, pages, fetched, blocks int) ChannelComplete {
	return ChannelComplete{
		Type:           EventChannelComplete,
		Username:       username,
		ChannelIndex:   index,
		TotalChannels:  total,
		ChannelName:    name,
		PagesInChannel: pages,
		PagesFetched:   fetched,
		BlocksFetched:  blocks,
	}
}

func userErrorEvent(username string) StreamError {
	return StreamError{
		Error:    fmt.Sprintf("Error fetching blocks for user %s", username),
		Username: username,
	}
}

func channelErrorEvent(slug string) StreamError {
	return StreamError{
		Error: fmt.Sprintf("Error processing channel %s", slug),
	}
}
