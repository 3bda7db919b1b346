package tasks

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/arx/internal/models"
	"github.com/desertthunder/arx/internal/services"
	"github.com/desertthunder/arx/internal/shared"
)

// errStreamClosed marks an emit failure, meaning the consumer disconnected.
// It aborts the whole run rather than being downgraded to a channel error.
var errStreamClosed = errors.New("progress stream closed")

// emit forwards an event to the emitter, tagging failures as stream closure.
func (e *BlockEngine) emit(em Emitter, event any) error {
	if em == nil {
		return nil
	}
	if err := em.Emit(event); err != nil {
		return fmt.Errorf("%w: %v", errStreamClosed, err)
	}
	return nil
}

// abandoned reports whether an error means the run should stop entirely:
// the consumer disconnected or the context was cancelled.
func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, errStreamClosed)
}

// collectUser gathers every unique block for one username.
//
// Upstream failures resolving the profile or channel list are caught here and
// converted into a user-scoped error event; collection of the other user is
// unaffected. The returned error is non-nil only when the run must stop
// (consumer gone or context cancelled).
func (e *BlockEngine) collectUser(ctx context.Context, em Emitter, username string, opts CompareOptions) ([]models.Block, error) {
	acc := NewBlocksMap()

	if err := e.collect(ctx, em, username, opts, acc); err != nil {
		if abandoned(ctx, err) {
			return acc.Blocks(), err
		}
		e.logger.Warn("user collection failed", "user", username, "err", err)
		if err := e.emit(em, userErrorEvent(username)); err != nil {
			return acc.Blocks(), err
		}
	}

	e.logger.Info("collected blocks", "user", username, "unique", acc.Size())
	return acc.Blocks(), nil
}

// collect resolves the user, selects channels, and drives the batched fetch.
func (e *BlockEngine) collect(ctx context.Context, em Emitter, username string, opts CompareOptions, acc *BlocksMap) error {
	user, err := e.arena.User(ctx, username)
	if err != nil {
		return err
	}

	channels, err := e.arena.UserChannels(ctx, user.ID)
	if err != nil {
		return err
	}

	selected := SelectChannels(channels, user.ID, opts.MaxChannels)
	total := len(selected)

	if err := e.emit(em, userStartEvent(username, total)); err != nil {
		return err
	}

	limit := opts.ConcurrencyLimit
	if limit < 1 {
		limit = 1
	}

	// Channels run in consecutive groups of size limit; group N+1 does not
	// start until every channel in group N has settled. A slow channel stalls
	// its whole group. This convoy behavior is kept on purpose instead of a
	// work-stealing pool so the observable event cadence stays predictable.
	for start := 0; start < len(selected); start += limit {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+limit, len(selected))

		g, gctx := errgroup.WithContext(ctx)
		for offset, channel := range selected[start:end] {
			index := start + offset + 1
			g.Go(func() error {
				return e.processChannel(gctx, em, username, channel, index, total, acc)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	return nil
}

// processChannel runs one channel to completion, catching its failures.
//
// Any error fetching the channel's metadata or pages is converted into a
// channel-scoped error event; remaining pages of this channel are
// abandoned while sibling channels continue. Only stream closure or
// cancellation propagates.
func (e *BlockEngine) processChannel(ctx context.Context, em Emitter, username string, channel models.Channel, index, total int, acc *BlocksMap) error {
	err := e.fetchChannel(ctx, em, username, channel, index, total, acc)
	if err == nil {
		return nil
	}
	if abandoned(ctx, err) {
		return err
	}

	e.logger.Warn("channel failed", "user", username, "channel", channel.Slug, "err", err)
	return e.emit(em, channelErrorEvent(channel.Slug))
}

// fetchChannel emits the channel's event sequence while ingesting its pages:
// channelStart, then channelProgress per page, then channelComplete. Pages
// are fetched strictly in order; page k+1 begins only after page k's blocks
// are ingested and its progress event emitted.
func (e *BlockEngine) fetchChannel(ctx context.Context, em Emitter, username string, channel models.Channel, index, total int, acc *BlocksMap) error {
	meta, err := e.arena.Channel(ctx, channel.Slug)
	if err != nil {
		return err
	}

	pages := shared.PageCount(meta.Length, services.PageSize)
	if err := e.emit(em, channelStartEvent(username, index, total, channel.Slug, pages)); err != nil {
		return err
	}

	fetched := 0
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		blocks, err := e.arena.ChannelContents(ctx, channel.Slug, page)
		if err != nil {
			return err
		}

		for _, block := range blocks {
			acc.Ingest(block, channel.Title)
		}
		fetched++

		if err := e.emit(em, channelProgressEvent(username, index, total, channel.Slug, page, pages, acc.Size())); err != nil {
			return err
		}
	}

	return e.emit(em, channelCompleteEvent(username, index, total, channel.Slug, pages, fetched, acc.Size()))
}
