// package tasks implements the block comparison engine for two are.na users.
//
// The core abstraction is CompareEngine, which collects both users' unique
// blocks under a bounded concurrency ceiling and reconciles them into a
// common-block set. Operations emit typed progress events through an Emitter
// the moment each checkpoint is reached, so callers can narrate a run live.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/arx/internal/models"
	"github.com/desertthunder/arx/internal/services"
	"github.com/desertthunder/arx/internal/shared"
)

const (
	// DefaultConcurrencyLimit caps how many channels are in flight at once for one user.
	DefaultConcurrencyLimit = 5
	// DefaultMaxChannels bounds how many of a user's channels a run will process.
	DefaultMaxChannels = 15
)

// CompareOptions tunes a single comparison run.
type CompareOptions struct {
	User1            string // First are.na username
	User2            string // Second are.na username
	ConcurrencyLimit int    // Max channels in flight per user; defaults to DefaultConcurrencyLimit
	MaxChannels      int    // Max selected channels per user; defaults to DefaultMaxChannels
}

func (o CompareOptions) withDefaults() CompareOptions {
	if o.ConcurrencyLimit <= 0 {
		o.ConcurrencyLimit = DefaultConcurrencyLimit
	}
	if o.MaxChannels <= 0 {
		o.MaxChannels = DefaultMaxChannels
	}
	return o
}

// CompareResult contains both users' finalized collections and their common blocks.
type CompareResult struct {
	CommonBlocks []models.Block
	User1Blocks  []models.Block
	User2Blocks  []models.Block
}

// CompareEngine defines operations for comparing two users' block collections.
type CompareEngine interface {
	// Compare collects both users' blocks, emitting progress events throughout,
	// then reconciles the two collections and emits the final payload.
	Compare(ctx context.Context, em Emitter, opts CompareOptions) (*CompareResult, error)
}

// BlockEngine implements CompareEngine against a [services.Service].
type BlockEngine struct {
	arena   services.Service
	matcher *Matcher
	logger  *log.Logger
}

// NewBlockEngine creates a BlockEngine with the provided service.
//
// A nil matcher falls back to the default exclusion list; a nil logger falls
// back to the shared default.
func NewBlockEngine(arena services.Service, matcher *Matcher, logger *log.Logger) *BlockEngine {
	if matcher == nil {
		matcher = NewMatcher(DefaultExcludedSources)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BlockEngine{arena: arena, matcher: matcher, logger: logger}
}

// Compare runs the full comparison: user1 is collected completely before
// user2 begins, then the matcher computes the common set and the final
// payload is emitted. The stream narration and the returned result carry the
// same data.
func (e *BlockEngine) Compare(ctx context.Context, em Emitter, opts CompareOptions) (*CompareResult, error) {
	if e.arena == nil {
		return nil, fmt.Errorf("%w: are.na service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.User1 == "" || opts.User2 == "" {
		return nil, fmt.Errorf("%w: user1 and user2", shared.ErrMissingParameter)
	}
	opts = opts.withDefaults()

	user1Blocks, err := e.collectUser(ctx, em, opts.User1, opts)
	if err != nil {
		return nil, err
	}

	user2Blocks, err := e.collectUser(ctx, em, opts.User2, opts)
	if err != nil {
		return nil, err
	}

	common := e.matcher.Common(user1Blocks, user2Blocks)
	e.logger.Info("comparison finished",
		"user1", opts.User1, "user1Blocks", len(user1Blocks),
		"user2", opts.User2, "user2Blocks", len(user2Blocks),
		"common", len(common))

	result := &CompareResult{
		CommonBlocks: common,
		User1Blocks:  user1Blocks,
		User2Blocks:  user2Blocks,
	}

	if err := e.emit(em, FinalResult{
		CommonBlocks: result.CommonBlocks,
		User1Blocks:  result.User1Blocks,
		User2Blocks:  result.User2Blocks,
	}); err != nil {
		return nil, err
	}

	return result, nil
}
