package tasks

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/arx/internal/models"
	"github.com/desertthunder/arx/internal/shared"
	tu "github.com/desertthunder/arx/internal/testing"
)

// captureEmitter records every emitted event in order.
type captureEmitter struct {
	mu     sync.Mutex
	events []any
	failAt int // fail on the nth emit (1-based); 0 never fails
	count  int
}

func (c *captureEmitter) Emit(event any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.failAt > 0 && c.count >= c.failAt {
		return errors.New("consumer disconnected")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureEmitter) all() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any{}, c.events...)
}

func quietEngine(svc *tu.MockService) *BlockEngine {
	return NewBlockEngine(svc, nil, shared.NewLogger(io.Discard))
}

// pageOfBlocks builds a full page of distinct block records starting at firstID.
func pageOfBlocks(firstID, n int) []models.Block {
	blocks := make([]models.Block, 0, n)
	for i := range n {
		blocks = append(blocks, models.Block{ID: firstID + i})
	}
	return blocks
}

func singleUserService() *tu.MockService {
	return &tu.MockService{
		Users: map[string]*models.UserProfile{
			"alice": {ID: 7, Username: "alice", Avatar: "https://img.example/alice"},
		},
		Channels: map[int][]models.Channel{},
		Metadata: map[string]*models.Channel{},
		Contents: map[string]map[int][]models.Block{},
	}
}

func TestCollectUser(t *testing.T) {
	t.Run("Pagination Emits One Progress Per Page", func(t *testing.T) {
		svc := singleUserService()
		svc.Channels[7] = []models.Channel{
			{ID: 1, Slug: "wide", Title: "Wide", Published: true, UserID: 7},
		}
		svc.Metadata["wide"] = &models.Channel{ID: 1, Slug: "wide", Title: "Wide", Length: 120}
		svc.Contents["wide"] = map[int][]models.Block{
			1: pageOfBlocks(1, 50),
			2: pageOfBlocks(51, 50),
			3: pageOfBlocks(101, 20),
		}

		engine := quietEngine(svc)
		em := &captureEmitter{}
		opts := CompareOptions{ConcurrencyLimit: 1, MaxChannels: 15}

		blocks, err := engine.collectUser(context.Background(), em, "alice", opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(blocks) != 120 {
			t.Errorf("expected 120 blocks, got %d", len(blocks))
		}

		events := em.all()
		var progress []ChannelProgress
		var complete []ChannelComplete
		for _, ev := range events {
			switch e := ev.(type) {
			case ChannelProgress:
				progress = append(progress, e)
			case ChannelComplete:
				complete = append(complete, e)
			}
		}

		if len(progress) != 3 {
			t.Fatalf("expected 3 progress events for 120 items, got %d", len(progress))
		}
		for i, p := range progress {
			if p.Page != i+1 {
				t.Errorf("progress %d: expected page %d, got %d", i, i+1, p.Page)
			}
			if p.PagesInChannel != 3 {
				t.Errorf("expected pagesInChannel 3, got %d", p.PagesInChannel)
			}
		}
		if len(complete) != 1 {
			t.Fatalf("expected 1 complete event, got %d", len(complete))
		}
		if complete[0].PagesFetched != 3 || complete[0].BlocksFetched != 120 {
			t.Errorf("unexpected completion: %+v", complete[0])
		}
	})

	t.Run("Event Sequence Per Channel", func(t *testing.T) {
		svc := singleUserService()
		svc.Channels[7] = []models.Channel{
			{ID: 1, Slug: "one", Title: "One", Published: true, UserID: 7},
		}
		svc.Metadata["one"] = &models.Channel{Slug: "one", Title: "One", Length: 10}
		svc.Contents["one"] = map[int][]models.Block{1: pageOfBlocks(1, 10)}

		engine := quietEngine(svc)
		em := &captureEmitter{}

		if _, err := engine.collectUser(context.Background(), em, "alice", CompareOptions{ConcurrencyLimit: 1, MaxChannels: 15}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		events := em.all()
		if len(events) != 4 {
			t.Fatalf("expected 4 events, got %d: %v", len(events), events)
		}
		if start, ok := events[0].(UserStart); !ok || start.TotalChannels != 1 || start.Username != "alice" {
			t.Errorf("expected userStart for alice, got %+v", events[0])
		}
		if cs, ok := events[1].(ChannelStart); !ok || cs.ChannelName != "one" || cs.ChannelIndex != 1 {
			t.Errorf("expected channelStart for one, got %+v", events[1])
		}
		if _, ok := events[2].(ChannelProgress); !ok {
			t.Errorf("expected channelProgress, got %+v", events[2])
		}
		if _, ok := events[3].(ChannelComplete); !ok {
			t.Errorf("expected channelComplete, got %+v", events[3])
		}
	})

	t.Run("Channel Failure Isolated", func(t *testing.T) {
		svc := singleUserService()
		svc.Channels[7] = []models.Channel{
			{ID: 1, Slug: "bad", Title: "Bad", Published: true, UserID: 7, UpdatedAt: ts(2)},
			{ID: 2, Slug: "good", Title: "Good", Published: true, UserID: 7, UpdatedAt: ts(1)},
		}
		// No metadata entry for "bad": its fetch fails at channel scope.
		svc.Metadata["good"] = &models.Channel{Slug: "good", Title: "Good", Length: 2}
		svc.Contents["good"] = map[int][]models.Block{1: pageOfBlocks(1, 2)}

		engine := quietEngine(svc)
		em := &captureEmitter{}

		blocks, err := engine.collectUser(context.Background(), em, "alice", CompareOptions{ConcurrencyLimit: 1, MaxChannels: 15})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(blocks) != 2 {
			t.Errorf("expected 2 blocks from surviving channel, got %d", len(blocks))
		}

		var sawError, sawComplete bool
		for _, ev := range em.all() {
			switch e := ev.(type) {
			case StreamError:
				sawError = true
				if e.Error != "Error processing channel bad" {
					t.Errorf("unexpected error message: %s", e.Error)
				}
				if e.Username != "" {
					t.Errorf("channel errors carry no username, got %q", e.Username)
				}
			case ChannelComplete:
				sawComplete = true
				if e.ChannelName != "good" {
					t.Errorf("unexpected completed channel %s", e.ChannelName)
				}
			}
		}
		if !sawError || !sawComplete {
			t.Errorf("expected both an error and a completion, got error=%v complete=%v", sawError, sawComplete)
		}
	})

	t.Run("Page Failure Abandons Remaining Pages", func(t *testing.T) {
		svc := singleUserService()
		svc.Channels[7] = []models.Channel{
			{ID: 1, Slug: "flaky", Title: "Flaky", Published: true, UserID: 7},
		}
		svc.Metadata["flaky"] = &models.Channel{Slug: "flaky", Title: "Flaky", Length: 150}
		svc.Contents["flaky"] = map[int][]models.Block{
			1: pageOfBlocks(1, 50),
			3: pageOfBlocks(101, 50),
		}
		svc.ContentsErrs = map[string]map[int]error{
			"flaky": {2: errors.New("boom")},
		}

		engine := quietEngine(svc)
		em := &captureEmitter{}

		blocks, err := engine.collectUser(context.Background(), em, "alice", CompareOptions{ConcurrencyLimit: 1, MaxChannels: 15})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Page 1 landed before the failure; page 3 was never reached.
		if len(blocks) != 50 {
			t.Errorf("expected 50 blocks, got %d", len(blocks))
		}

		var pages []int
		var sawError, sawComplete bool
		for _, ev := range em.all() {
			switch e := ev.(type) {
			case ChannelProgress:
				pages = append(pages, e.Page)
			case StreamError:
				sawError = true
			case ChannelComplete:
				sawComplete = true
			}
		}
		if len(pages) != 1 || pages[0] != 1 {
			t.Errorf("expected progress for page 1 only, got %v", pages)
		}
		if !sawError {
			t.Error("expected a channel error event")
		}
		if sawComplete {
			t.Error("failed channel must not emit channelComplete")
		}
	})

	t.Run("User Failure Emits User Scoped Error", func(t *testing.T) {
		svc := singleUserService()
		engine := quietEngine(svc)
		em := &captureEmitter{}

		blocks, err := engine.collectUser(context.Background(), em, "nobody", CompareOptions{ConcurrencyLimit: 1, MaxChannels: 15})
		if err != nil {
			t.Fatalf("user-scope failures must not abort the run: %v", err)
		}
		if len(blocks) != 0 {
			t.Errorf("expected no blocks, got %d", len(blocks))
		}

		events := em.all()
		if len(events) != 1 {
			t.Fatalf("expected exactly one event, got %d", len(events))
		}
		se, ok := events[0].(StreamError)
		if !ok {
			t.Fatalf("expected StreamError, got %+v", events[0])
		}
		if se.Error != "Error fetching blocks for user nobody" || se.Username != "nobody" {
			t.Errorf("unexpected user error event: %+v", se)
		}
	})

	t.Run("Disconnected Consumer Stops The Run", func(t *testing.T) {
		svc := singleUserService()
		svc.Channels[7] = []models.Channel{
			{ID: 1, Slug: "one", Title: "One", Published: true, UserID: 7},
		}
		svc.Metadata["one"] = &models.Channel{Slug: "one", Title: "One", Length: 10}
		svc.Contents["one"] = map[int][]models.Block{1: pageOfBlocks(1, 10)}

		engine := quietEngine(svc)
		em := &captureEmitter{failAt: 1}

		_, err := engine.collectUser(context.Background(), em, "alice", CompareOptions{ConcurrencyLimit: 1, MaxChannels: 15})
		if err == nil {
			t.Fatal("expected an error when the consumer is gone")
		}
		if !errors.Is(err, errStreamClosed) {
			t.Errorf("expected stream-closed error, got %v", err)
		}
	})
}

// trackingService counts concurrent page fetches.
type trackingService struct {
	*tu.MockService
	mu      sync.Mutex
	current int
	peak    int
}

func (s *trackingService) ChannelContents(ctx context.Context, slug string, page int) ([]models.Block, error) {
	s.mu.Lock()
	s.current++
	if s.current > s.peak {
		s.peak = s.current
	}
	s.mu.Unlock()

	// Hold the slot long enough for sibling channels to overlap.
	time.Sleep(10 * time.Millisecond)

	s.mu.Lock()
	s.current--
	s.mu.Unlock()

	return s.MockService.ChannelContents(ctx, slug, page)
}

func TestConcurrencyBound(t *testing.T) {
	svc := singleUserService()
	slugs := []string{"c1", "c2", "c3", "c4", "c5"}
	for i, slug := range slugs {
		svc.Channels[7] = append(svc.Channels[7], models.Channel{
			ID: i + 1, Slug: slug, Title: slug, Published: true, UserID: 7,
		})
		svc.Metadata[slug] = &models.Channel{Slug: slug, Title: slug, Length: 5}
		svc.Contents[slug] = map[int][]models.Block{1: pageOfBlocks(i*10+1, 5)}
	}

	tracker := &trackingService{MockService: svc}
	engine := NewBlockEngine(tracker, nil, shared.NewLogger(io.Discard))
	em := &captureEmitter{}

	blocks, err := engine.collectUser(context.Background(), em, "alice", CompareOptions{ConcurrencyLimit: 2, MaxChannels: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 25 {
		t.Errorf("expected 25 blocks, got %d", len(blocks))
	}

	tracker.mu.Lock()
	peak := tracker.peak
	tracker.mu.Unlock()
	if peak > 2 {
		t.Errorf("concurrency limit 2 exceeded: %d channels in flight", peak)
	}
	if peak < 2 {
		t.Logf("peak concurrency was %d; channels overlapped less than expected", peak)
	}
}

func TestCompare(t *testing.T) {
	twoUserService := func() *tu.MockService {
		svc := singleUserService()
		svc.Users["bob"] = &models.UserProfile{ID: 8, Username: "bob", Avatar: "https://img.example/bob"}

		svc.Channels[7] = []models.Channel{{ID: 1, Slug: "alice-ch", Title: "Alice Channel", Published: true, UserID: 7}}
		svc.Metadata["alice-ch"] = &models.Channel{Slug: "alice-ch", Title: "Alice Channel", Length: 3}
		svc.Contents["alice-ch"] = map[int][]models.Block{1: {
			{ID: 1}, {ID: 2}, {ID: 3},
		}}

		svc.Channels[8] = []models.Channel{{ID: 2, Slug: "bob-ch", Title: "Bob Channel", Published: true, UserID: 8}}
		svc.Metadata["bob-ch"] = &models.Channel{Slug: "bob-ch", Title: "Bob Channel", Length: 2}
		svc.Contents["bob-ch"] = map[int][]models.Block{1: {
			{ID: 3}, {ID: 4},
		}}
		return svc
	}

	t.Run("Emits Final Payload", func(t *testing.T) {
		engine := quietEngine(twoUserService())
		em := &captureEmitter{}

		result, err := engine.Compare(context.Background(), em, CompareOptions{User1: "alice", User2: "bob"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.CommonBlocks) != 1 || result.CommonBlocks[0].ID != 3 {
			t.Errorf("expected common block 3, got %v", result.CommonBlocks)
		}
		if len(result.User1Blocks) != 3 || len(result.User2Blocks) != 2 {
			t.Errorf("unexpected collection sizes: %d, %d", len(result.User1Blocks), len(result.User2Blocks))
		}

		events := em.all()
		final, ok := events[len(events)-1].(FinalResult)
		if !ok {
			t.Fatalf("expected final payload last, got %+v", events[len(events)-1])
		}
		if len(final.CommonBlocks) != 1 {
			t.Errorf("final payload disagrees with result: %v", final.CommonBlocks)
		}
	})

	t.Run("User1 Completes Before User2 Starts", func(t *testing.T) {
		engine := quietEngine(twoUserService())
		em := &captureEmitter{}

		if _, err := engine.Compare(context.Background(), em, CompareOptions{User1: "alice", User2: "bob"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		bobStarted := false
		for _, ev := range em.all() {
			switch e := ev.(type) {
			case UserStart:
				if e.Username == "bob" {
					bobStarted = true
				}
			case ChannelProgress:
				if bobStarted && e.Username == "alice" {
					t.Fatal("alice events observed after bob started")
				}
			}
		}
		if !bobStarted {
			t.Error("bob never started")
		}
	})

	t.Run("Missing Username Rejected", func(t *testing.T) {
		engine := quietEngine(twoUserService())
		_, err := engine.Compare(context.Background(), nil, CompareOptions{User1: "alice"})
		if !errors.Is(err, shared.ErrMissingParameter) {
			t.Errorf("expected missing-parameter error, got %v", err)
		}
	})

	t.Run("Cancelled Context Aborts", func(t *testing.T) {
		engine := quietEngine(twoUserService())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.Compare(ctx, &captureEmitter{}, CompareOptions{User1: "alice", User2: "bob"})
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})

	t.Run("One Bad User Still Produces Final Payload", func(t *testing.T) {
		svc := twoUserService()
		delete(svc.Users, "alice")
		engine := quietEngine(svc)
		em := &captureEmitter{}

		result, err := engine.Compare(context.Background(), em, CompareOptions{User1: "alice", User2: "bob"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.User1Blocks) != 0 || len(result.User2Blocks) != 2 {
			t.Errorf("unexpected collections: %d, %d", len(result.User1Blocks), len(result.User2Blocks))
		}
		if len(result.CommonBlocks) != 0 {
			t.Errorf("expected no common blocks, got %v", result.CommonBlocks)
		}

		events := em.all()
		if _, ok := events[len(events)-1].(FinalResult); !ok {
			t.Errorf("expected final payload despite user failure, got %+v", events[len(events)-1])
		}
	})

	t.Run("Dedup Across Channels", func(t *testing.T) {
		svc := twoUserService()
		svc.Channels[7] = append(svc.Channels[7], models.Channel{
			ID: 9, Slug: "alice-2", Title: "Second Channel", Published: true, UserID: 7, UpdatedAt: ts(-1),
		})
		svc.Metadata["alice-2"] = &models.Channel{Slug: "alice-2", Title: "Second Channel", Length: 1}
		svc.Contents["alice-2"] = map[int][]models.Block{1: {{ID: 2}}}

		engine := quietEngine(svc)
		result, err := engine.Compare(context.Background(), &captureEmitter{}, CompareOptions{User1: "alice", User2: "bob", ConcurrencyLimit: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.User1Blocks) != 3 {
			t.Fatalf("expected 3 unique blocks, got %d", len(result.User1Blocks))
		}
		for _, block := range result.User1Blocks {
			if block.ID == 2 {
				if len(block.Channels) != 2 {
					t.Errorf("block 2 should belong to both channels, got %v", block.Channels)
				}
			}
		}
	})
}
