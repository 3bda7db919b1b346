package tasks

import (
	"sync"

	"github.com/desertthunder/arx/internal/models"
)

// BlocksMap accumulates the unique blocks collected for one user across all
// channels and pages of a run.
//
// Concurrently running channel tasks ingest into the same map; all mutation is
// serialized behind a mutex so repeated sightings of a block id only extend its
// channel list and never lose updates. Once collection finishes the map is
// snapshotted into an immutable slice and discarded.
type BlocksMap struct {
	mu     sync.Mutex
	blocks map[int]*models.Block
	order  []int
}

// NewBlocksMap creates an empty accumulator scoped to one user's run.
func NewBlocksMap() *BlocksMap {
	return &BlocksMap{blocks: make(map[int]*models.Block)}
}

// Ingest records one sighting of a block in the named channel.
//
// First sightings insert a new entry seeded with channelTitle; later sightings
// append channelTitle only if it is not already present. The record's own
// channel list, if any, is ignored.
func (m *BlocksMap) Ingest(record models.Block, channelTitle string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.blocks[record.ID]; ok {
		if !existing.HasChannel(channelTitle) {
			existing.Channels = append(existing.Channels, channelTitle)
		}
		return
	}

	block := models.Block{
		ID:       record.ID,
		Source:   record.Source,
		ImageURL: record.ImageURL,
		Channels: []string{channelTitle},
	}
	m.blocks[record.ID] = &block
	m.order = append(m.order, record.ID)
}

// Size returns the number of unique blocks ingested so far.
func (m *BlocksMap) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

// Blocks returns the accumulated blocks in first-sighting order.
//
// The returned slice shares nothing with the map; channel lists are copied so
// the snapshot stays stable if ingestion were to continue.
func (m *BlocksMap) Blocks() []models.Block {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]models.Block, 0, len(m.order))
	for _, id := range m.order {
		block := m.blocks[id]
		channels := make([]string, len(block.Channels))
		copy(channels, block.Channels)
		snapshot = append(snapshot, models.Block{
			ID:       block.ID,
			Source:   block.Source,
			ImageURL: block.ImageURL,
			Channels: channels,
		})
	}
	return snapshot
}
