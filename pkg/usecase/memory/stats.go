package memory

import (
	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// Statistics summarizes the memory system.
type Statistics struct {
	TotalMemories        int                    `json:"total_memories"`
	ByTier               map[model.TierName]int `json:"by_type"`
	ConsolidationCounter int                    `json:"consolidation_counter"`
	VectorStoreSize      *int                   `json:"vector_store_size,omitempty"`
}

// Stats reports per-tier counts, the running total, the consolidation
// counter and, when an index is attached, its size.
func (u *UseCase) Stats() Statistics {
	stats := Statistics{
		ByTier:               make(map[model.TierName]int, len(u.order)),
		ConsolidationCounter: u.consolidationCounter,
	}

	for _, name := range u.order {
		count := u.tiers[name].Size()
		stats.ByTier[name] = count
		stats.TotalMemories += count
	}

	if u.index != nil {
		size := u.index.Size()
		stats.VectorStoreSize = &size
	}
	return stats
}
