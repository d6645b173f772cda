package memory

import (
	"context"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// Get looks a record up across every tier in the fixed scan order.
func (u *UseCase) Get(id model.MemoryID) (*model.Memory, bool) {
	for _, name := range u.order {
		if mem, ok := u.tiers[name].Get(id); ok {
			return mem, true
		}
	}
	return nil, false
}

// Update rewrites a record's content and/or metadata in the first tier that
// recognizes the id, then refreshes its vector index entry when it carries
// an embedding.
func (u *UseCase) Update(ctx context.Context, id model.MemoryID, content any, meta *model.Metadata) bool {
	for _, name := range u.order {
		tier := u.tiers[name]
		if !tier.Update(id, content, meta) {
			continue
		}

		if u.index != nil {
			if mem, ok := tier.Get(id); ok && len(mem.Embedding) > 0 {
				u.index.Update(ctx, mem)
			}
		}
		return true
	}
	return false
}

// Delete removes a record from every tier holding it and from the vector
// index. Ids are globally unique, but a stray duplicate would be purged
// everywhere.
func (u *UseCase) Delete(ctx context.Context, id model.MemoryID) bool {
	deleted := false
	for _, name := range u.order {
		if u.tiers[name].Delete(id) {
			deleted = true
		}
	}

	if u.index != nil {
		u.index.Delete(ctx, id)
	}
	return deleted
}

// ClearAll wipes every tier, the vector index and the consolidation
// counter.
func (u *UseCase) ClearAll() {
	for _, name := range u.order {
		u.tiers[name].Clear()
	}
	if u.index != nil {
		u.index.Clear()
	}
	u.consolidationCounter = 0
}
