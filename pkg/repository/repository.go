package repository

import (
	"sort"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// Tier is the capability set shared by the five memory tiers. Every tier
// stores model.Memory records but applies its own admission and eviction
// policy. Implementations hold plain mutable state with no locking; callers
// own synchronization.
type Tier interface {
	// Name returns the tier identifier recorded on its memories
	Name() model.TierName

	// Add stores new content under this tier's policy and returns the
	// created record
	Add(content any, opts ...model.AddOption) (*model.Memory, error)

	// Retrieve returns up to opts.Limit records ordered by the tier's
	// ranking, marking each returned record as accessed
	Retrieve(opts model.RetrieveOptions) []*model.Memory

	// Get returns a record by ID without touching access bookkeeping
	Get(id model.MemoryID) (*model.Memory, bool)

	// Update overwrites content and/or metadata of an existing record
	Update(id model.MemoryID, content any, meta *model.Metadata) bool

	// Delete removes a record
	Delete(id model.MemoryID) bool

	// Clear removes all records
	Clear()

	// Size returns the number of stored records
	Size() int

	// All returns every stored record in insertion order (snapshots)
	All() []*model.Memory

	// Restore inserts an already-built record, rebuilding the tier's
	// secondary indexes from its metadata (snapshot loading)
	Restore(mem *model.Memory) error
}

// TierOrder is the fixed order in which the coordinator scans tiers for
// get/update/delete and snapshot output.
var TierOrder = []model.TierName{
	model.TierShortTerm,
	model.TierLongTerm,
	model.TierEpisodic,
	model.TierSemantic,
	model.TierProcedural,
}

// recordMap is the id-to-record map plus insertion-order index shared by all
// tier implementations.
type recordMap struct {
	memories map[model.MemoryID]*model.Memory
	order    []model.MemoryID
}

func newRecordMap() recordMap {
	return recordMap{
		memories: make(map[model.MemoryID]*model.Memory),
	}
}

func (r *recordMap) insert(mem *model.Memory) {
	r.memories[mem.ID] = mem
	r.order = append(r.order, mem.ID)
}

func (r *recordMap) Get(id model.MemoryID) (*model.Memory, bool) {
	mem, ok := r.memories[id]
	return mem, ok
}

func (r *recordMap) Update(id model.MemoryID, content any, meta *model.Metadata) bool {
	mem, ok := r.memories[id]
	if !ok {
		return false
	}
	if meta != nil {
		if err := meta.Validate(); err != nil {
			return false
		}
	}

	if content != nil {
		mem.Content = content
	}
	if meta != nil {
		mem.Meta = *meta
	}
	return true
}

func (r *recordMap) Delete(id model.MemoryID) bool {
	if _, ok := r.memories[id]; !ok {
		return false
	}
	delete(r.memories, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *recordMap) Clear() {
	r.memories = make(map[model.MemoryID]*model.Memory)
	r.order = nil
}

func (r *recordMap) Size() int {
	return len(r.memories)
}

func (r *recordMap) All() []*model.Memory {
	mems := make([]*model.Memory, 0, len(r.order))
	for _, id := range r.order {
		if mem, ok := r.memories[id]; ok {
			mems = append(mems, mem)
		}
	}
	return mems
}

func sortByTimestampDesc(mems []*model.Memory) {
	sort.SliceStable(mems, func(i, j int) bool {
		return mems[i].Meta.Timestamp.After(mems[j].Meta.Timestamp)
	})
}

func sortByRelevanceDesc(mems []*model.Memory) {
	sort.SliceStable(mems, func(i, j int) bool {
		return mems[i].Relevance(model.DefaultRelevanceBase) > mems[j].Relevance(model.DefaultRelevanceBase)
	})
}

// takeAccessed truncates to limit and marks the survivors as accessed.
func takeAccessed(mems []*model.Memory, limit int) []*model.Memory {
	if limit >= 0 && len(mems) > limit {
		mems = mems[:limit]
	}
	for _, mem := range mems {
		mem.UpdateAccess()
	}
	return mems
}
