package repository

import (
	"time"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// ShortTermConfig configures the short-term tier.
type ShortTermConfig struct {
	// Capacity is the maximum number of live records; the FIFO head is
	// evicted when a new record arrives at capacity. Default: 10.
	Capacity int `yaml:"capacity"`

	// TTL is how long a record survives after creation. Expired records
	// are swept before every add and retrieve. Default: 5m.
	TTL time.Duration `yaml:"ttl"`
}

func (c ShortTermConfig) withDefaults() ShortTermConfig {
	if c.Capacity <= 0 {
		c.Capacity = 10
	}
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	return c
}

// ShortTerm is the bounded, time-limited working memory of the agent.
// Records expire after a fixed TTL and the oldest record is dropped first
// when the tier is full.
type ShortTerm struct {
	recordMap
	capacity int
	ttl      time.Duration
}

// NewShortTerm creates a short-term tier store.
func NewShortTerm(cfg ShortTermConfig) *ShortTerm {
	cfg = cfg.withDefaults()
	return &ShortTerm{
		recordMap: newRecordMap(),
		capacity:  cfg.Capacity,
		ttl:       cfg.TTL,
	}
}

func (s *ShortTerm) Name() model.TierName {
	return model.TierShortTerm
}

// Add sweeps expired records, evicts the FIFO head if the tier is at
// capacity, then inserts the new record.
func (s *ShortTerm) Add(content any, opts ...model.AddOption) (*model.Memory, error) {
	spec := model.NewAddSpec(opts...)

	mem, err := model.NewMemory(model.TierShortTerm, content, model.Metadata{
		ImportanceScore: spec.ImportanceOr(0.3),
		DecayRate:       spec.DecayRateOr(0.01),
		Tags:            spec.Tags,
		Source:          spec.Source,
		AgentID:         spec.AgentID,
		SessionID:       spec.SessionID,
	}, spec.Embedding)
	if err != nil {
		return nil, err
	}

	s.sweep()

	if s.Size() >= s.capacity && len(s.order) > 0 {
		s.recordMap.Delete(s.order[0])
	}

	s.insert(mem)
	return mem, nil
}

// Retrieve returns the most recent surviving records, newest first.
func (s *ShortTerm) Retrieve(opts model.RetrieveOptions) []*model.Memory {
	s.sweep()

	mems := s.All()
	sortByTimestampDesc(mems)
	return takeAccessed(mems, opts.EffectiveLimit())
}

// Restore inserts a record as-is; the TTL applies from its original
// timestamp, so stale snapshot records expire on the next sweep.
func (s *ShortTerm) Restore(mem *model.Memory) error {
	if err := mem.Meta.Validate(); err != nil {
		return err
	}
	s.insert(mem)
	return nil
}

// sweep drops records older than the TTL from both the map and the FIFO
// order index.
func (s *ShortTerm) sweep() {
	cutoff := time.Now().UTC().Add(-s.ttl)

	var expired []model.MemoryID
	for id, mem := range s.memories {
		if mem.Meta.Timestamp.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.recordMap.Delete(id)
	}
}
