package repository

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// LongTermConfig configures the long-term tier.
type LongTermConfig struct {
	// Capacity is the maximum number of records; the lowest-relevance
	// record is evicted to make room. Default: 1000.
	Capacity int `yaml:"capacity"`

	// ImportanceThreshold is the minimum importance a record needs to be
	// admitted at all. Default: 0.4.
	ImportanceThreshold float64 `yaml:"importance_threshold"`
}

func (c LongTermConfig) withDefaults() LongTermConfig {
	if c.Capacity <= 0 {
		c.Capacity = 1000
	}
	if c.ImportanceThreshold <= 0 {
		c.ImportanceThreshold = 0.4
	}
	return c
}

// LongTerm keeps durable knowledge with importance-gated admission and
// relevance-based eviction.
type LongTerm struct {
	recordMap
	capacity  int
	threshold float64
}

// NewLongTerm creates a long-term tier store.
func NewLongTerm(cfg LongTermConfig) *LongTerm {
	cfg = cfg.withDefaults()
	return &LongTerm{
		recordMap: newRecordMap(),
		capacity:  cfg.Capacity,
		threshold: cfg.ImportanceThreshold,
	}
}

func (l *LongTerm) Name() model.TierName {
	return model.TierLongTerm
}

// Add rejects records below the importance threshold with
// model.ErrBelowThreshold and leaves the tier untouched. On overflow the
// record with the lowest current relevance is evicted first; ties keep the
// earliest-inserted candidate.
func (l *LongTerm) Add(content any, opts ...model.AddOption) (*model.Memory, error) {
	spec := model.NewAddSpec(opts...)
	importance := spec.ImportanceOr(0.5)

	if importance < l.threshold {
		return nil, goerr.Wrap(model.ErrBelowThreshold, "long-term admission rejected",
			goerr.V("importance", importance), goerr.V("threshold", l.threshold))
	}

	mem, err := model.NewMemory(model.TierLongTerm, content, model.Metadata{
		ImportanceScore: importance,
		DecayRate:       spec.DecayRateOr(0.001),
		Tags:            spec.Tags,
		Source:          spec.Source,
		AgentID:         spec.AgentID,
		SessionID:       spec.SessionID,
	}, spec.Embedding)
	if err != nil {
		return nil, err
	}

	if l.Size() >= l.capacity {
		l.evictLeastRelevant()
	}

	l.insert(mem)
	return mem, nil
}

// Retrieve returns records ranked by relevance, highest first.
func (l *LongTerm) Retrieve(opts model.RetrieveOptions) []*model.Memory {
	mems := l.All()
	sortByRelevanceDesc(mems)
	return takeAccessed(mems, opts.EffectiveLimit())
}

// Restore inserts a record as-is, bypassing the admission threshold.
func (l *LongTerm) Restore(mem *model.Memory) error {
	if err := mem.Meta.Validate(); err != nil {
		return err
	}
	l.insert(mem)
	return nil
}

func (l *LongTerm) evictLeastRelevant() {
	if len(l.order) == 0 {
		return
	}

	victim := l.order[0]
	lowest := l.memories[victim].Relevance(model.DefaultRelevanceBase)
	for _, id := range l.order[1:] {
		if score := l.memories[id].Relevance(model.DefaultRelevanceBase); score < lowest {
			victim, lowest = id, score
		}
	}

	l.recordMap.Delete(victim)
}
