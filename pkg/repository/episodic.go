package repository

import (
	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// DefaultEpisodeID is used when a memory is added without an episode.
const DefaultEpisodeID = "default"

// EpisodicConfig configures the episodic tier.
type EpisodicConfig struct {
	// Capacity is an advisory retention bound; the episodic tier never
	// evicts on its own. Default: 500.
	Capacity int `yaml:"capacity"`
}

func (c EpisodicConfig) withDefaults() EpisodicConfig {
	if c.Capacity <= 0 {
		c.Capacity = 500
	}
	return c
}

// Episodic stores event sequences. Each episode is an ordered list of
// record ids where every new record links back to the previous one: the new
// record's parent is the previous id and the previous record gains the new
// id as a child.
type Episodic struct {
	recordMap
	capacity int
	episodes map[string][]model.MemoryID
}

// NewEpisodic creates an episodic tier store.
func NewEpisodic(cfg EpisodicConfig) *Episodic {
	cfg = cfg.withDefaults()
	return &Episodic{
		recordMap: newRecordMap(),
		capacity:  cfg.Capacity,
		episodes:  make(map[string][]model.MemoryID),
	}
}

func (e *Episodic) Name() model.TierName {
	return model.TierEpisodic
}

// Add appends the record to its episode and chains it to the episode's
// previous record.
func (e *Episodic) Add(content any, opts ...model.AddOption) (*model.Memory, error) {
	spec := model.NewAddSpec(opts...)
	episodeID := spec.EpisodeID
	if episodeID == "" {
		episodeID = DefaultEpisodeID
	}

	mem, err := model.NewMemory(model.TierEpisodic, content, model.Metadata{
		ImportanceScore: spec.ImportanceOr(0.6),
		DecayRate:       spec.DecayRateOr(0.01),
		Tags:            spec.Tags,
		Source:          spec.Source,
		AgentID:         spec.AgentID,
		SessionID:       spec.SessionID,
		CustomFields:    map[string]any{model.FieldEpisodeID: episodeID},
	}, spec.Embedding)
	if err != nil {
		return nil, err
	}

	e.link(episodeID, mem)
	e.insert(mem)
	return mem, nil
}

// Retrieve returns one episode's records most recent first, or all records
// sorted by timestamp descending when no episode is given.
func (e *Episodic) Retrieve(opts model.RetrieveOptions) []*model.Memory {
	var mems []*model.Memory
	if ids, ok := e.episodes[opts.EpisodeID]; opts.EpisodeID != "" && ok {
		mems = e.resolve(ids)
		reverse(mems)
	} else {
		mems = e.All()
		sortByTimestampDesc(mems)
	}

	return takeAccessed(mems, opts.EffectiveLimit())
}

// GetEpisode returns an episode's full chain in insertion order, marking
// every record as accessed.
func (e *Episodic) GetEpisode(episodeID string) []*model.Memory {
	mems := e.resolve(e.episodes[episodeID])
	for _, mem := range mems {
		mem.UpdateAccess()
	}
	return mems
}

// Clear drops all records and episode chains.
func (e *Episodic) Clear() {
	e.recordMap.Clear()
	e.episodes = make(map[string][]model.MemoryID)
}

// Restore inserts a record and re-chains it under the episode recorded in
// its custom fields. Parent/child links already live in the metadata and
// are left as they were saved.
func (e *Episodic) Restore(mem *model.Memory) error {
	if err := mem.Meta.Validate(); err != nil {
		return err
	}

	episodeID := DefaultEpisodeID
	if v, ok := mem.Meta.CustomFields[model.FieldEpisodeID].(string); ok && v != "" {
		episodeID = v
	}
	e.episodes[episodeID] = append(e.episodes[episodeID], mem.ID)
	e.insert(mem)
	return nil
}

// link attaches mem to the tail of the episode chain.
func (e *Episodic) link(episodeID string, mem *model.Memory) {
	ids := e.episodes[episodeID]
	if len(ids) > 0 {
		prev := ids[len(ids)-1]
		mem.Meta.ParentMemoryID = &prev
		if prevMem, ok := e.memories[prev]; ok {
			prevMem.Meta.ChildMemoryIDs = append(prevMem.Meta.ChildMemoryIDs, mem.ID)
		}
	}
	e.episodes[episodeID] = append(ids, mem.ID)
}

// resolve maps episode ids to records, skipping ids that were deleted.
func (e *Episodic) resolve(ids []model.MemoryID) []*model.Memory {
	mems := make([]*model.Memory, 0, len(ids))
	for _, id := range ids {
		if mem, ok := e.memories[id]; ok {
			mems = append(mems, mem)
		}
	}
	return mems
}

func reverse(mems []*model.Memory) {
	for i, j := 0, len(mems)-1; i < j; i, j = i+1, j-1 {
		mems[i], mems[j] = mems[j], mems[i]
	}
}
