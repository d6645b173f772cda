package repository

import (
	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// SemanticConfig configures the semantic tier.
type SemanticConfig struct {
	// Capacity is an advisory retention bound; the semantic tier never
	// evicts on its own. Default: 2000.
	Capacity int `yaml:"capacity"`
}

func (c SemanticConfig) withDefaults() SemanticConfig {
	if c.Capacity <= 0 {
		c.Capacity = 2000
	}
	return c
}

// relationPair is one directed edge in the relationship table, recorded in
// the order the association was made.
type relationPair struct {
	From model.MemoryID
	To   model.MemoryID
}

// Semantic stores conceptual knowledge. Records are indexed by the concepts
// they were added under, and pairs of records can be linked with typed
// relationships.
type Semantic struct {
	recordMap
	capacity      int
	concepts      map[string][]model.MemoryID
	relationships map[string][]relationPair
}

// NewSemantic creates a semantic tier store.
func NewSemantic(cfg SemanticConfig) *Semantic {
	cfg = cfg.withDefaults()
	return &Semantic{
		recordMap:     newRecordMap(),
		capacity:      cfg.Capacity,
		concepts:      make(map[string][]model.MemoryID),
		relationships: make(map[string][]relationPair),
	}
}

func (s *Semantic) Name() model.TierName {
	return model.TierSemantic
}

// Add stores a record indexed under its concepts. The concepts are also
// prepended to the record's tags.
func (s *Semantic) Add(content any, opts ...model.AddOption) (*model.Memory, error) {
	spec := model.NewAddSpec(opts...)

	tags := make([]string, 0, len(spec.Concepts)+len(spec.Tags))
	tags = append(tags, spec.Concepts...)
	tags = append(tags, spec.Tags...)

	mem, err := model.NewMemory(model.TierSemantic, content, model.Metadata{
		ImportanceScore: spec.ImportanceOr(0.7),
		DecayRate:       spec.DecayRateOr(0.0001),
		Tags:            tags,
		Source:          spec.Source,
		AgentID:         spec.AgentID,
		SessionID:       spec.SessionID,
		CustomFields:    map[string]any{model.FieldConcepts: spec.Concepts},
	}, spec.Embedding)
	if err != nil {
		return nil, err
	}

	s.index(spec.Concepts, mem.ID)
	s.insert(mem)
	return mem, nil
}

// AddRelationship links two records under relationType. The edge is
// recorded even when one or both records are missing; each side that does
// exist gains the relation on its metadata, the far side under the inverse
// type.
func (s *Semantic) AddRelationship(a, b model.MemoryID, relationType string) {
	s.relationships[relationType] = append(s.relationships[relationType], relationPair{From: a, To: b})

	if mem, ok := s.memories[a]; ok {
		mem.AddRelation(relationType, b)
	}
	if mem, ok := s.memories[b]; ok {
		mem.AddRelation(model.InverseRelation(relationType), a)
	}
}

// Retrieve returns records matching any of the requested concepts, or all
// records when no concepts are given, sorted by relevance descending.
func (s *Semantic) Retrieve(opts model.RetrieveOptions) []*model.Memory {
	var mems []*model.Memory
	if len(opts.Concepts) > 0 {
		seen := make(map[model.MemoryID]bool)
		for _, concept := range opts.Concepts {
			for _, id := range s.concepts[concept] {
				if seen[id] {
					continue
				}
				seen[id] = true
				if mem, ok := s.memories[id]; ok {
					mems = append(mems, mem)
				}
			}
		}
	} else {
		mems = s.All()
	}

	sortByRelevanceDesc(mems)
	return takeAccessed(mems, opts.EffectiveLimit())
}

// GetRelated returns the records linked from id. With a relation type only
// that type's links are followed; otherwise every relation on the record is,
// inverse links included.
func (s *Semantic) GetRelated(id model.MemoryID, relationType string) []*model.Memory {
	mem, ok := s.memories[id]
	if !ok {
		return nil
	}

	ids := mem.RelatedIDs(relationType)
	related := make([]*model.Memory, 0, len(ids))
	for _, rid := range ids {
		if rm, ok := s.memories[rid]; ok {
			related = append(related, rm)
		}
	}
	return related
}

// Clear drops all records, the concept index and the relationship table.
func (s *Semantic) Clear() {
	s.recordMap.Clear()
	s.concepts = make(map[string][]model.MemoryID)
	s.relationships = make(map[string][]relationPair)
}

// Restore inserts a record and re-indexes it under the concepts recorded in
// its custom fields.
func (s *Semantic) Restore(mem *model.Memory) error {
	if err := mem.Meta.Validate(); err != nil {
		return err
	}

	s.index(conceptsOf(mem), mem.ID)
	s.insert(mem)
	return nil
}

func (s *Semantic) index(concepts []string, id model.MemoryID) {
	for _, concept := range concepts {
		s.concepts[concept] = append(s.concepts[concept], id)
	}
}

// conceptsOf reads the concept list back from custom fields, tolerating the
// []any form a JSON round trip produces.
func conceptsOf(mem *model.Memory) []string {
	switch v := mem.Meta.CustomFields[model.FieldConcepts].(type) {
	case []string:
		return v
	case []any:
		concepts := make([]string, 0, len(v))
		for _, c := range v {
			if s, ok := c.(string); ok {
				concepts = append(concepts, s)
			}
		}
		return concepts
	default:
		return nil
	}
}
