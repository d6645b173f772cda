package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrScoreOutOfRange   = goerr.New("score must be within [0, 1]")
	ErrBelowThreshold    = goerr.New("importance below admission threshold")
	ErrUnknownTier       = goerr.New("unknown memory tier")
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

type TierName string

const (
	TierShortTerm  TierName = "short_term"
	TierLongTerm   TierName = "long_term"
	TierEpisodic   TierName = "episodic"
	TierSemantic   TierName = "semantic"
	TierProcedural TierName = "procedural"
)

// Validate checks if the tier name is one of the five known tiers
func (t TierName) Validate() error {
	switch t {
	case TierShortTerm, TierLongTerm, TierEpisodic, TierSemantic, TierProcedural:
		return nil
	default:
		return goerr.Wrap(ErrUnknownTier, "invalid tier name", goerr.V("tier", t))
	}
}

// Custom field keys used by the tier stores.
const (
	FieldEpisodeID      = "episode_id"
	FieldConcepts       = "concepts"
	FieldProcedureName  = "procedure_name"
	FieldSteps          = "steps"
	FieldSkillLevel     = "skill_level"
	FieldExecutionCount = "execution_count"
	FieldSuccessRate    = "success_rate"
)

// DefaultRelevanceBase is the base score used by relevance ranking when the
// caller has no better prior.
const DefaultRelevanceBase = 0.5

// Metadata holds the bookkeeping attached to every memory record.
// ImportanceScore and DecayRate are constrained to [0, 1].
type Metadata struct {
	Timestamp       time.Time             `json:"timestamp"`
	AccessCount     int                   `json:"access_count"`
	LastAccessed    *time.Time            `json:"last_accessed,omitempty"`
	ImportanceScore float64               `json:"importance_score"`
	DecayRate       float64               `json:"decay_rate"`
	Tags            []string              `json:"tags"`
	Source          string                `json:"source,omitempty"`
	AgentID         string                `json:"agent_id,omitempty"`
	SessionID       string                `json:"session_id,omitempty"`
	ParentMemoryID  *MemoryID             `json:"parent_memory_id,omitempty"`
	ChildMemoryIDs  []MemoryID            `json:"child_memory_ids,omitempty"`
	Relations       map[string][]MemoryID `json:"relations,omitempty"`
	CustomFields    map[string]any        `json:"custom_fields,omitempty"`
}

// Validate checks the metadata score ranges
func (m *Metadata) Validate() error {
	if m.ImportanceScore < 0 || m.ImportanceScore > 1 {
		return goerr.Wrap(ErrScoreOutOfRange, "invalid importance_score", goerr.V("importance_score", m.ImportanceScore))
	}
	if m.DecayRate < 0 || m.DecayRate > 1 {
		return goerr.Wrap(ErrScoreOutOfRange, "invalid decay_rate", goerr.V("decay_rate", m.DecayRate))
	}
	return nil
}

// Memory is a single record held by one tier. A record keeps its ID for its
// whole life; moving content between tiers always creates a new record.
type Memory struct {
	ID        MemoryID  `json:"id"`
	Content   any       `json:"content"`
	Embedding []float32 `json:"embedding"`
	Type      TierName  `json:"memory_type"`
	Meta      Metadata  `json:"metadata"`
}

// NewMemory constructs a record with a fresh ID after validating the
// metadata score ranges.
func NewMemory(tier TierName, content any, meta Metadata, embedding []float32) (*Memory, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	return &Memory{
		ID:        NewMemoryID(),
		Content:   content,
		Embedding: embedding,
		Type:      tier,
		Meta:      meta,
	}, nil
}

// UpdateAccess records a successful retrieval of this memory.
func (m *Memory) UpdateAccess() {
	m.Meta.AccessCount++
	now := time.Now().UTC()
	m.Meta.LastAccessed = &now
}

// Relevance computes the time-decayed, access-weighted score used for
// ranking and eviction. It is pure: no access bookkeeping is touched.
//
//	base * decay * (0.5 + 0.3*importance + 0.2*min(1, access/100))
//
// where decay is 1/(1 + decay_rate * hours_since_access) for records that
// have been accessed at least once, and 1.0 otherwise.
func (m *Memory) Relevance(base float64) float64 {
	decay := 1.0
	if m.Meta.LastAccessed != nil {
		elapsed := time.Since(*m.Meta.LastAccessed).Seconds()
		decay = 1.0 / (1.0 + m.Meta.DecayRate*elapsed/3600.0)
	}

	accessWeight := math.Min(1.0, float64(m.Meta.AccessCount)/100.0)

	return base * decay * (0.5 + 0.3*m.Meta.ImportanceScore + 0.2*accessWeight)
}

// AddRelation links this memory to another under the given relation type.
// Insertion order is preserved and duplicates are ignored.
func (m *Memory) AddRelation(relationType string, id MemoryID) {
	if m.Meta.Relations == nil {
		m.Meta.Relations = make(map[string][]MemoryID)
	}
	for _, existing := range m.Meta.Relations[relationType] {
		if existing == id {
			return
		}
	}
	m.Meta.Relations[relationType] = append(m.Meta.Relations[relationType], id)
}

// RelatedIDs returns the ids this memory references, either for one relation
// type or for all of them (insertion order preserved per type).
func (m *Memory) RelatedIDs(relationType string) []MemoryID {
	if relationType != "" {
		return m.Meta.Relations[relationType]
	}

	var ids []MemoryID
	for _, related := range m.Meta.Relations {
		ids = append(ids, related...)
	}
	return ids
}

// InverseRelation returns the relation type recorded on the far side of a
// symmetric association.
func InverseRelation(relationType string) string {
	return "inverse_" + relationType
}
