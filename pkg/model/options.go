package model

// AddSpec carries the optional attributes of a new memory. Tiers fill in
// their own defaults for anything left unset, so the numeric fields are
// pointers to tell "not given" apart from an explicit zero.
type AddSpec struct {
	Importance *float64
	DecayRate  *float64
	SkillLevel *float64

	Tags      []string
	Source    string
	AgentID   string
	SessionID string
	Embedding []float32

	EpisodeID string   // episodic only
	Concepts  []string // semantic only
	Procedure string   // procedural only
	Steps     []string // procedural only
}

// AddOption configures an AddSpec.
type AddOption func(*AddSpec)

// NewAddSpec builds an AddSpec from options.
func NewAddSpec(opts ...AddOption) *AddSpec {
	spec := &AddSpec{}
	for _, opt := range opts {
		opt(spec)
	}
	return spec
}

// ImportanceOr returns the requested importance or the tier default.
func (s *AddSpec) ImportanceOr(def float64) float64 {
	if s.Importance != nil {
		return *s.Importance
	}
	return def
}

// DecayRateOr returns the requested decay rate or the tier default.
func (s *AddSpec) DecayRateOr(def float64) float64 {
	if s.DecayRate != nil {
		return *s.DecayRate
	}
	return def
}

// SkillLevelOr returns the requested skill level or the tier default.
func (s *AddSpec) SkillLevelOr(def float64) float64 {
	if s.SkillLevel != nil {
		return *s.SkillLevel
	}
	return def
}

// WithImportance sets the importance score of the new memory.
func WithImportance(v float64) AddOption {
	return func(s *AddSpec) { s.Importance = &v }
}

// WithDecayRate sets the decay rate of the new memory.
func WithDecayRate(v float64) AddOption {
	return func(s *AddSpec) { s.DecayRate = &v }
}

// WithTags attaches free-form tags.
func WithTags(tags ...string) AddOption {
	return func(s *AddSpec) { s.Tags = append(s.Tags, tags...) }
}

// WithSource records where the memory came from.
func WithSource(source string) AddOption {
	return func(s *AddSpec) { s.Source = source }
}

// WithAgentID records the owning agent.
func WithAgentID(agentID string) AddOption {
	return func(s *AddSpec) { s.AgentID = agentID }
}

// WithSessionID records the originating session.
func WithSessionID(sessionID string) AddOption {
	return func(s *AddSpec) { s.SessionID = sessionID }
}

// WithEmbedding attaches a pre-computed embedding vector.
func WithEmbedding(embedding []float32) AddOption {
	return func(s *AddSpec) { s.Embedding = embedding }
}

// WithEpisode assigns the memory to an episode (episodic tier).
func WithEpisode(episodeID string) AddOption {
	return func(s *AddSpec) { s.EpisodeID = episodeID }
}

// WithConcepts indexes the memory under concepts (semantic tier).
func WithConcepts(concepts ...string) AddOption {
	return func(s *AddSpec) { s.Concepts = append(s.Concepts, concepts...) }
}

// WithProcedure names the procedure and its steps (procedural tier).
func WithProcedure(name string, steps ...string) AddOption {
	return func(s *AddSpec) {
		s.Procedure = name
		s.Steps = append(s.Steps, steps...)
	}
}

// WithSkillLevel sets the initial skill level (procedural tier).
func WithSkillLevel(v float64) AddOption {
	return func(s *AddSpec) { s.SkillLevel = &v }
}

// RetrieveOptions narrows a tier retrieval. Each tier reads only the fields
// that apply to it and ignores the rest.
type RetrieveOptions struct {
	Query     string
	Limit     int
	EpisodeID string   // episodic
	Concepts  []string // semantic
	Procedure string   // procedural
}

// DefaultRetrieveLimit is used when RetrieveOptions.Limit is zero or negative.
const DefaultRetrieveLimit = 10

// EffectiveLimit returns the retrieval limit with the default applied.
func (o RetrieveOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultRetrieveLimit
	}
	return o.Limit
}
