// Package memory provides the coordinator over the five tier stores, the
// vector index and the embedder: tiered add/retrieve, consolidation,
// associations and snapshots.
package memory

import (
	"github.com/hanishkeloth/agentmemory/pkg/adapter"
	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/repository"
	"github.com/hanishkeloth/agentmemory/pkg/vector"
)

// DefaultConsolidationThreshold is how many adds trigger an automatic
// consolidation pass.
const DefaultConsolidationThreshold = 5

// Config carries the per-tier settings and the coordinator knobs.
type Config struct {
	ShortTerm  repository.ShortTermConfig  `yaml:"short_term"`
	LongTerm   repository.LongTermConfig   `yaml:"long_term"`
	Episodic   repository.EpisodicConfig   `yaml:"episodic"`
	Semantic   repository.SemanticConfig   `yaml:"semantic"`
	Procedural repository.ProceduralConfig `yaml:"procedural"`

	VectorDimension        int `yaml:"vector_dimension"`
	ConsolidationThreshold int `yaml:"consolidation_threshold"`
}

// UseCase coordinates the tier stores. All state is instance-owned: several
// coordinators can live side by side without sharing anything.
type UseCase struct {
	tiers map[model.TierName]repository.Tier
	order []model.TierName

	shortTerm  *repository.ShortTerm
	longTerm   *repository.LongTerm
	episodic   *repository.Episodic
	semantic   *repository.Semantic
	procedural *repository.Procedural

	index    vector.Index
	embedder adapter.Embedder

	autoConsolidate        bool
	consolidationThreshold int
	consolidationCounter   int
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithVectorIndex attaches a similarity index; without one, records are
// never semantically searchable.
func WithVectorIndex(index vector.Index) Option {
	return func(uc *UseCase) {
		uc.index = index
	}
}

// WithEmbedder attaches an embedding provider used for records added
// without an explicit embedding and for query-text search.
func WithEmbedder(embedder adapter.Embedder) Option {
	return func(uc *UseCase) {
		uc.embedder = embedder
	}
}

// WithoutAutoConsolidate disables the add-counter consolidation trigger;
// Consolidate can still be called explicitly.
func WithoutAutoConsolidate() Option {
	return func(uc *UseCase) {
		uc.autoConsolidate = false
	}
}

// New creates a coordinator with all five tiers.
func New(cfg Config, opts ...Option) *UseCase {
	uc := &UseCase{
		shortTerm:              repository.NewShortTerm(cfg.ShortTerm),
		longTerm:               repository.NewLongTerm(cfg.LongTerm),
		episodic:               repository.NewEpisodic(cfg.Episodic),
		semantic:               repository.NewSemantic(cfg.Semantic),
		procedural:             repository.NewProcedural(cfg.Procedural),
		autoConsolidate:        true,
		consolidationThreshold: cfg.ConsolidationThreshold,
	}
	if uc.consolidationThreshold <= 0 {
		uc.consolidationThreshold = DefaultConsolidationThreshold
	}

	uc.tiers = map[model.TierName]repository.Tier{
		model.TierShortTerm:  uc.shortTerm,
		model.TierLongTerm:   uc.longTerm,
		model.TierEpisodic:   uc.episodic,
		model.TierSemantic:   uc.semantic,
		model.TierProcedural: uc.procedural,
	}
	uc.order = repository.TierOrder

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Tier returns one tier store for direct access.
func (u *UseCase) Tier(name model.TierName) (repository.Tier, bool) {
	tier, ok := u.tiers[name]
	return tier, ok
}
