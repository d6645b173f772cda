package memory

import (
	"context"
	"sort"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// Filters narrow semantic search results after the similarity cut. Zero
// fields match everything; Tags matches when any tag overlaps.
type Filters struct {
	MemoryType    model.TierName
	AgentID       string
	SessionID     string
	MinImportance *float64
	MaxImportance *float64
	Tags          []string
}

func (f *Filters) matches(mem *model.Memory) bool {
	if f == nil {
		return true
	}
	if f.MemoryType != "" && mem.Type != f.MemoryType {
		return false
	}
	if f.AgentID != "" && mem.Meta.AgentID != f.AgentID {
		return false
	}
	if f.SessionID != "" && mem.Meta.SessionID != f.SessionID {
		return false
	}
	if f.MinImportance != nil && mem.Meta.ImportanceScore < *f.MinImportance {
		return false
	}
	if f.MaxImportance != nil && mem.Meta.ImportanceScore > *f.MaxImportance {
		return false
	}
	if len(f.Tags) > 0 && !anyTagOverlap(mem.Meta.Tags, f.Tags) {
		return false
	}
	return true
}

func anyTagOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// RetrieveInput describes one coordinator retrieval. Query is free text:
// with an embedder and a vector index attached it drives semantic search
// unless NoSemanticSearch is set, in which case (or when semantic search is
// unavailable) every requested tier is queried directly.
type RetrieveInput struct {
	Query            string
	Tiers            []model.TierName
	Limit            int
	NoSemanticSearch bool
	Filters          *Filters

	EpisodeID string   // episodic tier only
	Concepts  []string // semantic tier only
	Procedure string   // procedural tier only
}

func (in RetrieveInput) effectiveLimit() int {
	if in.Limit <= 0 {
		return model.DefaultRetrieveLimit
	}
	return in.Limit
}

// Retrieve gathers candidates either from the vector index or from the
// requested tiers, deduplicates by id (first hit wins), ranks by relevance
// and returns the top results.
func (u *UseCase) Retrieve(ctx context.Context, in RetrieveInput) []*model.Memory {
	limit := in.effectiveLimit()

	var candidates []*model.Memory
	if !in.NoSemanticSearch && u.index != nil && u.embedder != nil && in.Query != "" {
		candidates = u.semanticCandidates(ctx, in.Query, limit, in.Filters)
	} else {
		candidates = u.tierCandidates(in, limit)
	}

	seen := make(map[model.MemoryID]bool, len(candidates))
	unique := make([]*model.Memory, 0, len(candidates))
	for _, mem := range candidates {
		if seen[mem.ID] {
			continue
		}
		seen[mem.ID] = true
		unique = append(unique, mem)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Relevance(model.DefaultRelevanceBase) > unique[j].Relevance(model.DefaultRelevanceBase)
	})

	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// semanticCandidates searches the vector index with double the limit so
// post-filtering still has enough to choose from.
func (u *UseCase) semanticCandidates(ctx context.Context, query string, limit int, filters *Filters) []*model.Memory {
	vec, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil
	}

	hits := u.index.Search(ctx, vec, limit*2)
	if filters == nil {
		return hits
	}

	filtered := make([]*model.Memory, 0, len(hits))
	for _, mem := range hits {
		if filters.matches(mem) {
			filtered = append(filtered, mem)
		}
	}
	return filtered
}

func (u *UseCase) tierCandidates(in RetrieveInput, limit int) []*model.Memory {
	tiers := in.Tiers
	if len(tiers) == 0 {
		tiers = u.order
	}

	var candidates []*model.Memory
	for _, name := range tiers {
		tier, ok := u.tiers[name]
		if !ok {
			continue
		}
		candidates = append(candidates, tier.Retrieve(model.RetrieveOptions{
			Query:     in.Query,
			Limit:     limit,
			EpisodeID: in.EpisodeID,
			Concepts:  in.Concepts,
			Procedure: in.Procedure,
		})...)
	}
	return candidates
}
