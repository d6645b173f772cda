package memory

import (
	"context"
	"errors"

	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/utils/logging"
)

// consolidationBatch bounds how many short-term records one pass examines.
const consolidationBatch = 100

// ConsolidationStats tallies one consolidation pass.
type ConsolidationStats struct {
	PromotedToLongTerm int `json:"promoted_to_long_term"`
	PromotedToSemantic int `json:"promoted_to_semantic"`
	PromotedToEpisodic int `json:"promoted_to_episodic"`
	Discarded          int `json:"discarded"`
}

// Consolidate drains short-term memory and routes records by importance:
// 0.7 and above go to long-term, 0.5 and above with tags become semantic
// records (first three tags as concepts), 0.3 and above with a session id
// become episodic records under that session. Promoted records get fresh
// ids. Short-term is cleared unconditionally afterwards, so records no rule
// matched are dropped without being counted as discarded, a loss the
// caller cannot observe. TODO: surface unrouted records in the stats.
func (u *UseCase) Consolidate(ctx context.Context) ConsolidationStats {
	var stats ConsolidationStats

	batch := u.shortTerm.Retrieve(model.RetrieveOptions{Limit: consolidationBatch})
	for _, mem := range batch {
		importance := mem.Meta.ImportanceScore

		switch {
		case importance >= 0.7:
			_, err := u.longTerm.Add(mem.Content,
				model.WithImportance(importance),
				model.WithEmbedding(mem.Embedding),
				model.WithTags(mem.Meta.Tags...),
				model.WithSource(mem.Meta.Source),
				model.WithAgentID(mem.Meta.AgentID),
			)
			switch {
			case err == nil:
				stats.PromotedToLongTerm++
			case errors.Is(err, model.ErrBelowThreshold):
				// threshold above 0.7: the record just ages out
			default:
				logging.From(ctx).Warn("long-term promotion failed",
					"id", mem.ID, "error", err)
			}

		case importance >= 0.5:
			if len(mem.Meta.Tags) == 0 {
				continue
			}
			concepts := mem.Meta.Tags
			if len(concepts) > 3 {
				concepts = concepts[:3]
			}
			if _, err := u.semantic.Add(mem.Content,
				model.WithConcepts(concepts...),
				model.WithImportance(importance),
				model.WithEmbedding(mem.Embedding),
				model.WithSource(mem.Meta.Source),
				model.WithAgentID(mem.Meta.AgentID),
			); err == nil {
				stats.PromotedToSemantic++
			}

		case importance >= 0.3 && mem.Meta.SessionID != "":
			if _, err := u.episodic.Add(mem.Content,
				model.WithEpisode(mem.Meta.SessionID),
				model.WithImportance(importance),
				model.WithEmbedding(mem.Embedding),
				model.WithTags(mem.Meta.Tags...),
				model.WithSource(mem.Meta.Source),
				model.WithAgentID(mem.Meta.AgentID),
			); err == nil {
				stats.PromotedToEpisodic++
			}

		default:
			stats.Discarded++
		}
	}

	u.shortTerm.Clear()
	return stats
}
