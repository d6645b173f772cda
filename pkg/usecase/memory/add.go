package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/utils/logging"
)

// Add stores content in the named tier. When an embedding is supplied (or
// an embedder is attached and the content is text) the record is also put
// into the vector index; index failures only cost searchability, never the
// add. Every add ticks the consolidation counter and, at the threshold,
// runs a consolidation pass.
func (u *UseCase) Add(ctx context.Context, tier model.TierName, content any, opts ...model.AddOption) (*model.Memory, error) {
	store, ok := u.tiers[tier]
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownTier, "cannot add memory", goerr.V("tier", tier))
	}

	spec := model.NewAddSpec(opts...)
	if len(spec.Embedding) == 0 {
		if vec := u.embedContent(ctx, content); vec != nil {
			opts = append(opts, model.WithEmbedding(vec))
		}
	}

	mem, err := store.Add(content, opts...)
	if err != nil {
		return nil, err
	}

	if u.index != nil && len(mem.Embedding) > 0 {
		if !u.index.Add(ctx, mem) {
			logging.From(ctx).Debug("memory not indexed",
				"id", mem.ID, "embedding_len", len(mem.Embedding), "dimension", u.index.Dimension())
		}
	}

	if u.autoConsolidate {
		u.consolidationCounter++
		if u.consolidationCounter >= u.consolidationThreshold {
			stats := u.Consolidate(ctx)
			u.consolidationCounter = 0
			logging.From(ctx).Info("auto-consolidated short-term memory",
				"promoted_to_long_term", stats.PromotedToLongTerm,
				"promoted_to_semantic", stats.PromotedToSemantic,
				"promoted_to_episodic", stats.PromotedToEpisodic,
				"discarded", stats.Discarded)
		}
	}

	return mem, nil
}

// embedContent asks the embedder for a vector, tolerating every failure: a
// record that cannot be embedded is stored unindexed.
func (u *UseCase) embedContent(ctx context.Context, content any) []float32 {
	if u.embedder == nil {
		return nil
	}
	text, ok := content.(string)
	if !ok || text == "" {
		return nil
	}

	vec, err := u.embedder.Embed(ctx, text)
	if err != nil {
		logging.From(ctx).Warn("embedding failed, storing unindexed", "error", err)
		return nil
	}
	return vec
}
