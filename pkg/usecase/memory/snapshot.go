package memory

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// Save writes the whole memory system as one JSON document: every tier's
// records in insertion order plus the vector index dump (null when the
// backend cannot dump itself).
func (u *UseCase) Save(w io.Writer) error {
	snap := model.Snapshot{
		Memories: make(map[model.TierName][]*model.Memory, len(u.order)),
	}
	for _, name := range u.order {
		snap.Memories[name] = u.tiers[name].All()
	}
	if u.index != nil {
		snap.VectorStore = u.index.Snapshot()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return goerr.Wrap(err, "failed to encode snapshot")
	}
	return nil
}

// Load replaces the whole memory system with a snapshot. Everything is
// cleared before any record lands, so a malformed payload can leave the
// coordinator empty: the operation is destructive and not transactional.
func (u *UseCase) Load(ctx context.Context, r io.Reader) error {
	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return goerr.Wrap(err, "failed to decode snapshot")
	}

	u.ClearAll()

	for _, name := range u.order {
		tier := u.tiers[name]
		for _, mem := range snap.Memories[name] {
			if err := tier.Restore(mem); err != nil {
				return goerr.Wrap(err, "failed to restore memory",
					goerr.V("tier", name), goerr.V("id", mem.ID))
			}
		}
	}

	if u.index != nil {
		if err := u.index.Restore(ctx, snap.VectorStore); err != nil {
			return goerr.Wrap(err, "failed to restore vector index")
		}
	}
	return nil
}
