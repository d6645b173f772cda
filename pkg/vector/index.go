// Package vector provides cosine-similarity search over memory embeddings.
// Two backends exist behind the same contract: Dense, an exact in-memory
// matrix scan, and Chromem, built on chromem-go.
package vector

import (
	"context"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// Scored pairs a search hit with its cosine similarity.
type Scored struct {
	Memory *model.Memory
	Score  float64
}

// Index is a fixed-dimension similarity index over memory records. Mutating
// operations report success as a bool and never partially apply: a rejected
// record leaves the index untouched. Implementations hold plain mutable
// state with no locking; callers own synchronization.
type Index interface {
	// Add indexes a record. Fails when the record has no embedding or the
	// embedding length differs from the index dimension.
	Add(ctx context.Context, mem *model.Memory) bool

	// Update replaces a record and its vector in place. Fails on unknown
	// id or dimension mismatch.
	Update(ctx context.Context, mem *model.Memory) bool

	// Delete removes a record. Fails on unknown id.
	Delete(ctx context.Context, id model.MemoryID) bool

	// Search returns up to limit records by descending cosine similarity
	// to the query, marking each returned record as accessed.
	Search(ctx context.Context, query []float32, limit int) []*model.Memory

	// SearchWithScores is Search with the similarity attached, dropping
	// hits below threshold before the top-limit cut.
	SearchWithScores(ctx context.Context, query []float32, limit int, threshold float64) []Scored

	// Size returns the number of indexed records.
	Size() int

	// Clear removes everything.
	Clear()

	// Dimension returns the configured embedding length.
	Dimension() int

	// Snapshot dumps the index for serialization. Backends that cannot
	// dump themselves return nil.
	Snapshot() *model.VectorSnapshot

	// Restore replaces the index contents with a previously dumped
	// snapshot. A nil snapshot just clears.
	Restore(ctx context.Context, snap *model.VectorSnapshot) error
}
