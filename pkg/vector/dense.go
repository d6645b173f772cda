package vector

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// DefaultDimension matches the sentence-transformer footprint commonly used
// for lightweight semantic search.
const DefaultDimension = 384

// similarityEpsilon guards the norm division for zero vectors.
const similarityEpsilon = 1e-8

// Dense is an exact cosine-similarity index: an id-to-record map, the ids in
// insertion order and one matrix row per id. Every search scans the whole
// matrix, which is fine for the record counts the tiers hold.
type Dense struct {
	dimension int
	memories  map[model.MemoryID]*model.Memory
	ids       []model.MemoryID
	rows      [][]float32
}

// NewDense creates an exact index for vectors of the given length.
func NewDense(dimension int) *Dense {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Dense{
		dimension: dimension,
		memories:  make(map[model.MemoryID]*model.Memory),
	}
}

func (x *Dense) Add(_ context.Context, mem *model.Memory) bool {
	if len(mem.Embedding) != x.dimension {
		return false
	}

	x.memories[mem.ID] = mem
	x.ids = append(x.ids, mem.ID)
	x.rows = append(x.rows, mem.Embedding)
	return true
}

func (x *Dense) Update(_ context.Context, mem *model.Memory) bool {
	if _, ok := x.memories[mem.ID]; !ok {
		return false
	}
	if len(mem.Embedding) != x.dimension {
		return false
	}

	x.memories[mem.ID] = mem
	for i, id := range x.ids {
		if id == mem.ID {
			x.rows[i] = mem.Embedding
			break
		}
	}
	return true
}

func (x *Dense) Delete(_ context.Context, id model.MemoryID) bool {
	if _, ok := x.memories[id]; !ok {
		return false
	}

	delete(x.memories, id)
	for i, existing := range x.ids {
		if existing == id {
			x.ids = append(x.ids[:i], x.ids[i+1:]...)
			x.rows = append(x.rows[:i], x.rows[i+1:]...)
			break
		}
	}
	return true
}

func (x *Dense) Search(ctx context.Context, query []float32, limit int) []*model.Memory {
	hits := x.SearchWithScores(ctx, query, limit, -1)
	mems := make([]*model.Memory, 0, len(hits))
	for _, hit := range hits {
		mems = append(mems, hit.Memory)
	}
	return mems
}

func (x *Dense) SearchWithScores(_ context.Context, query []float32, limit int, threshold float64) []Scored {
	if len(x.rows) == 0 || len(query) != x.dimension {
		return nil
	}

	q := normalize(query)
	hits := make([]Scored, 0, len(x.rows))
	for i, row := range x.rows {
		score := dot(normalize(row), q)
		if score < threshold {
			continue
		}
		hits = append(hits, Scored{Memory: x.memories[x.ids[i]], Score: score})
	}

	// stable keeps insertion order on equal scores
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for _, hit := range hits {
		hit.Memory.UpdateAccess()
	}
	return hits
}

func (x *Dense) Size() int {
	return len(x.memories)
}

func (x *Dense) Clear() {
	x.memories = make(map[model.MemoryID]*model.Memory)
	x.ids = nil
	x.rows = nil
}

func (x *Dense) Dimension() int {
	return x.dimension
}

// Snapshot dumps the records in insertion order alongside the raw matrix.
func (x *Dense) Snapshot() *model.VectorSnapshot {
	snap := &model.VectorSnapshot{
		Dimension:  x.dimension,
		Memories:   make([]*model.Memory, 0, len(x.ids)),
		MemoryIDs:  make([]model.MemoryID, len(x.ids)),
		Embeddings: make([][]float32, len(x.ids)),
	}
	copy(snap.MemoryIDs, x.ids)
	copy(snap.Embeddings, x.rows)
	for _, id := range x.ids {
		snap.Memories = append(snap.Memories, x.memories[id])
	}
	return snap
}

// Restore replaces the index with the snapshot contents. The snapshot's
// dimension wins; rows of any other length are rejected wholesale.
func (x *Dense) Restore(_ context.Context, snap *model.VectorSnapshot) error {
	x.Clear()
	if snap == nil {
		return nil
	}

	if snap.Dimension > 0 {
		x.dimension = snap.Dimension
	}
	for _, mem := range snap.Memories {
		if len(mem.Embedding) != x.dimension {
			return goerr.Wrap(model.ErrDimensionMismatch, "snapshot embedding length mismatch",
				goerr.V("id", mem.ID), goerr.V("got", len(mem.Embedding)), goerr.V("want", x.dimension))
		}
		x.memories[mem.ID] = mem
		x.ids = append(x.ids, mem.ID)
		x.rows = append(x.rows, mem.Embedding)
	}
	return nil
}

func normalize(v []float32) []float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum) + similarityEpsilon

	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f) / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
