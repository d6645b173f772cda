package vector_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/vector"
)

func newIndexed(t *testing.T, embedding []float32) *model.Memory {
	t.Helper()
	mem, err := model.NewMemory(model.TierLongTerm, "indexed", model.Metadata{
		ImportanceScore: 0.5,
		DecayRate:       0.001,
	}, embedding)
	gt.NoError(t, err)
	return mem
}

func TestDenseRejectsBadDimension(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewDense(3)

	gt.False(t, idx.Add(ctx, newIndexed(t, []float32{1, 0})))
	gt.False(t, idx.Add(ctx, newIndexed(t, nil)))
	gt.Equal(t, idx.Size(), 0)

	mem := newIndexed(t, []float32{1, 0, 0})
	gt.True(t, idx.Add(ctx, mem))
	gt.Equal(t, idx.Size(), 1)

	mem.Embedding = []float32{1, 0}
	gt.False(t, idx.Update(ctx, mem))
	gt.False(t, idx.Update(ctx, newIndexed(t, []float32{0, 1, 0})))
}

func TestDenseSearchOrder(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewDense(2)

	east := newIndexed(t, []float32{1, 0})
	north := newIndexed(t, []float32{0, 1})
	diagonal := newIndexed(t, []float32{1, 1})
	gt.True(t, idx.Add(ctx, east))
	gt.True(t, idx.Add(ctx, north))
	gt.True(t, idx.Add(ctx, diagonal))

	hits := idx.Search(ctx, []float32{1, 0.1}, 2)
	gt.A(t, hits).Length(2)
	gt.Equal(t, hits[0].ID, east.ID)
	gt.Equal(t, hits[1].ID, diagonal.ID)
	gt.Equal(t, hits[0].Meta.AccessCount, 1)
}

func TestDenseSearchWithScores(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewDense(2)

	east := newIndexed(t, []float32{1, 0})
	north := newIndexed(t, []float32{0, 1})
	gt.True(t, idx.Add(ctx, east))
	gt.True(t, idx.Add(ctx, north))

	hits := idx.SearchWithScores(ctx, []float32{1, 0}, 10, 0.5)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].Memory.ID, east.ID)
	gt.True(t, math.Abs(hits[0].Score-1.0) < 1e-6)
}

func TestDenseUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewDense(2)

	mem := newIndexed(t, []float32{1, 0})
	gt.True(t, idx.Add(ctx, mem))

	mem.Embedding = []float32{0, 1}
	gt.True(t, idx.Update(ctx, mem))

	hits := idx.SearchWithScores(ctx, []float32{0, 1}, 1, 0.9)
	gt.A(t, hits).Length(1)

	gt.True(t, idx.Delete(ctx, mem.ID))
	gt.False(t, idx.Delete(ctx, mem.ID))
	gt.Equal(t, idx.Size(), 0)
	gt.A(t, idx.Search(ctx, []float32{0, 1}, 1)).Length(0)
}

func TestDenseSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	idx := vector.NewDense(2)

	east := newIndexed(t, []float32{1, 0})
	north := newIndexed(t, []float32{0, 1})
	gt.True(t, idx.Add(ctx, east))
	gt.True(t, idx.Add(ctx, north))

	snap := idx.Snapshot()
	gt.V(t, snap).NotNil()
	gt.Equal(t, snap.Dimension, 2)
	gt.Equal(t, snap.MemoryIDs, []model.MemoryID{east.ID, north.ID})

	restored := vector.NewDense(2)
	gt.NoError(t, restored.Restore(ctx, snap))
	gt.Equal(t, restored.Size(), 2)

	hits := restored.Search(ctx, []float32{1, 0}, 1)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].ID, east.ID)
}

func TestChromemContract(t *testing.T) {
	ctx := context.Background()
	idx, err := vector.NewChromem(2)
	gt.NoError(t, err)

	gt.False(t, idx.Add(ctx, newIndexed(t, []float32{1})))
	gt.Equal(t, idx.Size(), 0)

	east := newIndexed(t, []float32{1, 0})
	north := newIndexed(t, []float32{0, 1})
	gt.True(t, idx.Add(ctx, east))
	gt.True(t, idx.Add(ctx, north))
	gt.Equal(t, idx.Size(), 2)

	hits := idx.Search(ctx, []float32{1, 0.1}, 1)
	gt.A(t, hits).Length(1)
	gt.Equal(t, hits[0].ID, east.ID)

	gt.True(t, idx.Delete(ctx, north.ID))
	gt.Equal(t, idx.Size(), 1)

	gt.Nil(t, idx.Snapshot())

	idx.Clear()
	gt.Equal(t, idx.Size(), 0)
}
