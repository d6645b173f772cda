package vector

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

const chromemCollection = "memories"

// Chromem backs the Index contract with chromem-go's embedded vector
// database. chromem-go has no in-place update or delete, so both rebuild the
// collection from the surviving records. Snapshot is unsupported: the
// collection cannot be dumped back out, so snapshots written with this
// backend carry a null vector store.
type Chromem struct {
	dimension int
	db        *chromem.DB
	col       *chromem.Collection
	memories  map[model.MemoryID]*model.Memory
	ids       []model.MemoryID
}

// NewChromem creates a chromem-go backed index.
func NewChromem(dimension int) (*Chromem, error) {
	if dimension <= 0 {
		dimension = DefaultDimension
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return nil, err
	}

	return &Chromem{
		dimension: dimension,
		db:        db,
		col:       col,
		memories:  make(map[model.MemoryID]*model.Memory),
	}, nil
}

func (x *Chromem) Add(ctx context.Context, mem *model.Memory) bool {
	if len(mem.Embedding) != x.dimension {
		return false
	}
	if _, ok := x.memories[mem.ID]; ok {
		return false
	}

	if err := x.col.AddDocument(ctx, chromem.Document{
		ID:        string(mem.ID),
		Embedding: mem.Embedding,
		Content:   contentText(mem.Content),
	}); err != nil {
		return false
	}

	x.memories[mem.ID] = mem
	x.ids = append(x.ids, mem.ID)
	return true
}

func (x *Chromem) Update(ctx context.Context, mem *model.Memory) bool {
	if _, ok := x.memories[mem.ID]; !ok {
		return false
	}
	if len(mem.Embedding) != x.dimension {
		return false
	}

	x.memories[mem.ID] = mem
	return x.rebuild(ctx) == nil
}

func (x *Chromem) Delete(ctx context.Context, id model.MemoryID) bool {
	if _, ok := x.memories[id]; !ok {
		return false
	}

	delete(x.memories, id)
	for i, existing := range x.ids {
		if existing == id {
			x.ids = append(x.ids[:i], x.ids[i+1:]...)
			break
		}
	}
	return x.rebuild(ctx) == nil
}

func (x *Chromem) Search(ctx context.Context, query []float32, limit int) []*model.Memory {
	hits := x.SearchWithScores(ctx, query, limit, -1)
	mems := make([]*model.Memory, 0, len(hits))
	for _, hit := range hits {
		mems = append(mems, hit.Memory)
	}
	return mems
}

func (x *Chromem) SearchWithScores(ctx context.Context, query []float32, limit int, threshold float64) []Scored {
	if len(x.memories) == 0 || len(query) != x.dimension {
		return nil
	}

	// chromem rejects nResults larger than the collection
	n := limit
	if n < 0 || n > len(x.memories) {
		n = len(x.memories)
	}

	results, err := x.col.QueryEmbedding(ctx, query, n, nil, nil)
	if err != nil {
		return nil
	}

	hits := make([]Scored, 0, len(results))
	for _, result := range results {
		score := float64(result.Similarity)
		if score < threshold {
			continue
		}
		mem, ok := x.memories[model.MemoryID(result.ID)]
		if !ok {
			continue
		}
		mem.UpdateAccess()
		hits = append(hits, Scored{Memory: mem, Score: score})
	}
	return hits
}

func (x *Chromem) Size() int {
	return len(x.memories)
}

func (x *Chromem) Clear() {
	x.memories = make(map[model.MemoryID]*model.Memory)
	x.ids = nil
	_ = x.rebuild(context.Background())
}

func (x *Chromem) Dimension() int {
	return x.dimension
}

// Snapshot is unsupported on this backend.
func (x *Chromem) Snapshot() *model.VectorSnapshot {
	return nil
}

// Restore repopulates the collection by re-adding every snapshot record.
func (x *Chromem) Restore(ctx context.Context, snap *model.VectorSnapshot) error {
	x.Clear()
	if snap == nil {
		return nil
	}

	if snap.Dimension > 0 {
		x.dimension = snap.Dimension
	}
	for _, mem := range snap.Memories {
		if !x.Add(ctx, mem) {
			return goerr.Wrap(model.ErrDimensionMismatch, "snapshot embedding length mismatch",
				goerr.V("id", mem.ID), goerr.V("got", len(mem.Embedding)), goerr.V("want", x.dimension))
		}
	}
	return nil
}

// rebuild recreates the collection from the current record set.
func (x *Chromem) rebuild(ctx context.Context) error {
	if err := x.db.DeleteCollection(chromemCollection); err != nil {
		return err
	}
	col, err := x.db.CreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return err
	}
	x.col = col

	for _, id := range x.ids {
		mem := x.memories[id]
		if err := x.col.AddDocument(ctx, chromem.Document{
			ID:        string(id),
			Embedding: mem.Embedding,
			Content:   contentText(mem.Content),
		}); err != nil {
			return err
		}
	}
	return nil
}

// contentText renders record content for chromem, which requires either a
// document body or an embedding and only stores strings.
func contentText(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	return ""
}
