package model

// Snapshot is the JSON document produced by UseCase.Save and consumed by
// UseCase.Load. Timestamps inside serialize as RFC 3339 UTC, which sorts
// lexicographically.
type Snapshot struct {
	Memories    map[TierName][]*Memory `json:"memories"`
	VectorStore *VectorSnapshot        `json:"vector_store"`
}

// VectorSnapshot is the dump of a vector index: the record list, the id list
// and the raw vector matrix in matching order. Backends that cannot dump
// themselves (e.g. the chromem one) leave it null in the snapshot.
type VectorSnapshot struct {
	Dimension  int         `json:"dimension"`
	Memories   []*Memory   `json:"memories"`
	MemoryIDs  []MemoryID  `json:"memory_ids"`
	Embeddings [][]float32 `json:"embeddings"`
}
