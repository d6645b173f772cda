// Package adapter holds the external collaborators of the memory system:
// embedding providers and the token counter.
package adapter

import "context"

// Embedder turns text into a fixed-length vector. Implementations must
// return vectors of exactly Dimensions() length or an error; callers treat
// a failed embedding as "record not semantically searchable", never fatal.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
