package adapter_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hanishkeloth/agentmemory/pkg/adapter"
)

func TestMockDeterminism(t *testing.T) {
	ctx := context.Background()
	embedder := adapter.NewMock(8)
	gt.Equal(t, embedder.Dimensions(), 8)

	a, err := embedder.Embed(ctx, "the same text")
	gt.NoError(t, err)
	b, err := embedder.Embed(ctx, "the same text")
	gt.NoError(t, err)
	gt.Equal(t, a, b)
	gt.A(t, a).Length(8)

	other, err := embedder.Embed(ctx, "different text")
	gt.NoError(t, err)
	gt.NotEqual(t, a, other)
}

func TestMockUnitNorm(t *testing.T) {
	embedder := adapter.NewMock(384)

	vec, err := embedder.Embed(context.Background(), "normalize me")
	gt.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	gt.True(t, math.Abs(math.Sqrt(norm)-1.0) < 1e-5)
}

func TestMockDefaultDimensions(t *testing.T) {
	gt.Equal(t, adapter.NewMock(0).Dimensions(), 384)
}

func TestTokenizerCount(t *testing.T) {
	tokenizer, err := adapter.NewTokenizer()
	if err != nil {
		t.Logf("tiktoken encoding unavailable, fallback mode: %v", err)
	}

	gt.Equal(t, tokenizer.Count(""), 0)
	gt.Number(t, tokenizer.Count("hello world, this is a longer sentence")).GreaterOrEqual(1)
}

func TestTokenizerTruncate(t *testing.T) {
	tokenizer, err := adapter.NewTokenizer()
	if err != nil {
		t.Logf("tiktoken encoding unavailable, fallback mode: %v", err)
	}

	gt.Equal(t, tokenizer.Truncate("anything", 0), "")
	gt.Equal(t, tokenizer.Truncate("short", 100), "short")

	long := "one two three four five six seven eight nine ten"
	cut := tokenizer.Truncate(long, 3)
	gt.True(t, len(cut) < len(long))
}
