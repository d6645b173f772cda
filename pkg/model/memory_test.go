package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/hanishkeloth/agentmemory/pkg/model"
)

func inDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	gt.True(t, math.Abs(got-want) <= delta)
}

func TestNewMemory(t *testing.T) {
	mem, err := model.NewMemory(model.TierShortTerm, "hello", model.Metadata{
		ImportanceScore: 0.3,
		DecayRate:       0.01,
	}, nil)
	gt.NoError(t, err)
	gt.V(t, mem).NotNil()
	gt.NotEqual(t, mem.ID, model.MemoryID(""))
	gt.Equal(t, mem.Type, model.TierShortTerm)
	gt.Equal(t, mem.Meta.AccessCount, 0)
	gt.Nil(t, mem.Meta.LastAccessed)
	gt.True(t, !mem.Meta.Timestamp.IsZero())

	other, err := model.NewMemory(model.TierShortTerm, "hello", model.Metadata{}, nil)
	gt.NoError(t, err)
	gt.NotEqual(t, other.ID, mem.ID)
}

func TestMetadataValidation(t *testing.T) {
	tests := []struct {
		name       string
		importance float64
		decayRate  float64
		wantErr    bool
	}{
		{name: "defaults", importance: 0.5, decayRate: 0.01, wantErr: false},
		{name: "boundaries", importance: 1.0, decayRate: 0.0, wantErr: false},
		{name: "importance too high", importance: 1.5, decayRate: 0.01, wantErr: true},
		{name: "importance negative", importance: -0.1, decayRate: 0.01, wantErr: true},
		{name: "decay rate too high", importance: 0.5, decayRate: 2.0, wantErr: true},
		{name: "decay rate negative", importance: 0.5, decayRate: -1.0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.NewMemory(model.TierLongTerm, "x", model.Metadata{
				ImportanceScore: tc.importance,
				DecayRate:       tc.decayRate,
			}, nil)
			if tc.wantErr {
				gt.Error(t, err)
				gt.True(t, errors.Is(err, model.ErrScoreOutOfRange))
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestRelevanceNeverAccessed(t *testing.T) {
	mem, err := model.NewMemory(model.TierLongTerm, "fact", model.Metadata{
		ImportanceScore: 0.5,
		DecayRate:       0.01,
	}, nil)
	gt.NoError(t, err)

	// decay factor is 1.0 before the first access:
	// 0.5 * 1.0 * (0.5 + 0.3*0.5 + 0.2*0) = 0.325
	inDelta(t, mem.Relevance(0.5), 0.325, 1e-9)
}

func TestRelevanceDecaysAfterAccess(t *testing.T) {
	mem, err := model.NewMemory(model.TierLongTerm, "fact", model.Metadata{
		ImportanceScore: 0.5,
		DecayRate:       1.0,
	}, nil)
	gt.NoError(t, err)

	fresh := mem.Relevance(0.5)

	hourAgo := time.Now().UTC().Add(-time.Hour)
	mem.Meta.LastAccessed = &hourAgo
	decayed := mem.Relevance(0.5)

	// one hour at decay rate 1.0 halves the decay factor
	gt.Number(t, decayed).Less(fresh)
	inDelta(t, decayed, fresh/2, 1e-3)
}

func TestRelevanceAccessWeight(t *testing.T) {
	mem, err := model.NewMemory(model.TierLongTerm, "fact", model.Metadata{
		ImportanceScore: 0.5,
		DecayRate:       0.0,
	}, nil)
	gt.NoError(t, err)

	mem.Meta.AccessCount = 250
	now := time.Now().UTC()
	mem.Meta.LastAccessed = &now

	// access weight caps at 1.0: 0.5 * (0.5 + 0.15 + 0.2) = 0.425
	inDelta(t, mem.Relevance(0.5), 0.425, 1e-3)
}

func TestUpdateAccess(t *testing.T) {
	mem, err := model.NewMemory(model.TierShortTerm, "note", model.Metadata{}, nil)
	gt.NoError(t, err)

	mem.UpdateAccess()
	mem.UpdateAccess()

	gt.Equal(t, mem.Meta.AccessCount, 2)
	gt.V(t, mem.Meta.LastAccessed).NotNil()
}

func TestAddRelation(t *testing.T) {
	mem, err := model.NewMemory(model.TierSemantic, "fact", model.Metadata{}, nil)
	gt.NoError(t, err)

	a := model.NewMemoryID()
	b := model.NewMemoryID()

	mem.AddRelation("related", a)
	mem.AddRelation("related", b)
	mem.AddRelation("related", a) // duplicate, ignored

	gt.A(t, mem.Meta.Relations["related"]).Length(2)
	gt.Equal(t, mem.Meta.Relations["related"][0], a)
	gt.Equal(t, mem.Meta.Relations["related"][1], b)

	gt.A(t, mem.RelatedIDs("related")).Length(2)
	gt.A(t, mem.RelatedIDs("missing")).Length(0)
}

func TestTierNameValidate(t *testing.T) {
	gt.NoError(t, model.TierEpisodic.Validate())
	gt.Error(t, model.TierName("working").Validate())
}

func TestInverseRelation(t *testing.T) {
	gt.Equal(t, model.InverseRelation("related"), "inverse_related")
}

func TestAddSpecDefaults(t *testing.T) {
	spec := model.NewAddSpec()
	inDelta(t, spec.ImportanceOr(0.7), 0.7, 0)
	inDelta(t, spec.DecayRateOr(0.001), 0.001, 0)

	spec = model.NewAddSpec(model.WithImportance(0.9), model.WithTags("a", "b"))
	inDelta(t, spec.ImportanceOr(0.7), 0.9, 0)
	gt.A(t, spec.Tags).Length(2)
}
