package repository_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/repository"
)

func inDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	gt.True(t, math.Abs(got-want) <= delta)
}

func TestShortTermFIFOEviction(t *testing.T) {
	store := repository.NewShortTerm(repository.ShortTermConfig{Capacity: 3})

	first, err := store.Add("one")
	gt.NoError(t, err)
	_, err = store.Add("two")
	gt.NoError(t, err)
	_, err = store.Add("three")
	gt.NoError(t, err)
	gt.Equal(t, store.Size(), 3)

	fourth, err := store.Add("four")
	gt.NoError(t, err)
	gt.Equal(t, store.Size(), 3)

	_, ok := store.Get(first.ID)
	gt.False(t, ok)
	_, ok = store.Get(fourth.ID)
	gt.True(t, ok)
}

func TestShortTermTTLSweep(t *testing.T) {
	store := repository.NewShortTerm(repository.ShortTermConfig{TTL: time.Minute})

	stale := &model.Memory{
		ID:      model.NewMemoryID(),
		Content: "stale",
		Type:    model.TierShortTerm,
		Meta: model.Metadata{
			Timestamp:       time.Now().UTC().Add(-10 * time.Minute),
			ImportanceScore: 0.3,
			DecayRate:       0.01,
		},
	}
	gt.NoError(t, store.Restore(stale))

	fresh, err := store.Add("fresh")
	gt.NoError(t, err)

	mems := store.Retrieve(model.RetrieveOptions{})
	gt.A(t, mems).Length(1)
	gt.Equal(t, mems[0].ID, fresh.ID)
	_, ok := store.Get(stale.ID)
	gt.False(t, ok)
}

func TestShortTermDefaults(t *testing.T) {
	store := repository.NewShortTerm(repository.ShortTermConfig{})

	mem, err := store.Add("note")
	gt.NoError(t, err)
	gt.Equal(t, mem.Type, model.TierShortTerm)
	inDelta(t, mem.Meta.ImportanceScore, 0.3, 1e-12)
	inDelta(t, mem.Meta.DecayRate, 0.01, 1e-12)
}

func TestLongTermThreshold(t *testing.T) {
	store := repository.NewLongTerm(repository.LongTermConfig{})

	_, err := store.Add("trivia", model.WithImportance(0.2))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrBelowThreshold))
	gt.Equal(t, store.Size(), 0)

	mem, err := store.Add("fact")
	gt.NoError(t, err)
	inDelta(t, mem.Meta.ImportanceScore, 0.5, 1e-12)
	inDelta(t, mem.Meta.DecayRate, 0.001, 1e-12)
}

func TestLongTermEviction(t *testing.T) {
	store := repository.NewLongTerm(repository.LongTermConfig{Capacity: 2})

	keep, err := store.Add("important", model.WithImportance(0.9))
	gt.NoError(t, err)
	weak, err := store.Add("marginal", model.WithImportance(0.5))
	gt.NoError(t, err)
	next, err := store.Add("notable", model.WithImportance(0.8))
	gt.NoError(t, err)

	gt.Equal(t, store.Size(), 2)
	_, ok := store.Get(weak.ID)
	gt.False(t, ok)
	_, ok = store.Get(keep.ID)
	gt.True(t, ok)

	mems := store.Retrieve(model.RetrieveOptions{})
	gt.A(t, mems).Length(2)
	gt.Equal(t, mems[0].ID, keep.ID)
	gt.Equal(t, mems[1].ID, next.ID)
	gt.Number(t, mems[0].Meta.AccessCount).GreaterOrEqual(1)
}

func TestEpisodicChaining(t *testing.T) {
	store := repository.NewEpisodic(repository.EpisodicConfig{})

	first, err := store.Add("arrived", model.WithEpisode("trip"))
	gt.NoError(t, err)
	second, err := store.Add("checked in", model.WithEpisode("trip"))
	gt.NoError(t, err)
	third, err := store.Add("departed", model.WithEpisode("trip"))
	gt.NoError(t, err)

	gt.Nil(t, first.Meta.ParentMemoryID)
	gt.V(t, second.Meta.ParentMemoryID).NotNil()
	gt.Equal(t, *second.Meta.ParentMemoryID, first.ID)
	gt.Equal(t, first.Meta.ChildMemoryIDs, []model.MemoryID{second.ID})
	gt.Equal(t, *third.Meta.ParentMemoryID, second.ID)

	episode := store.GetEpisode("trip")
	gt.A(t, episode).Length(3)
	gt.Equal(t, episode[0].ID, first.ID)
	gt.Equal(t, episode[2].ID, third.ID)
	gt.Equal(t, episode[0].Meta.AccessCount, 1)
}

func TestEpisodicRetrieve(t *testing.T) {
	store := repository.NewEpisodic(repository.EpisodicConfig{})

	first, err := store.Add("a", model.WithEpisode("walk"))
	gt.NoError(t, err)
	second, err := store.Add("b", model.WithEpisode("walk"))
	gt.NoError(t, err)
	_, err = store.Add("c", model.WithEpisode("ride"))
	gt.NoError(t, err)

	mems := store.Retrieve(model.RetrieveOptions{EpisodeID: "walk"})
	gt.A(t, mems).Length(2)
	gt.Equal(t, mems[0].ID, second.ID)
	gt.Equal(t, mems[1].ID, first.ID)

	all := store.Retrieve(model.RetrieveOptions{})
	gt.A(t, all).Length(3)

	// unknown episodes fall back to the full scan
	fallback := store.Retrieve(model.RetrieveOptions{EpisodeID: "swim"})
	gt.A(t, fallback).Length(3)
}

func TestEpisodicRestore(t *testing.T) {
	store := repository.NewEpisodic(repository.EpisodicConfig{})

	mem := &model.Memory{
		ID:      model.NewMemoryID(),
		Content: "recovered",
		Type:    model.TierEpisodic,
		Meta: model.Metadata{
			Timestamp:       time.Now().UTC(),
			ImportanceScore: 0.6,
			DecayRate:       0.01,
			CustomFields:    map[string]any{model.FieldEpisodeID: "trip"},
		},
	}
	gt.NoError(t, store.Restore(mem))

	episode := store.GetEpisode("trip")
	gt.A(t, episode).Length(1)
	gt.Equal(t, episode[0].ID, mem.ID)
}

func TestSemanticConcepts(t *testing.T) {
	store := repository.NewSemantic(repository.SemanticConfig{})

	gravity, err := store.Add("gravity pulls", model.WithConcepts("physics"))
	gt.NoError(t, err)
	_, err = store.Add("interfaces are satisfied implicitly", model.WithConcepts("golang"))
	gt.NoError(t, err)

	gt.Equal(t, gravity.Meta.Tags, []string{"physics"})
	gt.Equal(t, gravity.Meta.CustomFields[model.FieldConcepts], any([]string{"physics"}))

	mems := store.Retrieve(model.RetrieveOptions{Concepts: []string{"physics"}})
	gt.A(t, mems).Length(1)
	gt.Equal(t, mems[0].ID, gravity.ID)

	both := store.Retrieve(model.RetrieveOptions{Concepts: []string{"physics", "golang"}})
	gt.A(t, both).Length(2)

	all := store.Retrieve(model.RetrieveOptions{})
	gt.A(t, all).Length(2)
}

func TestSemanticRelationships(t *testing.T) {
	store := repository.NewSemantic(repository.SemanticConfig{})

	cause, err := store.Add("rain", model.WithConcepts("weather"))
	gt.NoError(t, err)
	effect, err := store.Add("wet streets", model.WithConcepts("weather"))
	gt.NoError(t, err)

	store.AddRelationship(cause.ID, effect.ID, "causes")

	related := store.GetRelated(cause.ID, "causes")
	gt.A(t, related).Length(1)
	gt.Equal(t, related[0].ID, effect.ID)

	inverse := store.GetRelated(effect.ID, "inverse_causes")
	gt.A(t, inverse).Length(1)
	gt.Equal(t, inverse[0].ID, cause.ID)

	linked := store.GetRelated(cause.ID, "")
	gt.A(t, linked).Length(1)

	gt.A(t, store.GetRelated(model.NewMemoryID(), "")).Length(0)

	// a dangling edge still lands on the side that exists
	ghost := model.NewMemoryID()
	store.AddRelationship(cause.ID, ghost, "related")
	gt.Equal(t, cause.RelatedIDs("related"), []model.MemoryID{ghost})
	gt.A(t, store.GetRelated(cause.ID, "related")).Length(0)
}

func TestProceduralRanking(t *testing.T) {
	store := repository.NewProcedural(repository.ProceduralConfig{})

	expert, err := store.Add("deploy steps",
		model.WithProcedure("deploy", "build", "push", "rollout"),
		model.WithSkillLevel(0.9),
	)
	gt.NoError(t, err)
	novice, err := store.Add("debug steps",
		model.WithProcedure("debug"),
		model.WithSkillLevel(0.2),
	)
	gt.NoError(t, err)

	gt.Equal(t, expert.Meta.Tags[0], "deploy")
	gt.Equal(t, expert.Meta.CustomFields[model.FieldSteps], any([]string{"build", "push", "rollout"}))

	mems := store.Retrieve(model.RetrieveOptions{})
	gt.A(t, mems).Length(2)
	gt.Equal(t, mems[0].ID, expert.ID)
	gt.Equal(t, mems[1].ID, novice.ID)

	only := store.Retrieve(model.RetrieveOptions{Procedure: "debug"})
	gt.A(t, only).Length(1)
	gt.Equal(t, only[0].ID, novice.ID)
}

func TestProceduralUpdateExecution(t *testing.T) {
	store := repository.NewProcedural(repository.ProceduralConfig{})

	mem, err := store.Add("how to brew", model.WithProcedure("brew"))
	gt.NoError(t, err)

	gt.True(t, store.UpdateExecution(mem.ID, true))
	gt.True(t, store.UpdateExecution(mem.ID, true))
	gt.True(t, store.UpdateExecution(mem.ID, false))

	gt.Equal(t, mem.Meta.CustomFields[model.FieldExecutionCount], 3)
	rate, ok := mem.Meta.CustomFields[model.FieldSuccessRate].(float64)
	gt.True(t, ok)
	inDelta(t, rate, 2.0/3.0, 1e-9)

	skill, ok := store.SkillLevel("brew")
	gt.True(t, ok)
	inDelta(t, skill, 0.51, 1e-9)

	gt.False(t, store.UpdateExecution(model.NewMemoryID(), true))
}

func TestProceduralSkillClamp(t *testing.T) {
	store := repository.NewProcedural(repository.ProceduralConfig{})

	mem, err := store.Add("checklist",
		model.WithProcedure("launch"),
		model.WithSkillLevel(1.0),
	)
	gt.NoError(t, err)

	gt.True(t, store.UpdateExecution(mem.ID, true))
	skill, _ := store.SkillLevel("launch")
	inDelta(t, skill, 1.0, 1e-12)
}

func TestProceduralRestore(t *testing.T) {
	store := repository.NewProcedural(repository.ProceduralConfig{})

	// numbers come back as float64 after a JSON round trip
	mem := &model.Memory{
		ID:      model.NewMemoryID(),
		Content: "restored recipe",
		Type:    model.TierProcedural,
		Meta: model.Metadata{
			Timestamp:       time.Now().UTC(),
			ImportanceScore: 0.8,
			DecayRate:       0.0001,
			CustomFields: map[string]any{
				model.FieldProcedureName:  "bake",
				model.FieldSkillLevel:     0.7,
				model.FieldExecutionCount: float64(4),
				model.FieldSuccessRate:    0.75,
			},
		},
	}
	gt.NoError(t, store.Restore(mem))

	mems := store.Retrieve(model.RetrieveOptions{Procedure: "bake"})
	gt.A(t, mems).Length(1)

	skill, ok := store.SkillLevel("bake")
	gt.True(t, ok)
	inDelta(t, skill, 0.7, 1e-12)

	gt.True(t, store.UpdateExecution(mem.ID, true))
	gt.Equal(t, mem.Meta.CustomFields[model.FieldExecutionCount], 5)
	rate := mem.Meta.CustomFields[model.FieldSuccessRate].(float64)
	inDelta(t, rate, 0.8, 1e-9)
}

func TestTierCRUD(t *testing.T) {
	for _, tier := range []repository.Tier{
		repository.NewShortTerm(repository.ShortTermConfig{}),
		repository.NewLongTerm(repository.LongTermConfig{}),
		repository.NewEpisodic(repository.EpisodicConfig{}),
		repository.NewSemantic(repository.SemanticConfig{}),
		repository.NewProcedural(repository.ProceduralConfig{}),
	} {
		t.Run(string(tier.Name()), func(t *testing.T) {
			mem, err := tier.Add("original", model.WithImportance(0.8))
			gt.NoError(t, err)

			got, ok := tier.Get(mem.ID)
			gt.True(t, ok)
			gt.Equal(t, got.Content, "original")

			gt.True(t, tier.Update(mem.ID, "revised", nil))
			got, _ = tier.Get(mem.ID)
			gt.Equal(t, got.Content, "revised")

			gt.False(t, tier.Update(model.NewMemoryID(), "nope", nil))

			gt.True(t, tier.Delete(mem.ID))
			gt.False(t, tier.Delete(mem.ID))
			gt.Equal(t, tier.Size(), 0)

			_, err = tier.Add("again", model.WithImportance(0.8))
			gt.NoError(t, err)
			tier.Clear()
			gt.Equal(t, tier.Size(), 0)
			gt.A(t, tier.All()).Length(0)
		})
	}
}
