package memory

import (
	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// CreateAssociation links two records symmetrically: relationType from A to
// B and the inverse type from B to A. Both ids must resolve somewhere; a
// missing id fails with no mutation at all. When A is a semantic-tier
// record the pair is also registered in the semantic relationship table.
func (u *UseCase) CreateAssociation(a, b model.MemoryID, relationType string) bool {
	memA, okA := u.Get(a)
	memB, okB := u.Get(b)
	if !okA || !okB {
		return false
	}

	memA.AddRelation(relationType, b)
	memB.AddRelation(model.InverseRelation(relationType), a)

	if memA.Type == model.TierSemantic {
		u.semantic.AddRelationship(a, b, relationType)
	}
	return true
}

// GetRelated returns the records associated with a semantic-tier record,
// optionally narrowed to one relation type.
func (u *UseCase) GetRelated(id model.MemoryID, relationType string) []*model.Memory {
	return u.semantic.GetRelated(id, relationType)
}

// GetEpisode returns an episode's full chain in order.
func (u *UseCase) GetEpisode(episodeID string) []*model.Memory {
	return u.episodic.GetEpisode(episodeID)
}

// UpdateExecution records a procedure execution outcome.
func (u *UseCase) UpdateExecution(id model.MemoryID, success bool) bool {
	return u.procedural.UpdateExecution(id, success)
}

// SkillLevel reports the tracked skill level for a procedure.
func (u *UseCase) SkillLevel(name string) (float64, bool) {
	return u.procedural.SkillLevel(name)
}
