package repository

import (
	"math"
	"sort"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

// DefaultProcedureName is used when a memory is added without a procedure.
const DefaultProcedureName = "unknown"

// ProceduralConfig configures the procedural tier.
type ProceduralConfig struct {
	// Capacity is an advisory retention bound; the procedural tier never
	// evicts on its own. Default: 500.
	Capacity int `yaml:"capacity"`
}

func (c ProceduralConfig) withDefaults() ProceduralConfig {
	if c.Capacity <= 0 {
		c.Capacity = 500
	}
	return c
}

// Procedural stores skills and how-to knowledge. Records are grouped by
// procedure name and carry per-record execution statistics; each procedure
// also has a tier-level skill level nudged up or down by outcomes.
type Procedural struct {
	recordMap
	capacity   int
	procedures map[string][]model.MemoryID
	skills     map[string]float64
}

// NewProcedural creates a procedural tier store.
func NewProcedural(cfg ProceduralConfig) *Procedural {
	cfg = cfg.withDefaults()
	return &Procedural{
		recordMap:  newRecordMap(),
		capacity:   cfg.Capacity,
		procedures: make(map[string][]model.MemoryID),
		skills:     make(map[string]float64),
	}
}

func (p *Procedural) Name() model.TierName {
	return model.TierProcedural
}

// Add stores a record under its procedure name, with the name prepended to
// the tags and fresh execution statistics in the custom fields.
func (p *Procedural) Add(content any, opts ...model.AddOption) (*model.Memory, error) {
	spec := model.NewAddSpec(opts...)
	name := spec.Procedure
	if name == "" {
		name = DefaultProcedureName
	}
	skill := spec.SkillLevelOr(0.5)

	tags := make([]string, 0, len(spec.Tags)+1)
	tags = append(tags, name)
	tags = append(tags, spec.Tags...)

	mem, err := model.NewMemory(model.TierProcedural, content, model.Metadata{
		ImportanceScore: spec.ImportanceOr(0.8),
		DecayRate:       spec.DecayRateOr(0.0001),
		Tags:            tags,
		Source:          spec.Source,
		AgentID:         spec.AgentID,
		SessionID:       spec.SessionID,
		CustomFields: map[string]any{
			model.FieldProcedureName:  name,
			model.FieldSteps:          spec.Steps,
			model.FieldSkillLevel:     skill,
			model.FieldExecutionCount: 0,
			model.FieldSuccessRate:    0.0,
		},
	}, spec.Embedding)
	if err != nil {
		return nil, err
	}

	p.procedures[name] = append(p.procedures[name], mem.ID)
	p.skills[name] = skill
	p.insert(mem)
	return mem, nil
}

// Retrieve returns records for one procedure, or all records when no
// procedure is given, ranked by skill level and success rate.
func (p *Procedural) Retrieve(opts model.RetrieveOptions) []*model.Memory {
	var mems []*model.Memory
	if ids, ok := p.procedures[opts.Procedure]; opts.Procedure != "" && ok {
		mems = make([]*model.Memory, 0, len(ids))
		for _, id := range ids {
			if mem, ok := p.memories[id]; ok {
				mems = append(mems, mem)
			}
		}
	} else {
		mems = p.All()
	}

	sort.SliceStable(mems, func(i, j int) bool {
		return proficiency(mems[i]) > proficiency(mems[j])
	})
	return takeAccessed(mems, opts.EffectiveLimit())
}

// UpdateExecution records one execution outcome on a record: the execution
// count is bumped, the success rate becomes the running mean of outcomes,
// and the procedure's skill level moves 0.01 toward the outcome, clamped to
// [0, 1]. Returns false when the record does not exist.
func (p *Procedural) UpdateExecution(id model.MemoryID, success bool) bool {
	mem, ok := p.memories[id]
	if !ok {
		return false
	}

	fields := mem.Meta.CustomFields
	count := customInt(fields, model.FieldExecutionCount) + 1
	rate := customFloat(fields, model.FieldSuccessRate)

	outcome := 0.0
	if success {
		outcome = 1.0
	}
	fields[model.FieldExecutionCount] = count
	fields[model.FieldSuccessRate] = (rate*float64(count-1) + outcome) / float64(count)

	if name, ok := fields[model.FieldProcedureName].(string); ok && name != "" {
		skill, known := p.skills[name]
		if !known {
			skill = 0.5
		}
		if success {
			skill = math.Min(1.0, skill+0.01)
		} else {
			skill = math.Max(0.0, skill-0.01)
		}
		p.skills[name] = skill
	}
	return true
}

// SkillLevel reports the current skill level for a procedure.
func (p *Procedural) SkillLevel(name string) (float64, bool) {
	skill, ok := p.skills[name]
	return skill, ok
}

// Clear drops all records, the procedure index and the skill table.
func (p *Procedural) Clear() {
	p.recordMap.Clear()
	p.procedures = make(map[string][]model.MemoryID)
	p.skills = make(map[string]float64)
}

// Restore inserts a record and re-indexes it under the procedure name in its
// custom fields. The skill table entry is only seeded when the procedure is
// not yet known, so the freshest restored value does not clobber progress
// made since.
func (p *Procedural) Restore(mem *model.Memory) error {
	if err := mem.Meta.Validate(); err != nil {
		return err
	}

	if name, ok := mem.Meta.CustomFields[model.FieldProcedureName].(string); ok && name != "" {
		p.procedures[name] = append(p.procedures[name], mem.ID)
		if _, known := p.skills[name]; !known {
			p.skills[name] = customFloat(mem.Meta.CustomFields, model.FieldSkillLevel)
		}
	}
	p.insert(mem)
	return nil
}

// proficiency ranks a record by its recorded skill level and success rate.
func proficiency(mem *model.Memory) float64 {
	skill := customFloat(mem.Meta.CustomFields, model.FieldSkillLevel)
	success := customFloat(mem.Meta.CustomFields, model.FieldSuccessRate)
	return skill*0.6 + success*0.4
}

// customFloat reads a numeric custom field, tolerating the float64 form a
// JSON round trip produces for ints.
func customFloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func customInt(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
