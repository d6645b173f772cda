package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

func addCommand() *cli.Command {
	var (
		cfg        config
		tier       string
		importance float64
		decayRate  float64
		tags       []string
		source     string
		agentID    string
		sessionID  string
		episodeID  string
		concepts   []string
		procedure  string
		steps      []string
		skillLevel float64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tier",
			Aliases:     []string{"t"},
			Usage:       "Target tier (short_term, long_term, episodic, semantic, procedural)",
			Value:       string(model.TierShortTerm),
			Sources:     cli.EnvVars("AGENTMEMORY_TIER"),
			Destination: &tier,
		},
		&cli.FloatFlag{
			Name:        "importance",
			Usage:       "Importance score in [0, 1]; tier default when negative",
			Value:       -1,
			Destination: &importance,
		},
		&cli.FloatFlag{
			Name:        "decay-rate",
			Usage:       "Decay rate in [0, 1]; tier default when negative",
			Value:       -1,
			Destination: &decayRate,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "Free-form tag (repeatable)",
			Destination: &tags,
		},
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Where the memory came from",
			Destination: &source,
		},
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Owning agent",
			Sources:     cli.EnvVars("AGENTMEMORY_AGENT_ID"),
			Destination: &agentID,
		},
		&cli.StringFlag{
			Name:        "session-id",
			Usage:       "Originating session",
			Sources:     cli.EnvVars("AGENTMEMORY_SESSION_ID"),
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "episode",
			Usage:       "Episode id (episodic tier)",
			Destination: &episodeID,
		},
		&cli.StringSliceFlag{
			Name:        "concept",
			Usage:       "Concept to index under (semantic tier, repeatable)",
			Destination: &concepts,
		},
		&cli.StringFlag{
			Name:        "procedure",
			Usage:       "Procedure name (procedural tier)",
			Destination: &procedure,
		},
		&cli.StringSliceFlag{
			Name:        "step",
			Usage:       "Procedure step (procedural tier, repeatable)",
			Destination: &steps,
		},
		&cli.FloatFlag{
			Name:        "skill-level",
			Usage:       "Initial skill level in [0, 1]; default when negative",
			Value:       -1,
			Destination: &skillLevel,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Store content in a memory tier",
		ArgsUsage: "<content...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			content := strings.Join(c.Args().Slice(), " ")
			if content == "" {
				return goerr.New("content is required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			var opts []model.AddOption
			if importance >= 0 {
				opts = append(opts, model.WithImportance(importance))
			}
			if decayRate >= 0 {
				opts = append(opts, model.WithDecayRate(decayRate))
			}
			if len(tags) > 0 {
				opts = append(opts, model.WithTags(tags...))
			}
			if source != "" {
				opts = append(opts, model.WithSource(source))
			}
			if agentID != "" {
				opts = append(opts, model.WithAgentID(agentID))
			}
			if sessionID != "" {
				opts = append(opts, model.WithSessionID(sessionID))
			}
			if episodeID != "" {
				opts = append(opts, model.WithEpisode(episodeID))
			}
			if len(concepts) > 0 {
				opts = append(opts, model.WithConcepts(concepts...))
			}
			if procedure != "" {
				opts = append(opts, model.WithProcedure(procedure, steps...))
			}
			if skillLevel >= 0 {
				opts = append(opts, model.WithSkillLevel(skillLevel))
			}

			mem, err := uc.Add(ctx, model.TierName(tier), content, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to add memory")
			}

			if err := cfg.persist(uc); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Memory created: %s (%s)\n", mem.ID, mem.Type)
			return nil
		},
	}
}
