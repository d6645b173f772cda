package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hanishkeloth/agentmemory/pkg/adapter"
	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/usecase/memory"
	"github.com/hanishkeloth/agentmemory/pkg/utils/logging"
)

func searchCommand() *cli.Command {
	var (
		cfg           config
		tiers         []string
		limit         int64
		noSemantic    bool
		filterType    string
		filterAgent   string
		filterSession string
		minImportance float64
		maxImportance float64
		filterTags    []string
		episodeID     string
		concepts      []string
		procedure     string
	)

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "tier",
			Aliases:     []string{"t"},
			Usage:       "Tier to query (repeatable; all tiers when omitted)",
			Destination: &tiers,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of results",
			Value:       model.DefaultRetrieveLimit,
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "no-semantic",
			Usage:       "Skip the vector index and query tiers directly",
			Destination: &noSemantic,
		},
		&cli.StringFlag{
			Name:        "filter-type",
			Usage:       "Keep only results from this tier",
			Destination: &filterType,
		},
		&cli.StringFlag{
			Name:        "filter-agent",
			Usage:       "Keep only results owned by this agent",
			Destination: &filterAgent,
		},
		&cli.StringFlag{
			Name:        "filter-session",
			Usage:       "Keep only results from this session",
			Destination: &filterSession,
		},
		&cli.FloatFlag{
			Name:        "min-importance",
			Usage:       "Keep only results at or above this importance",
			Value:       -1,
			Destination: &minImportance,
		},
		&cli.FloatFlag{
			Name:        "max-importance",
			Usage:       "Keep only results at or below this importance",
			Value:       -1,
			Destination: &maxImportance,
		},
		&cli.StringSliceFlag{
			Name:        "filter-tag",
			Usage:       "Keep only results carrying one of these tags (repeatable)",
			Destination: &filterTags,
		},
		&cli.StringFlag{
			Name:        "episode",
			Usage:       "Episode id (episodic tier)",
			Destination: &episodeID,
		},
		&cli.StringSliceFlag{
			Name:        "concept",
			Usage:       "Concept to match (semantic tier, repeatable)",
			Destination: &concepts,
		},
		&cli.StringFlag{
			Name:        "procedure",
			Usage:       "Procedure name (procedural tier)",
			Destination: &procedure,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Retrieve memories by query text or tier listing",
		ArgsUsage: "[query...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			in := memory.RetrieveInput{
				Query:            strings.Join(c.Args().Slice(), " "),
				Limit:            int(limit),
				NoSemanticSearch: noSemantic,
				EpisodeID:        episodeID,
				Concepts:         concepts,
				Procedure:        procedure,
			}
			for _, tier := range tiers {
				in.Tiers = append(in.Tiers, model.TierName(tier))
			}
			in.Filters = buildFilters(filterType, filterAgent, filterSession, minImportance, maxImportance, filterTags)

			results := uc.Retrieve(ctx, in)

			w := c.Root().Writer
			if len(results) == 0 {
				fmt.Fprintln(w, "No memories found")
				return nil
			}

			tokenizer, err := adapter.NewTokenizer()
			if err != nil {
				logging.From(ctx).Debug("tokenizer in fallback mode", "error", err)
			}

			totalTokens := 0
			for i, mem := range results {
				text := contentString(mem.Content)
				tokens := tokenizer.Count(text)
				totalTokens += tokens
				fmt.Fprintf(w, "%2d. [%s] %s (id=%s importance=%.2f tokens=%d)\n",
					i+1, mem.Type, text, mem.ID, mem.Meta.ImportanceScore, tokens)
			}
			fmt.Fprintf(w, "\n%d memories, %d tokens of context\n", len(results), totalTokens)

			// retrieval updates access bookkeeping
			return cfg.persist(uc)
		},
	}
}

func buildFilters(tierName, agentID, sessionID string, minImportance, maxImportance float64, tags []string) *memory.Filters {
	if tierName == "" && agentID == "" && sessionID == "" && minImportance < 0 && maxImportance < 0 && len(tags) == 0 {
		return nil
	}

	filters := &memory.Filters{
		MemoryType: model.TierName(tierName),
		AgentID:    agentID,
		SessionID:  sessionID,
		Tags:       tags,
	}
	if minImportance >= 0 {
		filters.MinImportance = &minImportance
	}
	if maxImportance >= 0 {
		filters.MaxImportance = &maxImportance
	}
	return filters
}

func contentString(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", content)
}
