package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func consolidateCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "consolidate",
		Usage: "Drain short-term memory into the other tiers",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			stats := uc.Consolidate(ctx)
			if err := cfg.persist(uc); err != nil {
				return err
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Promoted to long-term: %d\n", stats.PromotedToLongTerm)
			fmt.Fprintf(w, "Promoted to semantic:  %d\n", stats.PromotedToSemantic)
			fmt.Fprintf(w, "Promoted to episodic:  %d\n", stats.PromotedToEpisodic)
			fmt.Fprintf(w, "Discarded:             %d\n", stats.Discarded)
			return nil
		},
	}
}
