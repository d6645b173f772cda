package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

func associateCommand() *cli.Command {
	var (
		cfg          config
		relationType string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Relation type",
			Value:       "related",
			Destination: &relationType,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "associate",
		Usage:     "Link two memories symmetrically",
		ArgsUsage: "<id-a> <id-b>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			args := c.Args().Slice()
			if len(args) != 2 {
				return goerr.New("exactly two memory ids are required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			a, b := model.MemoryID(args[0]), model.MemoryID(args[1])
			if !uc.CreateAssociation(a, b, relationType) {
				return goerr.New("association failed: one or both memories not found",
					goerr.V("a", a), goerr.V("b", b))
			}

			if err := cfg.persist(uc); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Associated %s <-%s-> %s\n", a, relationType, b)
			return nil
		},
	}
}
