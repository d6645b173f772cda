package cli

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hanishkeloth/agentmemory/pkg/model"
)

func getCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "get",
		Usage:     "Show one memory as JSON",
		ArgsUsage: "<memory-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			id := model.MemoryID(c.Args().First())
			if id == "" {
				return goerr.New("memory id is required")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			mem, ok := uc.Get(id)
			if !ok {
				return goerr.New("memory not found", goerr.V("id", id))
			}

			encoder := json.NewEncoder(c.Root().Writer)
			encoder.SetIndent("", "  ")
			return encoder.Encode(mem)
		},
	}
}
