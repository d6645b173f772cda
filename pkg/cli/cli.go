package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "agentmemory",
		Usage: "Tiered memory store for AI agents",
		Commands: []*cli.Command{
			addCommand(),
			searchCommand(),
			getCommand(),
			associateCommand(),
			consolidateCommand(),
			statsCommand(),
			exportCommand(),
			importCommand(),
			replCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
