package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg    config
		output string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Path to write the snapshot to",
			Required:    true,
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "save",
		Usage: "Export the memory state to a snapshot file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return goerr.Wrap(err, "failed to create snapshot file", goerr.V("path", output))
			}
			defer f.Close()

			if err := uc.Save(f); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Saved snapshot to %s\n", output)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	var (
		cfg   config
		input string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to read the snapshot from",
			Required:    true,
			Destination: &input,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "load",
		Usage: "Replace the memory state with a snapshot file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return goerr.Wrap(err, "failed to open snapshot file", goerr.V("path", input))
			}
			defer f.Close()

			if err := uc.Load(ctx, f); err != nil {
				return err
			}

			if err := cfg.persist(uc); err != nil {
				return err
			}

			stats := uc.Stats()
			fmt.Fprintf(c.Root().Writer, "Loaded %d memories from %s\n", stats.TotalMemories, input)
			return nil
		},
	}
}
