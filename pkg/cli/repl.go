package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"github.com/hanishkeloth/agentmemory/pkg/model"
	"github.com/hanishkeloth/agentmemory/pkg/usecase/memory"
)

func replCommand() *cli.Command {
	var (
		cfg  config
		tier string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tier",
			Aliases:     []string{"t"},
			Usage:       "Tier new memories go to",
			Value:       string(model.TierShortTerm),
			Destination: &tier,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive memory session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.New("memory> ")
			if err != nil {
				return err
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintln(w, "Interactive session. Commands: add, search, consolidate, stats, help, exit")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}

				verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
				switch verb {
				case "":
					continue
				case "exit", "quit":
					return cfg.persist(uc)
				case "help":
					fmt.Fprintln(w, "add <content>      store content in the session tier")
					fmt.Fprintln(w, "search <query>     semantic search across all tiers")
					fmt.Fprintln(w, "consolidate        drain short-term memory")
					fmt.Fprintln(w, "stats              show per-tier counts")
					fmt.Fprintln(w, "exit               save and leave")
				case "add":
					if rest == "" {
						fmt.Fprintln(w, "usage: add <content>")
						continue
					}
					mem, err := withSpinner("storing", func() (*model.Memory, error) {
						return uc.Add(ctx, model.TierName(tier), rest)
					})
					if err != nil {
						fmt.Fprintf(w, "error: %v\n", err)
						continue
					}
					fmt.Fprintf(w, "stored %s\n", mem.ID)
				case "search":
					if rest == "" {
						fmt.Fprintln(w, "usage: search <query>")
						continue
					}
					results, _ := withSpinner("searching", func() ([]*model.Memory, error) {
						return uc.Retrieve(ctx, memory.RetrieveInput{Query: rest}), nil
					})
					if len(results) == 0 {
						fmt.Fprintln(w, "no memories found")
						continue
					}
					for i, mem := range results {
						fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, mem.Type, contentString(mem.Content))
					}
				case "consolidate":
					stats := uc.Consolidate(ctx)
					fmt.Fprintf(w, "long-term=%d semantic=%d episodic=%d discarded=%d\n",
						stats.PromotedToLongTerm, stats.PromotedToSemantic,
						stats.PromotedToEpisodic, stats.Discarded)
				case "stats":
					stats := uc.Stats()
					for _, name := range []model.TierName{
						model.TierShortTerm, model.TierLongTerm, model.TierEpisodic,
						model.TierSemantic, model.TierProcedural,
					} {
						fmt.Fprintf(w, "%-12s %d\n", name, stats.ByTier[name])
					}
					fmt.Fprintf(w, "%-12s %d\n", "total", stats.TotalMemories)
				default:
					fmt.Fprintf(w, "unknown command %q (try help)\n", verb)
				}
			}

			return cfg.persist(uc)
		},
	}
}

// withSpinner runs fn with a terminal spinner while it works.
func withSpinner[T any](label string, fn func() (T, error)) (T, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + label + "..."
	s.Start()
	defer s.Stop()
	return fn()
}
