package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/hermitcli/hermit/pkg/cli/config"
	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/infra/history"
)

func cmdReleaseRuns() *cli.Command {
	var (
		historyCfg config.History
		limit      int64
	)

	flags := historyCfg.Flags()
	flags = append(flags,
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of runs to list",
			Value:       10,
			Destination: &limit,
		},
	)

	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded pipeline runs",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dbPath := historyCfg.DBPath
			if dbPath == "" {
				var err error
				dbPath, err = history.DefaultPath()
				if err != nil {
					return err
				}
			}
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(ctx, int(limit))
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs")
				return nil
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			for _, run := range runs {
				status := green(string(run.Status))
				if run.Status != model.RunStatusSuccess {
					status = red(string(run.Status))
				}
				fmt.Printf("%s  %s  %s/%s %s (%d legs)\n",
					run.StartedAt.Format(time.RFC3339),
					status,
					run.Owner, run.Repo, run.Tag,
					len(run.Legs),
				)
				for _, leg := range run.Legs {
					if leg.Status == model.RunStatusSuccess {
						fmt.Printf("    %-28s %s\n", leg.Target.Triple, leg.ArchiveName)
					} else {
						fmt.Printf("    %-28s %s\n", leg.Target.Triple, leg.Error)
					}
				}
			}
			return nil
		},
	}
}
