package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hermitcli/hermit/pkg/cli/config"
	"github.com/hermitcli/hermit/pkg/infra/workflow"
)

func cmdReleaseImport() *cli.Command {
	var (
		workflowPath string
		outPath      string
		name         string
	)

	return &cli.Command{
		Name:  "import",
		Usage: "Generate hermit.toml from a GitHub Actions release workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "workflow",
				Usage:       "Path to the workflow file",
				Value:       ".github/workflows/release.yml",
				Destination: &workflowPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Usage:       "Output path for the generated config",
				Value:       "hermit.toml",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Base name for binaries and archives",
				Destination: &name,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			data, err := os.ReadFile(workflowPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read workflow file", goerr.V("path", workflowPath))
			}

			def, err := workflow.Parse(data)
			if err != nil {
				return err
			}
			if len(def.TagPatterns) > 1 {
				logger.Warn("workflow declares multiple tag patterns, keeping the first",
					"patterns", def.TagPatterns)
			}

			file := &config.ReleaseFile{}
			file.Release.Name = name
			file.Release.TagPattern = def.TagPatterns[0]
			file.Release.Targets = def.Targets

			if err := config.WriteReleaseFile(outPath, file); err != nil {
				return err
			}

			fmt.Printf("Wrote %s (%d targets, tag pattern %q)\n", outPath, len(def.Targets), def.TagPatterns[0])
			return nil
		},
	}
}
