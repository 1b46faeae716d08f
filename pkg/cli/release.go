package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hermitcli/hermit/pkg/cli/config"
	"github.com/hermitcli/hermit/pkg/domain/interfaces"
	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/infra/archive"
	"github.com/hermitcli/hermit/pkg/infra/build"
	"github.com/hermitcli/hermit/pkg/infra/github"
	"github.com/hermitcli/hermit/pkg/infra/history"
	"github.com/hermitcli/hermit/pkg/infra/notify"
	"github.com/hermitcli/hermit/pkg/usecase"
)

func cmdRelease() *cli.Command {
	return &cli.Command{
		Name:  "release",
		Usage: "Release pipeline: build, package and publish platform binaries",
		Commands: []*cli.Command{
			cmdReleaseRun(),
			cmdReleaseWatch(),
			cmdReleaseImport(),
			cmdReleaseRuns(),
		},
	}
}

func cmdReleaseRun() *cli.Command {
	var (
		releaseCfg config.Release
		githubCfg  config.GitHub
		historyCfg config.History
		notifyCfg  config.Notify
	)

	flags := releaseCfg.Flags()
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, historyCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Run the release pipeline once for a tag",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if releaseCfg.Tag == "" {
				return goerr.New("tag is required")
			}

			wiring, err := newPipelineWiring(ctx, &releaseCfg, &githubCfg, &historyCfg, &notifyCfg)
			if err != nil {
				return err
			}
			defer wiring.close(ctx)

			req := &model.ReleaseRequest{
				Owner:     wiring.owner,
				Repo:      wiring.repo,
				Tag:       releaseCfg.Tag,
				SourceDir: releaseCfg.SourceDir,
			}
			if req.SourceDir == "" && releaseCfg.SkipPublish {
				// Without a publisher there is nothing to check the tag out from.
				req.SourceDir = "."
			}

			logger.Info("running release pipeline",
				slog.String("tag", releaseCfg.Tag),
				slog.Bool("publish", !releaseCfg.SkipPublish),
			)

			run, runErr := wiring.pipeline.Run(ctx, req)
			if run != nil {
				printRunSummary(run)
			}
			return runErr
		},
	}
}

// pipelineWiring bundles the pipeline use case with the infra handles the
// command needs to close afterwards.
type pipelineWiring struct {
	pipeline   interfaces.PipelineUseCase
	store      interfaces.HistoryStore
	owner      string
	repo       string
	tagPattern model.TagPattern
}

func (w *pipelineWiring) close(ctx context.Context) {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			ctxlog.From(ctx).Warn("failed to close history store", "error", err)
		}
	}
}

// newPipelineWiring merges hermit.toml with flags (flags win) and builds the
// pipeline use case with its infra.
func newPipelineWiring(ctx context.Context, releaseCfg *config.Release, githubCfg *config.GitHub, historyCfg *config.History, notifyCfg *config.Notify) (*pipelineWiring, error) {
	logger := ctxlog.From(ctx)

	file, err := config.LoadReleaseFile(releaseCfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	wiring := &pipelineWiring{tagPattern: model.DefaultTagPattern}

	name := releaseCfg.Name
	distDir := releaseCfg.DistDir
	triples := releaseCfg.Targets
	var buildOpts []build.Option

	if file != nil {
		if name == "" {
			name = file.Release.Name
		}
		if distDir == "" {
			distDir = file.Release.DistDir
		}
		if len(triples) == 0 {
			triples = file.Release.Targets
		}
		if file.Release.TagPattern != "" {
			wiring.tagPattern = model.TagPattern(file.Release.TagPattern)
		}
		if file.Release.Build.Command != "" {
			buildOpts = append(buildOpts, build.WithCommand(file.Release.Build.Command, file.Release.Build.Args...))
		}
		if file.Release.Build.Package != "" {
			buildOpts = append(buildOpts, build.WithPackage(file.Release.Build.Package))
		}
		if releaseCfg.Repository == "" && file.Release.GitHub.Owner != "" {
			releaseCfg.Repository = file.Release.GitHub.Owner + "/" + file.Release.GitHub.Repo
		}
	}
	if distDir == "" {
		distDir = "dist"
	}

	matrix, err := resolveTargets(triples)
	if err != nil {
		return nil, err
	}

	opts := []usecase.PipelineOption{
		usecase.WithMatrix(matrix),
		usecase.WithDistDir(distDir),
		usecase.WithClobber(releaseCfg.Clobber),
	}
	if name != "" {
		opts = append(opts, usecase.WithArchiveBaseName(name))
	}

	var publisher interfaces.ReleasePublisher
	if releaseCfg.SkipPublish {
		opts = append(opts, usecase.WithoutPublish())
		if releaseCfg.Repository != "" {
			if wiring.owner, wiring.repo, err = releaseCfg.SplitRepository(); err != nil {
				return nil, err
			}
		}
	} else {
		if releaseCfg.Repository == "" {
			return nil, goerr.New("repository is required for publishing (set --repository or hermit.toml)")
		}
		owner, repo, err := releaseCfg.SplitRepository()
		if err != nil {
			return nil, err
		}
		wiring.owner, wiring.repo = owner, repo

		if githubCfg.Token == "" {
			return nil, goerr.New("GitHub token is required for publishing")
		}
		client, err := github.NewClient(githubCfg.Token)
		if err != nil {
			return nil, err
		}
		publisher = client
	}
	if wiring.repo == "" && name != "" {
		wiring.repo = name
	}
	if wiring.repo == "" && name == "" {
		return nil, goerr.New("name or repository is required to derive archive names")
	}

	if !historyCfg.Disable {
		dbPath := historyCfg.DBPath
		if dbPath == "" {
			dbPath, err = history.DefaultPath()
			if err != nil {
				return nil, err
			}
		}
		store, err := history.Open(dbPath)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			wiring.store = store
			opts = append(opts, usecase.WithHistory(store))
		}
	}

	if notifyCfg.Enabled() {
		opts = append(opts, usecase.WithNotifier(notify.NewSlackNotifier(notifyCfg.SlackToken, notifyCfg.SlackChannel)))
	}

	wiring.pipeline = usecase.NewPipeline(publisher, build.NewRunner(buildOpts...), archive.NewPackager(), opts...)
	return wiring, nil
}

func resolveTargets(triples []string) ([]model.Target, error) {
	if len(triples) == 0 {
		return model.DefaultMatrix, nil
	}
	targets := make([]model.Target, 0, len(triples))
	for _, triple := range triples {
		target, ok := model.TargetByTriple(triple)
		if !ok {
			return nil, goerr.New("unknown target triple", goerr.V("triple", triple))
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func printRunSummary(run *model.PipelineRun) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Printf("\nRelease %s (%s/%s)\n", run.Tag, run.Owner, run.Repo)
	for _, leg := range run.Legs {
		if leg.Status == model.RunStatusSuccess {
			fmt.Printf("  %s  %-28s %s\n", green("ok  "), leg.Target.Triple, leg.ArchiveName)
		} else {
			fmt.Printf("  %s  %-28s %s\n", red("fail"), leg.Target.Triple, leg.Error)
		}
	}
}
