package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hermitcli/hermit/pkg/domain/interfaces"
	"github.com/hermitcli/hermit/pkg/domain/model"
)

type pipelineUseCase struct {
	publisher interfaces.ReleasePublisher
	builder   interfaces.Builder
	packager  interfaces.Packager
	history   interfaces.HistoryStore
	notifier  interfaces.Notifier
	matrix    []model.Target
	distDir   string
	baseName  string
	clobber   bool
	publish   bool
}

// PipelineOption is a functional option for pipeline configuration
type PipelineOption func(*pipelineUseCase)

// WithMatrix overrides the default three-platform matrix.
func WithMatrix(targets []model.Target) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.matrix = targets
	}
}

// WithDistDir sets where archives are written.
func WithDistDir(dir string) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.distDir = dir
	}
}

// WithArchiveBaseName overrides the repository name used in binary and
// archive names.
func WithArchiveBaseName(name string) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.baseName = name
	}
}

// WithHistory records finished runs into the store.
func WithHistory(store interfaces.HistoryStore) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.history = store
	}
}

// WithNotifier announces finished runs.
func WithNotifier(n interfaces.Notifier) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.notifier = n
	}
}

// WithClobber replaces an existing asset of the same name instead of
// failing the leg.
func WithClobber(clobber bool) PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.clobber = clobber
	}
}

// WithoutPublish builds and packages without touching GitHub.
func WithoutPublish() PipelineOption {
	return func(uc *pipelineUseCase) {
		uc.publish = false
	}
}

// NewPipeline creates the release pipeline use case.
func NewPipeline(publisher interfaces.ReleasePublisher, builder interfaces.Builder, packager interfaces.Packager, opts ...PipelineOption) interfaces.PipelineUseCase {
	uc := &pipelineUseCase{
		publisher: publisher,
		builder:   builder,
		packager:  packager,
		matrix:    model.DefaultMatrix,
		distDir:   "dist",
		publish:   true,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run executes the full matrix for the request: resolve source, verify the
// toolchain, ensure the release exists, then build, package and upload each
// leg. Legs run in parallel and never cancel each other.
func (uc *pipelineUseCase) Run(ctx context.Context, req *model.ReleaseRequest) (*model.PipelineRun, error) {
	logger := ctxlog.From(ctx)

	run := &model.PipelineRun{
		ID:        uuid.NewString(),
		Owner:     req.Owner,
		Repo:      req.Repo,
		Tag:       req.Tag,
		CommitSHA: req.CommitSHA,
		StartedAt: time.Now(),
	}

	logger.Info("starting release pipeline",
		"run_id", run.ID,
		"repository", req.Owner+"/"+req.Repo,
		"tag", req.Tag,
		"legs", len(uc.matrix),
	)

	srcDir := req.SourceDir
	if srcDir == "" {
		checkout, err := uc.fetchSource(ctx, req)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch source", goerr.V("tag", req.Tag))
		}
		defer func() {
			if err := os.RemoveAll(checkout.TempDir); err != nil {
				logger.Warn("failed to clean up source checkout", "temp_dir", checkout.TempDir, "error", err)
			}
		}()
		srcDir = filepath.Join(checkout.TempDir, checkout.RootDir)
	}
	srcDir, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve source directory", goerr.V("path", req.SourceDir))
	}

	if err := uc.builder.Verify(ctx); err != nil {
		return nil, goerr.Wrap(err, "toolchain verification failed")
	}

	// Ensured once up front so the parallel legs only contend on asset
	// uploads, which the API serializes.
	var releaseID int64
	if uc.publish {
		id, err := uc.publisher.EnsureRelease(ctx, req.Owner, req.Repo, req.Tag)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to ensure release", goerr.V("tag", req.Tag))
		}
		releaseID = id
	}

	distDir, err := filepath.Abs(uc.distDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve dist directory", goerr.V("path", uc.distDir))
	}

	baseName := uc.baseName
	if baseName == "" {
		baseName = req.Repo
	}

	results := make([]model.LegResult, len(uc.matrix))
	var wg sync.WaitGroup
	for i, target := range uc.matrix {
		wg.Add(1)
		go func(i int, target model.Target) {
			defer wg.Done()
			results[i] = uc.runLeg(ctx, srcDir, distDir, baseName, target, req, releaseID)
		}(i, target)
	}
	wg.Wait()

	run.Legs = results
	run.FinishedAt = time.Now()
	run.Status = model.RunStatusSuccess
	for _, leg := range results {
		if leg.Status != model.RunStatusSuccess {
			run.Status = model.RunStatusFailure
		}
	}

	if uc.history != nil {
		if err := uc.history.SaveRun(ctx, run); err != nil {
			logger.Warn("failed to record run history", "run_id", run.ID, "error", err)
		}
	}
	if uc.notifier != nil {
		if err := uc.notifier.NotifyRun(ctx, run); err != nil {
			logger.Warn("failed to send run notification", "run_id", run.ID, "error", err)
		}
	}

	if run.Status != model.RunStatusSuccess {
		var failed []string
		for _, leg := range run.FailedLegs() {
			failed = append(failed, leg.Target.Triple)
		}
		return run, goerr.New("one or more matrix legs failed",
			goerr.V("run_id", run.ID), goerr.V("failed", failed))
	}

	logger.Info("release pipeline finished",
		"run_id", run.ID,
		"tag", req.Tag,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	return run, nil
}

// fetchSource downloads the zipball for the request's tag and extracts it.
func (uc *pipelineUseCase) fetchSource(ctx context.Context, req *model.ReleaseRequest) (*model.CheckoutResult, error) {
	logger := ctxlog.From(ctx)

	ref := req.CommitSHA
	if ref == "" {
		ref = req.Tag
	}
	zipData, err := uc.publisher.DownloadZipball(ctx, req.Owner, req.Repo, ref)
	if err != nil {
		return nil, err
	}

	logger.Info("downloaded source zipball",
		"repository", req.Owner+"/"+req.Repo,
		"ref", ref,
		"size_bytes", len(zipData),
	)
	return ExtractZipball(ctx, zipData)
}

// runLeg executes one matrix leg: build, package, upload. A failure at any
// step is confined to this leg.
func (uc *pipelineUseCase) runLeg(ctx context.Context, srcDir, distDir, baseName string, target model.Target, req *model.ReleaseRequest, releaseID int64) model.LegResult {
	logger := ctxlog.From(ctx)
	started := time.Now()
	leg := model.LegResult{Target: target, Status: model.RunStatusFailure}

	fail := func(err error) model.LegResult {
		leg.Error = err.Error()
		leg.Duration = time.Since(started)
		logger.Error("matrix leg failed", "triple", target.Triple, "error", err)
		return leg
	}

	binName := target.BinaryName(baseName)
	outPath := filepath.Join(srcDir, "target", target.Triple, "release", binName)
	if err := uc.builder.Build(ctx, srcDir, target, outPath); err != nil {
		return fail(err)
	}

	archiveName := target.ArchiveName(baseName)
	archivePath, err := uc.packager.Package(outPath, distDir, archiveName)
	if err != nil {
		return fail(goerr.Wrap(err, "packaging failed", goerr.V("triple", target.Triple)))
	}
	leg.ArchiveName = archiveName
	leg.ArchivePath = archivePath

	if uc.publish {
		if err := uc.publisher.UploadAsset(ctx, req.Owner, req.Repo, releaseID, archivePath, uc.clobber); err != nil {
			return fail(goerr.Wrap(err, "asset upload failed", goerr.V("archive", archiveName)))
		}
	}

	leg.Status = model.RunStatusSuccess
	leg.Duration = time.Since(started)
	logger.Info("matrix leg finished",
		"triple", target.Triple,
		"archive", archiveName,
		"duration_ms", leg.Duration.Milliseconds(),
	)
	return leg
}
