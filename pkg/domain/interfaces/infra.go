package interfaces

import (
	"context"

	"github.com/hermitcli/hermit/pkg/domain/model"
)

// Builder produces a release binary for one matrix target.
type Builder interface {
	// Verify checks the build toolchain is usable before any leg starts.
	Verify(ctx context.Context) error

	// Build compiles srcDir for the target, writing the binary to outPath.
	Build(ctx context.Context, srcDir string, target model.Target, outPath string) error
}

// Packager archives a built binary into a release asset.
type Packager interface {
	// Package writes distDir/archiveName containing exactly the binary at
	// archive root, returning the archive path.
	Package(binPath, distDir, archiveName string) (string, error)
}

// HistoryStore records finished pipeline runs.
type HistoryStore interface {
	SaveRun(ctx context.Context, run *model.PipelineRun) error
	ListRuns(ctx context.Context, limit int) ([]*model.PipelineRun, error)
	Close() error
}

// Notifier announces finished pipeline runs.
type Notifier interface {
	NotifyRun(ctx context.Context, run *model.PipelineRun) error
}
