package interfaces

import (
	"context"

	"github.com/hermitcli/hermit/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// PipelineUseCase runs the release pipeline for a tag.
type PipelineUseCase interface {
	// Run executes the full matrix for the request. The returned run holds
	// per-leg results; err is non-nil when any leg failed.
	Run(ctx context.Context, req *model.ReleaseRequest) (*model.PipelineRun, error)
}
