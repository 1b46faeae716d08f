package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hermitcli/hermit/pkg/domain/interfaces"
	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/utils/async"
)

type webhookUseCase struct {
	pipeline interfaces.PipelineUseCase
	pattern  model.TagPattern
}

// WebhookOption is a functional option for webhook processing
type WebhookOption func(*webhookUseCase)

// WithTagPattern overrides the tag glob that gates pipeline runs.
func WithTagPattern(pattern model.TagPattern) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.pattern = pattern
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(pipeline interfaces.PipelineUseCase, opts ...WebhookOption) interfaces.WebhookUseCase {
	uc := &webhookUseCase{
		pipeline: pipeline,
		pattern:  model.DefaultTagPattern,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent applies the trigger filter to a webhook event and dispatches
// the release pipeline asynchronously for matching tag pushes. Non-matching
// pushes are a silent no-op.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("received webhook event",
		"id", event.ID,
		"type", event.Type,
		"ref", event.Ref,
		"repository", event.Repository,
		"sender", event.Sender,
	)

	if !event.IsSupportedEvent() {
		logger.Info("ignoring unsupported event type", "type", event.Type)
		return nil
	}

	if !uc.pattern.Match(event.Ref) {
		logger.Info("ref does not match release tag pattern",
			"ref", event.Ref,
			"pattern", string(uc.pattern),
		)
		return nil
	}

	owner, repo, ok := strings.Cut(event.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return goerr.New("invalid repository name in event", goerr.V("repository", event.Repository))
	}

	req := &model.ReleaseRequest{
		Owner:     owner,
		Repo:      repo,
		Tag:       model.TagName(event.Ref),
		CommitSHA: event.HeadCommit,
	}

	logger.Info("tag push matched release pattern, dispatching pipeline",
		"tag", req.Tag,
		"repository", event.Repository,
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.pipeline.Run(ctx, req)
		return err
	})
	return nil
}
