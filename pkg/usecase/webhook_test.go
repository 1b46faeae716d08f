package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/usecase"
)

// fakePipeline synchronizes on a channel so tests can wait for the async
// dispatch without sleeping.
type fakePipeline struct {
	mu       sync.Mutex
	requests []*model.ReleaseRequest
	done     chan struct{}
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{done: make(chan struct{}, 8)}
}

func (f *fakePipeline) Run(ctx context.Context, req *model.ReleaseRequest) (*model.PipelineRun, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	f.done <- struct{}{}
	return &model.PipelineRun{Status: model.RunStatusSuccess}, nil
}

func (f *fakePipeline) waitForRun(t *testing.T) *model.ReleaseRequest {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline was not dispatched")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakePipeline) assertNotDispatched(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
		t.Fatal("pipeline should not have been dispatched")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProcessEvent_MatchingTagPush(t *testing.T) {
	pipeline := newFakePipeline()
	uc := usecase.NewWebhook(pipeline)

	err := uc.ProcessEvent(context.Background(), &model.WebhookEvent{
		ID:         "delivery-1",
		Type:       model.EventTypePush,
		Ref:        "refs/tags/v1.2.3",
		HeadCommit: "abc123",
		Repository: "hermitcli/hermit",
		Sender:     "octocat",
	})
	gt.NoError(t, err)

	req := pipeline.waitForRun(t)
	gt.Value(t, req.Owner).Equal("hermitcli")
	gt.Value(t, req.Repo).Equal("hermit")
	gt.Value(t, req.Tag).Equal("v1.2.3")
	gt.Value(t, req.CommitSHA).Equal("abc123")
}

func TestProcessEvent_NonMatchingRefIsIgnored(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{name: "branch push", ref: "refs/heads/main"},
		{name: "tag without patch version", ref: "refs/tags/v1.2"},
		{name: "non-version tag", ref: "refs/tags/nightly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newFakePipeline()
			uc := usecase.NewWebhook(pipeline)

			err := uc.ProcessEvent(context.Background(), &model.WebhookEvent{
				Type:       model.EventTypePush,
				Ref:        tt.ref,
				Repository: "hermitcli/hermit",
			})
			gt.NoError(t, err)
			pipeline.assertNotDispatched(t)
		})
	}
}

func TestProcessEvent_PingIsIgnored(t *testing.T) {
	pipeline := newFakePipeline()
	uc := usecase.NewWebhook(pipeline)

	err := uc.ProcessEvent(context.Background(), &model.WebhookEvent{
		Type: model.EventTypePing,
	})
	gt.NoError(t, err)
	pipeline.assertNotDispatched(t)
}

func TestProcessEvent_InvalidRepositoryName(t *testing.T) {
	pipeline := newFakePipeline()
	uc := usecase.NewWebhook(pipeline)

	err := uc.ProcessEvent(context.Background(), &model.WebhookEvent{
		Type:       model.EventTypePush,
		Ref:        "refs/tags/v1.0.0",
		Repository: "no-owner-separator",
	})
	gt.Error(t, err)
	pipeline.assertNotDispatched(t)
}

func TestProcessEvent_CustomTagPattern(t *testing.T) {
	pipeline := newFakePipeline()
	uc := usecase.NewWebhook(pipeline, usecase.WithTagPattern("release-*"))

	err := uc.ProcessEvent(context.Background(), &model.WebhookEvent{
		Type:       model.EventTypePush,
		Ref:        "refs/tags/release-42",
		Repository: "hermitcli/hermit",
	})
	gt.NoError(t, err)

	req := pipeline.waitForRun(t)
	gt.Value(t, req.Tag).Equal("release-42")

	err = uc.ProcessEvent(context.Background(), &model.WebhookEvent{
		Type:       model.EventTypePush,
		Ref:        "refs/tags/v1.0.0",
		Repository: "hermitcli/hermit",
	})
	gt.NoError(t, err)
	pipeline.assertNotDispatched(t)
}
