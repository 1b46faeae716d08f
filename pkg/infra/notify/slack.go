package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/hermitcli/hermit/pkg/domain/model"
)

// SlackNotifier posts pipeline run summaries to a channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier for the given bot token and channel.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// NotifyRun posts a per-leg summary of a finished run.
func (n *SlackNotifier) NotifyRun(ctx context.Context, run *model.PipelineRun) error {
	var b strings.Builder
	icon := ":white_check_mark:"
	if run.Status != model.RunStatusSuccess {
		icon = ":x:"
	}
	fmt.Fprintf(&b, "%s Release `%s` %s for %s/%s\n", icon, run.Tag, run.Status, run.Owner, run.Repo)
	for _, leg := range run.Legs {
		if leg.Status == model.RunStatusSuccess {
			fmt.Fprintf(&b, "• %s: `%s`\n", leg.Target.Triple, leg.ArchiveName)
		} else {
			fmt.Fprintf(&b, "• %s: failed: %s\n", leg.Target.Triple, leg.Error)
		}
	}

	if _, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(b.String(), false),
	); err != nil {
		return goerr.Wrap(err, "failed to post slack notification", goerr.V("channel", n.channel))
	}
	return nil
}
