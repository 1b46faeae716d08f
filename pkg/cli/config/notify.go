package config

import "github.com/urfave/cli/v3"

// Notify holds notification configuration
type Notify struct {
	SlackToken   string
	SlackChannel string
}

// Enabled reports whether a Slack destination is configured.
func (c *Notify) Enabled() bool {
	return c.SlackToken != "" && c.SlackChannel != ""
}

// Flags returns CLI flags for run notifications
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack bot token for run notifications",
			Destination: &c.SlackToken,
			Sources:     cli.EnvVars("HERMIT_SLACK_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for run notifications",
			Destination: &c.SlackChannel,
			Sources:     cli.EnvVars("HERMIT_SLACK_CHANNEL"),
		},
	}
}
