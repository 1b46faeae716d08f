package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub configuration
type GitHub struct {
	Token         string
	WebhookSecret string
}

// Flags returns CLI flags for publishing to GitHub
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token for release publishing",
			Destination: &c.Token,
			Sources:     cli.EnvVars("HERMIT_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
	}
}

// WebhookFlags returns CLI flags for webhook verification
func (c *GitHub) WebhookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("HERMIT_GITHUB_WEBHOOK_SECRET"),
		},
	}
}
