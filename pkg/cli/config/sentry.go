package config

import "github.com/urfave/cli/v3"

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string
}

// Flags returns CLI flags for error reporting
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled when unset)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("HERMIT_SENTRY_DSN"),
		},
	}
}
