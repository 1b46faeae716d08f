package config

import "github.com/urfave/cli/v3"

// History holds run history configuration
type History struct {
	DBPath  string
	Disable bool
}

// Flags returns CLI flags for run history
func (c *History) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "history-db",
			Usage:       "Path to the run history database (per-user default when unset)",
			Destination: &c.DBPath,
			Sources:     cli.EnvVars("HERMIT_HISTORY_DB"),
		},
		&cli.BoolFlag{
			Name:        "no-history",
			Usage:       "Do not record runs in the history database",
			Destination: &c.Disable,
			Sources:     cli.EnvVars("HERMIT_NO_HISTORY"),
		},
	}
}
