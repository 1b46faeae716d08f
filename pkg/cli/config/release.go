package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Release holds release pipeline configuration
type Release struct {
	ConfigPath  string
	Repository  string
	Tag         string
	SourceDir   string
	DistDir     string
	Name        string
	Targets     []string
	Clobber     bool
	SkipPublish bool
}

// Flags returns CLI flags for the release pipeline
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to hermit.toml",
			Value:       "hermit.toml",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("HERMIT_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "repository",
			Aliases:     []string{"r"},
			Usage:       "GitHub repository as owner/repo",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("HERMIT_REPOSITORY", "GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "Release tag name",
			Destination: &c.Tag,
			Sources:     cli.EnvVars("HERMIT_TAG"),
		},
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Local source directory (checkout the tag from GitHub when unset)",
			Destination: &c.SourceDir,
			Sources:     cli.EnvVars("HERMIT_SOURCE"),
		},
		&cli.StringFlag{
			Name:        "dist",
			Usage:       "Directory for release archives (default \"dist\")",
			Destination: &c.DistDir,
			Sources:     cli.EnvVars("HERMIT_DIST"),
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Base name for binaries and archives (defaults to the repository name)",
			Destination: &c.Name,
			Sources:     cli.EnvVars("HERMIT_NAME"),
		},
		&cli.StringSliceFlag{
			Name:        "target",
			Usage:       "Target triple to build (repeatable, defaults to the full matrix)",
			Destination: &c.Targets,
			Sources:     cli.EnvVars("HERMIT_TARGETS"),
		},
		&cli.BoolFlag{
			Name:        "clobber",
			Usage:       "Replace existing release assets with the same name",
			Destination: &c.Clobber,
			Sources:     cli.EnvVars("HERMIT_CLOBBER"),
		},
		&cli.BoolFlag{
			Name:        "skip-publish",
			Usage:       "Build and package without uploading to GitHub",
			Destination: &c.SkipPublish,
			Sources:     cli.EnvVars("HERMIT_SKIP_PUBLISH"),
		},
	}
}

// SplitRepository splits the owner/repo value.
func (c *Release) SplitRepository() (string, string, error) {
	owner, repo, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", goerr.New("repository must be owner/repo", goerr.V("repository", c.Repository))
	}
	return owner, repo, nil
}
