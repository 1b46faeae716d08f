package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// ReleaseFile mirrors hermit.toml. Flags and environment values take
// precedence over file values.
type ReleaseFile struct {
	Release FileRelease `toml:"release"`
}

// FileRelease is the [release] table.
type FileRelease struct {
	Name       string     `toml:"name,omitempty"`
	DistDir    string     `toml:"dist_dir,omitempty"`
	TagPattern string     `toml:"tag_pattern,omitempty"`
	Targets    []string   `toml:"targets,omitempty"`
	Build      FileBuild  `toml:"build,omitempty"`
	GitHub     FileGitHub `toml:"github,omitempty"`
}

// FileBuild is the [release.build] table.
type FileBuild struct {
	Command string   `toml:"command,omitempty"`
	Args    []string `toml:"args,omitempty"`
	Package string   `toml:"package,omitempty"`
}

// FileGitHub is the [release.github] table.
type FileGitHub struct {
	Owner string `toml:"owner,omitempty"`
	Repo  string `toml:"repo,omitempty"`
}

// LoadReleaseFile reads hermit.toml. A missing file is not an error and
// returns nil.
func LoadReleaseFile(path string) (*ReleaseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read release config", goerr.V("path", path))
	}

	var file ReleaseFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse release config", goerr.V("path", path))
	}
	return &file, nil
}

// WriteReleaseFile writes hermit.toml.
func WriteReleaseFile(path string, file *ReleaseFile) error {
	data, err := toml.Marshal(file)
	if err != nil {
		return goerr.Wrap(err, "failed to encode release config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write release config", goerr.V("path", path))
	}
	return nil
}
