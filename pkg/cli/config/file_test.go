package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hermitcli/hermit/pkg/cli/config"
)

func TestLoadReleaseFile_Missing(t *testing.T) {
	file, err := config.LoadReleaseFile(filepath.Join(t.TempDir(), "hermit.toml"))
	gt.NoError(t, err)
	gt.Value(t, file).Nil()
}

func TestLoadReleaseFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hermit.toml")
	gt.NoError(t, os.WriteFile(path, []byte("[release\nbroken"), 0o644))

	_, err := config.LoadReleaseFile(path)
	gt.Error(t, err)
}

func TestReleaseFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hermit.toml")

	want := &config.ReleaseFile{
		Release: config.FileRelease{
			Name:       "hermit",
			DistDir:    "dist",
			TagPattern: "v*.*.*",
			Targets: []string{
				"x86_64-unknown-linux-gnu",
				"x86_64-apple-darwin",
				"x86_64-pc-windows-msvc",
			},
			Build: config.FileBuild{
				Command: "go",
				Args:    []string{"build", "-trimpath"},
				Package: "./cmd/hermit",
			},
			GitHub: config.FileGitHub{
				Owner: "hermitcli",
				Repo:  "hermit",
			},
		},
	}

	gt.NoError(t, config.WriteReleaseFile(path, want))

	got, err := config.LoadReleaseFile(path)
	gt.NoError(t, err)
	gt.Value(t, got).Equal(want)
}

func TestLoadReleaseFile_PartialTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hermit.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`
[release]
tag_pattern = "release-*"

[release.github]
owner = "hermitcli"
repo = "hermit"
`), 0o644))

	file, err := config.LoadReleaseFile(path)
	gt.NoError(t, err)
	gt.Value(t, file.Release.TagPattern).Equal("release-*")
	gt.Value(t, file.Release.GitHub.Owner).Equal("hermitcli")
	gt.Value(t, file.Release.Name).Equal("")
	gt.Number(t, len(file.Release.Targets)).Equal(0)
}
