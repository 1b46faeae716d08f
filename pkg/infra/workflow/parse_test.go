package workflow_test

import (
	"sort"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hermitcli/hermit/pkg/infra/workflow"
)

const releaseWorkflow = `
name: release
on:
  push:
    tags:
      - "v*.*.*"
jobs:
  build:
    strategy:
      matrix:
        include:
          - os: ubuntu-latest
            target: x86_64-unknown-linux-gnu
          - os: macos-latest
            target: x86_64-apple-darwin
          - os: windows-latest
            target: x86_64-pc-windows-msvc
    runs-on: ${{ matrix.os }}
    steps:
      - uses: actions/checkout@v4
`

func TestParse(t *testing.T) {
	def, err := workflow.Parse([]byte(releaseWorkflow))
	gt.NoError(t, err)

	gt.Number(t, len(def.TagPatterns)).Equal(1)
	gt.Value(t, def.TagPatterns[0]).Equal("v*.*.*")

	targets := append([]string{}, def.Targets...)
	sort.Strings(targets)
	gt.Value(t, targets).Equal([]string{
		"x86_64-apple-darwin",
		"x86_64-pc-windows-msvc",
		"x86_64-unknown-linux-gnu",
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no tag trigger",
			yaml: `
on:
  push:
    branches: [main]
jobs:
  build:
    strategy:
      matrix:
        include:
          - target: x86_64-unknown-linux-gnu
`,
		},
		{
			name: "no target matrix",
			yaml: `
on:
  push:
    tags: ["v*.*.*"]
jobs:
  build:
    runs-on: ubuntu-latest
`,
		},
		{
			name: "invalid yaml",
			yaml: "on: [unterminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := workflow.Parse([]byte(tt.yaml))
			gt.Error(t, err)
		})
	}
}
