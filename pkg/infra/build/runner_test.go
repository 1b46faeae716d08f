package build_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/infra/build"
)

var linuxTarget = model.Target{
	Triple: "x86_64-unknown-linux-gnu",
	OS:     "linux",
	Arch:   "amd64",
}

func TestVerify(t *testing.T) {
	t.Run("command on PATH", func(t *testing.T) {
		r := build.NewRunner(build.WithCommand("sh"))
		gt.NoError(t, r.Verify(context.Background()))
	})

	t.Run("command missing", func(t *testing.T) {
		r := build.NewRunner(build.WithCommand("no-such-toolchain-anywhere"))
		gt.Error(t, r.Verify(context.Background()))
	})
}

func TestBuild(t *testing.T) {
	// The runner appends "-o <outPath> <pkg>" to the configured args, so with
	// sh -c the output path lands in $1.
	t.Run("writes binary to output path", func(t *testing.T) {
		dir := t.TempDir()
		outPath := filepath.Join(dir, "target", "x86_64-unknown-linux-gnu", "release", "hermit")

		r := build.NewRunner(build.WithCommand("sh", "-c", `printf fake > "$1"`))
		gt.NoError(t, r.Build(context.Background(), dir, linuxTarget, outPath))

		data, err := os.ReadFile(outPath)
		gt.NoError(t, err)
		gt.Value(t, string(data)).Equal("fake")
	})

	t.Run("command failure is reported", func(t *testing.T) {
		dir := t.TempDir()
		outPath := filepath.Join(dir, "target", "release", "hermit")

		r := build.NewRunner(build.WithCommand("sh", "-c", `echo compile error >&2; exit 1`))
		err := r.Build(context.Background(), dir, linuxTarget, outPath)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("build command failed")
	})

	t.Run("missing output binary is an error", func(t *testing.T) {
		dir := t.TempDir()
		outPath := filepath.Join(dir, "target", "release", "hermit")

		r := build.NewRunner(build.WithCommand("sh", "-c", "true"))
		err := r.Build(context.Background(), dir, linuxTarget, outPath)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("build produced no binary")
	})
}
